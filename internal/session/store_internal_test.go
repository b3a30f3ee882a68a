package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*Store, *metrics.Metrics) {
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	store := NewStore(Deps{Log: slog.Default(), Metrics: appMetrics, DefaultRadius: 300}, ttl)

	return store, appMetrics
}

func TestStore(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		store, appMetrics := newTestStore(time.Minute)

		sess := store.Create()

		_, err := uuid.Parse(sess.ID)
		require.NoError(t, err)
		assert.Equal(t, DefaultCenter, sess.Snapshot().Center)

		got, err := store.Get(sess.ID)
		require.NoError(t, err)
		assert.Same(t, sess, got)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.ActiveSessions), 0)
	})

	t.Run("unknown id", func(t *testing.T) {
		store, _ := newTestStore(time.Minute)

		_, err := store.Get("missing")

		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("get or create", func(t *testing.T) {
		store, _ := newTestStore(time.Minute)

		created, isNew := store.GetOrCreate("")
		require.True(t, isNew)

		again, isNew := store.GetOrCreate(created.ID)
		require.False(t, isNew)
		assert.Same(t, created, again)
	})

	t.Run("sweep removes idle sessions", func(t *testing.T) {
		store, appMetrics := newTestStore(time.Minute)
		start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
		clock := start
		store.now = func() time.Time { return clock }

		idle := store.Create()
		active := store.Create()

		clock = start.Add(50 * time.Second)
		_, err := store.Get(active.ID)
		require.NoError(t, err)

		removed := store.Sweep(start.Add(90 * time.Second))

		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, store.Len())
		_, err = store.Get(idle.ID)
		require.ErrorIs(t, err, ErrSessionNotFound)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.ActiveSessions), 0)
	})

	t.Run("run stops on context cancel", func(t *testing.T) {
		store, _ := newTestStore(time.Minute)
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		store.Run(ctx, 5*time.Millisecond)
	})

	t.Run("run accepts a zero interval", func(t *testing.T) {
		store, _ := newTestStore(time.Nanosecond)
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		assert.NotPanics(t, func() { store.Run(ctx, time.Nanosecond/2) })
	})
}
