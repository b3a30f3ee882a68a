package search_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle(t *testing.T) {
	ctx := t.Context()

	t.Run("keeps task order", func(t *testing.T) {
		settled := search.Settle(ctx,
			func(context.Context) (int, error) {
				time.Sleep(20 * time.Millisecond)
				return 1, nil
			},
			func(context.Context) (int, error) { return 2, nil },
		)

		require.Len(t, settled, 2)
		assert.Equal(t, 1, settled[0].Value)
		assert.Equal(t, 2, settled[1].Value)
	})

	t.Run("failure does not fail the join", func(t *testing.T) {
		settled := search.Settle(ctx,
			func(context.Context) (string, error) { return "", assert.AnError },
			func(context.Context) (string, error) { return "ok", nil },
		)

		require.ErrorIs(t, settled[0].Err, assert.AnError)
		require.NoError(t, settled[1].Err)
		assert.Equal(t, "ok", settled[1].Value)
	})

	t.Run("failure does not cancel siblings", func(t *testing.T) {
		var finished atomic.Bool
		settled := search.Settle(ctx,
			func(context.Context) (int, error) { return 0, assert.AnError },
			func(ctx context.Context) (int, error) {
				select {
				case <-ctx.Done():
					return 0, ctx.Err()
				case <-time.After(20 * time.Millisecond):
					finished.Store(true)
					return 7, nil
				}
			},
		)

		assert.True(t, finished.Load())
		assert.Equal(t, 7, settled[1].Value)
	})

	t.Run("runs tasks concurrently", func(t *testing.T) {
		release := make(chan struct{})
		var started atomic.Int32
		task := func(context.Context) (int, error) {
			if started.Add(1) == 2 {
				close(release)
			}
			<-release
			return 0, nil
		}

		done := make(chan struct{})
		go func() {
			search.Settle(ctx, task, task)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("tasks did not run concurrently")
		}
	})

	t.Run("panic is captured", func(t *testing.T) {
		settled := search.Settle(ctx,
			func(context.Context) (int, error) { panic("boom") },
			func(context.Context) (int, error) { return 3, nil },
		)

		require.ErrorIs(t, settled[0].Err, search.ErrTaskPanicked)
		assert.Equal(t, 3, settled[1].Value)
	})

	t.Run("no tasks", func(t *testing.T) {
		assert.Empty(t, search.Settle[int](ctx))
	})
}
