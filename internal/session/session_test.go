package session_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/UnknownOlympus/vicinity/internal/metrics"
	"github.com/UnknownOlympus/vicinity/internal/models"
	"github.com/UnknownOlympus/vicinity/internal/presenter"
	"github.com/UnknownOlympus/vicinity/internal/search"
	"github.com/UnknownOlympus/vicinity/internal/session"
	"github.com/UnknownOlympus/vicinity/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var mochis = models.Location{Latitude: 25.7690852, Longitude: -108.9888047}

type searcherFunc func(ctx context.Context, center models.Location, radius int) (*search.Result, error)

func (f searcherFunc) Search(ctx context.Context, center models.Location, radius int) (*search.Result, error) {
	return f(ctx, center, radius)
}

func placeAt(id string, lat float64) models.Place {
	return models.Place{
		ID:       id,
		Name:     "Negocio " + id,
		Location: &models.Location{Latitude: lat, Longitude: mochis.Longitude},
	}
}

func origin() models.Place {
	loc := mochis
	return models.Place{ID: "origin", Name: "Blvd. Centenario", Address: "Blvd. Centenario, Los Mochis", Location: &loc}
}

func newDeps(searcher session.Searcher, history session.Recorder) (session.Deps, *metrics.Metrics) {
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	return session.Deps{
		Log:           slog.Default(),
		Searcher:      searcher,
		History:       history,
		Metrics:       appMetrics,
		DefaultRadius: search.DefaultRadius,
	}, appMetrics
}

func countPrimary(markers []presenter.Marker) int {
	primary := 0
	for _, m := range markers {
		if m.Primary {
			primary++
		}
	}
	return primary
}

func TestSessionSearch_EndToEnd(t *testing.T) {
	ctx := t.Context()
	provider := mocks.NewPlacesProvider(t)
	orchestrator := search.NewOrchestrator(slog.Default(), provider, metrics.NewMetrics(prometheus.NewRegistry()), time.Second)
	deps, appMetrics := newDeps(orchestrator, nil)
	sess := session.New("e2e", mochis, deps)

	food := []models.Place{
		placeAt("tacos", 25.7691852),
		placeAt("cafe", 25.7692852),
		placeAt("shared", 25.7693852),
	}
	stores := []models.Place{
		placeAt("shared", 25.7693852),
		placeAt("far", 25.7790852),
	}
	foodReq := models.SearchRequest{Center: mochis, Radius: 300, Keyword: models.CategoryFood.Keyword}
	storeReq := models.SearchRequest{Center: mochis, Radius: 300, Keyword: models.CategoryStores.Keyword}
	provider.On("NearbySearch", mock.Anything, foodReq).Return(food, nil).Once()
	provider.On("NearbySearch", mock.Anything, storeReq).Return(stores, nil).Once()

	snapshot, err := sess.Search(ctx, origin(), "300")

	// Five candidates, one shared id and one beyond 300 m leave three places.
	// Each accepted place gets exactly one row and one non-primary marker.
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeResults, snapshot.Outcome)
	assert.Equal(t, 300, snapshot.Radius)
	require.Len(t, snapshot.Rows, 3)
	require.Len(t, snapshot.Markers, 4)
	assert.Equal(t, 1, countPrimary(snapshot.Markers))
	assert.True(t, snapshot.Markers[0].Primary)

	for i, row := range snapshot.Rows {
		assert.Equal(t, row.Name, snapshot.Markers[i+1].Title)
	}
	assert.Equal(t, "Negocio tacos", snapshot.Rows[0].Name)
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.Searches.WithLabelValues("results")), 0)

	var buf bytes.Buffer
	require.NoError(t, sess.RenderTable(&buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Find("tbody tr").Length())
}

func TestSessionSearch(t *testing.T) {
	ctx := t.Context()

	t.Run("empty radius uses default", func(t *testing.T) {
		var gotRadius int
		deps, _ := newDeps(searcherFunc(func(_ context.Context, _ models.Location, radius int) (*search.Result, error) {
			gotRadius = radius
			return &search.Result{Outcome: models.OutcomeNoMatches, Radius: radius}, nil
		}), nil)
		sess := session.New("s", mochis, deps)

		_, err := sess.Search(ctx, origin(), "")
		require.NoError(t, err)
		assert.Equal(t, 300, gotRadius)

		_, err = sess.Search(ctx, origin(), "0")
		require.NoError(t, err)
		assert.Equal(t, 300, gotRadius)
	})

	t.Run("no matches message", func(t *testing.T) {
		deps, _ := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
			return &search.Result{Outcome: models.OutcomeNoMatches}, nil
		}), nil)
		sess := session.New("s", mochis, deps)

		snapshot, err := sess.Search(ctx, origin(), "300")

		require.NoError(t, err)
		require.Len(t, snapshot.Rows, 1)
		assert.Equal(t, presenter.MsgNoMatches, snapshot.Rows[0].Message)
		assert.Len(t, snapshot.Markers, 1)
	})

	t.Run("none in radius message", func(t *testing.T) {
		deps, _ := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
			return &search.Result{Outcome: models.OutcomeNoneInRadius}, nil
		}), nil)
		sess := session.New("s", mochis, deps)

		snapshot, err := sess.Search(ctx, origin(), "300")

		require.NoError(t, err)
		require.Len(t, snapshot.Rows, 1)
		assert.Equal(t, presenter.MsgNoneInRadius, snapshot.Rows[0].Message)
	})

	t.Run("unexpected error message", func(t *testing.T) {
		deps, appMetrics := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
			return nil, search.ErrUnexpected
		}), nil)
		sess := session.New("s", mochis, deps)

		snapshot, err := sess.Search(ctx, origin(), "300")

		require.NoError(t, err)
		assert.Equal(t, models.OutcomeError, snapshot.Outcome)
		require.Len(t, snapshot.Rows, 1)
		assert.Equal(t, presenter.MsgUnexpected, snapshot.Rows[0].Message)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.Searches.WithLabelValues("error")), 0)
	})

	t.Run("new search clears previous markers and rows", func(t *testing.T) {
		calls := 0
		deps, _ := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
			calls++
			if calls == 1 {
				return &search.Result{Outcome: models.OutcomeResults, Places: []models.RankedPlace{
					{Place: placeAt("a", 25.7691852)},
					{Place: placeAt("b", 25.7692852)},
				}}, nil
			}
			return &search.Result{Outcome: models.OutcomeNoneInRadius}, nil
		}), nil)
		sess := session.New("s", mochis, deps)

		first, err := sess.Search(ctx, origin(), "300")
		require.NoError(t, err)
		require.Len(t, first.Rows, 2)
		require.Len(t, first.Markers, 3)

		second, err := sess.Search(ctx, origin(), "300")
		require.NoError(t, err)
		require.Len(t, second.Rows, 1)
		require.Len(t, second.Markers, 1)
		assert.True(t, second.Markers[0].Primary)
	})

	t.Run("origin without geometry", func(t *testing.T) {
		deps, _ := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
			t.Fatal("search must not run")
			return nil, nil
		}), nil)
		sess := session.New("s", mochis, deps)

		snapshot, err := sess.Search(ctx, models.Place{Name: "??"}, "300")

		require.ErrorIs(t, err, session.ErrNoGeometry)
		require.Nil(t, snapshot)
		assert.Empty(t, sess.Snapshot().Markers)
		assert.Nil(t, sess.Snapshot().Rows)
	})

	t.Run("search is recorded in history", func(t *testing.T) {
		history := mocks.NewInterface(t)
		deps, _ := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
			return &search.Result{Outcome: models.OutcomeResults, Places: []models.RankedPlace{
				{Place: placeAt("a", 25.7691852)},
			}}, nil
		}), history)
		sess := session.New("hist", mochis, deps)

		history.On("SaveSearch", ctx, models.SearchRecord{
			SessionID: "hist",
			Address:   "Blvd. Centenario, Los Mochis",
			Center:    mochis,
			Radius:    450,
			Outcome:   models.OutcomeResults,
			Results:   1,
		}).Return(assert.AnError).Once()

		snapshot, err := sess.Search(ctx, origin(), "450")

		require.NoError(t, err)
		assert.Len(t, snapshot.Rows, 1)
	})
}

func TestSessionPopup(t *testing.T) {
	ctx := t.Context()
	provider := mocks.NewPlacesProvider(t)
	deps, appMetrics := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
		return &search.Result{Outcome: models.OutcomeResults, Places: []models.RankedPlace{
			{Place: placeAt("a", 25.7691852)},
		}}, nil
	}), nil)
	renderer := presenter.NewPopupRenderer(provider, appMetrics, time.Second, slog.Default())
	sess := session.New("s", mochis, deps)
	_, err := sess.Search(ctx, origin(), "300")
	require.NoError(t, err)

	t.Run("unknown marker", func(t *testing.T) {
		var buf bytes.Buffer
		require.ErrorIs(t, sess.Popup(ctx, &buf, "zzz", renderer), session.ErrMarkerNotFound)
	})

	t.Run("primary marker fetches details", func(t *testing.T) {
		provider.On("Details", mock.Anything, "origin").
			Return(&models.PlaceDetails{ID: "origin", Name: "Blvd. Centenario", Address: "Los Mochis"}, nil).Once()

		var buf bytes.Buffer
		require.NoError(t, sess.Popup(ctx, &buf, "origin", renderer))
		assert.Contains(t, buf.String(), "Blvd. Centenario")
		assert.NotContains(t, buf.String(), presenter.MsgNoDetails)
	})

	t.Run("fallback uses marker title", func(t *testing.T) {
		provider.On("Details", mock.Anything, "a").Return(nil, assert.AnError).Once()

		var buf bytes.Buffer
		require.NoError(t, sess.Popup(ctx, &buf, "a", renderer))
		assert.Contains(t, buf.String(), "Negocio a")
		assert.Contains(t, buf.String(), presenter.MsgNoDetails)
	})
}

func TestSessionPopup_TypedAddressOrigin(t *testing.T) {
	ctx := t.Context()
	provider := mocks.NewPlacesProvider(t)
	deps, appMetrics := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
		return &search.Result{Outcome: models.OutcomeNoMatches}, nil
	}), nil)
	renderer := presenter.NewPopupRenderer(provider, appMetrics, time.Second, slog.Default())
	sess := session.New("s", mochis, deps)
	loc := mochis

	snapshot, err := sess.Search(ctx, models.Place{Name: "Independencia 100", Address: "Independencia 100", Location: &loc}, "")
	require.NoError(t, err)
	require.Len(t, snapshot.Markers, 1)
	assert.Equal(t, session.OriginMarkerID, snapshot.Markers[0].PlaceID)

	var buf bytes.Buffer
	require.NoError(t, sess.Popup(ctx, &buf, session.OriginMarkerID, renderer))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Independencia 100", doc.Find("h3").Text())
	assert.Equal(t, presenter.MsgNoDetails, doc.Find("p").Text())
	provider.AssertNotCalled(t, "Details", mock.Anything, mock.Anything)
}

func TestSessionSearch_Overlapping(t *testing.T) {
	ctx := t.Context()
	var cycle atomic.Int64
	deps, appMetrics := newDeps(searcherFunc(func(context.Context, models.Location, int) (*search.Result, error) {
		n := cycle.Add(1)
		return &search.Result{Outcome: models.OutcomeResults, Places: []models.RankedPlace{
			{Place: placeAt(fmt.Sprintf("c%d-a", n), 25.7691852)},
			{Place: placeAt(fmt.Sprintf("c%d-b", n), 25.7692852)},
		}}, nil
	}), nil)
	sess := session.New("s", mochis, deps)

	const searches = 20
	var wg sync.WaitGroup
	for range searches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sess.Search(ctx, origin(), "300")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snapshot := sess.Snapshot()
	require.Len(t, snapshot.Rows, 2)
	require.Len(t, snapshot.Markers, 3)
	assert.Equal(t, 1, countPrimary(snapshot.Markers))
	assert.True(t, snapshot.Markers[0].Primary)

	prefix, _, found := strings.Cut(strings.TrimPrefix(snapshot.Rows[0].Name, "Negocio "), "-")
	require.True(t, found)
	for i, row := range snapshot.Rows {
		assert.True(t, strings.HasPrefix(row.Name, "Negocio "+prefix+"-"), "row %q from another cycle", row.Name)
		assert.Equal(t, row.Name, snapshot.Markers[i+1].Title)
	}
	assert.InDelta(t, searches, testutil.ToFloat64(appMetrics.Searches.WithLabelValues("results")), 0)
}
