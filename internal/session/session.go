// Package session keeps the per-browser search state: map center, markers and
// results table. Every search resets that state before it starts.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/metrics"
	"github.com/UnknownOlympus/vicinity/internal/models"
	"github.com/UnknownOlympus/vicinity/internal/presenter"
	"github.com/UnknownOlympus/vicinity/internal/search"
)

var (
	// ErrNoGeometry is returned when the searched address has no location.
	ErrNoGeometry = errors.New("searched place has no geometry")
	// ErrMarkerNotFound is returned when a popup is requested for an unknown marker.
	ErrMarkerNotFound = errors.New("marker not found")
)

// OriginMarkerID identifies the primary marker of an origin that has no
// provider place id, such as a geocoded typed address.
const OriginMarkerID = "searched-address"

// Searcher runs one nearby search cycle.
type Searcher interface {
	Search(ctx context.Context, center models.Location, radius int) (*search.Result, error)
}

// Recorder persists finished searches.
type Recorder interface {
	SaveSearch(ctx context.Context, record models.SearchRecord) error
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Log           *slog.Logger
	Searcher      Searcher
	History       Recorder // History is optional.
	Metrics       *metrics.Metrics
	DefaultRadius int
}

// Snapshot is a read-only view of the session state after a search.
type Snapshot struct {
	Center  models.Location    `json:"center"`
	Radius  int                `json:"radius"`
	Outcome models.Outcome     `json:"outcome,omitempty"`
	Markers []presenter.Marker `json:"markers"`
	Rows    []presenter.Row    `json:"rows"`
}

// Session owns the map state of one browser. All methods are safe for
// concurrent use; overlapping searches run one after another.
type Session struct {
	ID string

	deps Deps

	mu      sync.Mutex
	center  models.Location
	radius  int
	outcome models.Outcome
	markers *presenter.MarkerManager
	table   presenter.Table

	lastSeen time.Time // guarded by the owning Store
}

// New creates an empty session centered on center.
func New(id string, center models.Location, deps Deps) *Session {
	return &Session{
		ID:      id,
		deps:    deps,
		center:  center,
		markers: presenter.NewMarkerManager(deps.Log),
	}
}

// Search clears the previous results, re-centers on origin, adds the primary
// marker and runs a search with the radius typed by the user. Provider and
// filtering failures end up as a message row, never as an error.
func (s *Session) Search(ctx context.Context, origin models.Place, rawRadius string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers.ClearAll()
	s.table.Clear()
	s.outcome = ""

	if origin.Location == nil {
		return nil, ErrNoGeometry
	}

	if origin.ID == "" {
		origin.ID = OriginMarkerID
	}
	s.center = *origin.Location
	s.radius = search.EffectiveRadius(rawRadius, s.deps.DefaultRadius)
	s.deps.Log.InfoContext(ctx, "Search radius resolved", "session", s.ID, "raw", rawRadius, "radius", s.radius)

	s.markers.Create(ctx, origin, true)
	s.table.Create()

	result, err := s.deps.Searcher.Search(ctx, s.center, s.radius)
	if err != nil {
		s.deps.Log.ErrorContext(ctx, "Critical error while processing combined searches", "session", s.ID, "error", err)
		s.fail(ctx, origin)
	} else {
		s.apply(ctx, origin, result)
	}

	s.deps.Metrics.Searches.WithLabelValues(string(s.outcome)).Inc()
	s.record(ctx, origin)

	return s.snapshot(), nil
}

// apply turns a search result into markers and rows.
func (s *Session) apply(ctx context.Context, origin models.Place, result *search.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.deps.Log.ErrorContext(ctx, "Rendering search results panicked", "session", s.ID, "panic", r)
			s.fail(ctx, origin)
		}
	}()

	switch result.Outcome {
	case models.OutcomeNoMatches:
		s.table.AddMessage(presenter.MsgNoMatches)
	case models.OutcomeNoneInRadius:
		s.table.AddMessage(presenter.MsgNoneInRadius)
	case models.OutcomeResults:
		for _, ranked := range result.Places {
			if s.markers.Create(ctx, ranked.Place, false) {
				s.table.AddRow(ranked.Place, s.center)
			}
		}
	default:
		s.table.AddMessage(presenter.MsgUnexpected)
	}

	s.outcome = result.Outcome
	s.deps.Log.InfoContext(ctx, "Final results shown", "session", s.ID, "within_radius", len(result.Places))
}

// fail resets the session to the primary marker and a single error row.
func (s *Session) fail(ctx context.Context, origin models.Place) {
	s.markers.ClearAll()
	s.markers.Create(ctx, origin, true)
	s.table.Create()
	s.table.AddMessage(presenter.MsgUnexpected)
	s.outcome = models.OutcomeError
}

func (s *Session) record(ctx context.Context, origin models.Place) {
	if s.deps.History == nil {
		return
	}

	results := 0
	for _, marker := range s.markers.Markers() {
		if !marker.Primary {
			results++
		}
	}

	err := s.deps.History.SaveSearch(ctx, models.SearchRecord{
		SessionID: s.ID,
		Address:   origin.Address,
		Center:    s.center,
		Radius:    s.radius,
		Outcome:   s.outcome,
		Results:   results,
	})
	if err != nil {
		s.deps.Log.ErrorContext(ctx, "Failed to save search history", "session", s.ID, "error", err)
	}
}

// Snapshot returns the current markers and rows.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *Session) snapshot() *Snapshot {
	return &Snapshot{
		Center:  s.center,
		Radius:  s.radius,
		Outcome: s.outcome,
		Markers: s.markers.Markers(),
		Rows:    s.table.Rows(),
	}
}

// RenderTable writes the results table as HTML.
func (s *Session) RenderTable(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.table.Render(w)
}

// Popup renders the info window of a marker of this session.
func (s *Session) Popup(ctx context.Context, w io.Writer, placeID string, renderer *presenter.PopupRenderer) error {
	s.mu.Lock()
	marker, found := s.markers.Find(placeID)
	s.mu.Unlock()

	if !found {
		return ErrMarkerNotFound
	}
	if marker.PlaceID == OriginMarkerID {
		return renderer.RenderMinimal(w, marker.Title)
	}

	return renderer.Render(ctx, w, placeID, marker.Title)
}
