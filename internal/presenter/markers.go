// Package presenter keeps the map markers and the results table of a search
// session and renders them for the page.
package presenter

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/vicinity/internal/models"
)

// PrimaryIcon marks the searched address on the map.
const PrimaryIcon = "http://maps.google.com/mapfiles/ms/icons/blue-dot.png"

// Marker is a map overlay tied to one place. An empty Icon means the map default.
type Marker struct {
	PlaceID  string          `json:"place_id"`
	Title    string          `json:"title"`
	Position models.Location `json:"position"`
	Icon     string          `json:"icon,omitempty"`
	Primary  bool            `json:"primary"`
}

// MarkerManager holds the active markers in creation order.
type MarkerManager struct {
	log     *slog.Logger
	markers []Marker
}

// NewMarkerManager creates an empty MarkerManager.
func NewMarkerManager(log *slog.Logger) *MarkerManager {
	return &MarkerManager{log: log, markers: []Marker{}}
}

// Create adds a marker for place and reports whether it did. Places without
// geometry are skipped.
func (m *MarkerManager) Create(ctx context.Context, place models.Place, primary bool) bool {
	if place.Location == nil {
		m.log.DebugContext(ctx, "Cannot create marker, place has no geometry", "place", place.Name, "place_id", place.ID)
		return false
	}

	marker := Marker{
		PlaceID:  place.ID,
		Title:    place.Name,
		Position: *place.Location,
		Primary:  primary,
	}
	if primary {
		marker.Icon = PrimaryIcon
	}
	m.markers = append(m.markers, marker)

	return true
}

// ClearAll removes every active marker.
func (m *MarkerManager) ClearAll() {
	m.markers = []Marker{}
}

// Markers returns a copy of the active markers.
func (m *MarkerManager) Markers() []Marker {
	out := make([]Marker, len(m.markers))
	copy(out, m.markers)

	return out
}

// Find returns the marker created for placeID.
func (m *MarkerManager) Find(placeID string) (Marker, bool) {
	for _, marker := range m.markers {
		if marker.PlaceID == placeID {
			return marker, true
		}
	}

	return Marker{}, false
}
