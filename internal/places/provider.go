// Package places wraps the external places provider used for nearby search,
// place details and address autocomplete.
package places

import (
	"context"

	"github.com/UnknownOlympus/vicinity/internal/models"
)

// Provider is the set of places operations the search flow depends on.
type Provider interface {
	// NearbySearch returns places matching the request keyword around its center.
	// A provider status of "zero results" is a successful, empty answer.
	NearbySearch(ctx context.Context, req models.SearchRequest) ([]models.Place, error)
	// Details fetches the extended fields shown in a marker popup.
	Details(ctx context.Context, placeID string) (*models.PlaceDetails, error)
	// Autocomplete suggests addresses for a partial input.
	Autocomplete(ctx context.Context, input string) ([]models.Suggestion, error)
	// Lookup resolves a selected suggestion into a place with geometry.
	Lookup(ctx context.Context, placeID string) (*models.Place, error)
}
