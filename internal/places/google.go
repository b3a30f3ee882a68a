package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/vicinity/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider implements Provider on top of the Google Maps Places API.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	log      *slog.Logger    // log is the logger for logging operations
	country  string          // country restricts autocomplete predictions
	language string          // language of provider responses
}

// GoogleAPIClient is the subset of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
	PlaceAutocomplete(ctx context.Context, r *maps.PlaceAutocompleteRequest) (maps.AutocompleteResponse, error)
}

var (
	// ErrEmptyPlaceID is returned when a details or lookup call has no place id.
	ErrEmptyPlaceID = errors.New("place id is empty")
	// ErrNoGeometry is returned when a looked up place has no location.
	ErrNoGeometry = errors.New("place has no geometry")
)

// detailsFields are requested for marker popups.
var detailsFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMask("place_id"),
	maps.PlaceDetailsFieldMask("name"),
	maps.PlaceDetailsFieldMask("formatted_address"),
	maps.PlaceDetailsFieldMask("rating"),
	maps.PlaceDetailsFieldMask("user_ratings_total"),
	maps.PlaceDetailsFieldMask("formatted_phone_number"),
	maps.PlaceDetailsFieldMask("website"),
	maps.PlaceDetailsFieldMask("opening_hours"),
}

// lookupFields are requested when an autocomplete selection is resolved.
var lookupFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMask("place_id"),
	maps.PlaceDetailsFieldMask("geometry"),
	maps.PlaceDetailsFieldMask("name"),
	maps.PlaceDetailsFieldMask("formatted_address"),
}

// NewGoogleProvider creates a GoogleProvider. Autocomplete is restricted to country
// and responses are localized to language.
func NewGoogleProvider(client GoogleAPIClient, country, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log, country: country, language: language}
}

// NearbySearch runs a keyword nearby search. The maps client already treats
// OK and ZERO_RESULTS as success and turns every other status into an error.
func (gp *GoogleProvider) NearbySearch(ctx context.Context, req models.SearchRequest) ([]models.Place, error) {
	gp.log.DebugContext(ctx, "Nearby search using Google Places",
		"lat", req.Center.Latitude, "lng", req.Center.Longitude,
		"radius", req.Radius, "keyword", req.Keyword)

	if req.Radius <= 0 {
		return nil, fmt.Errorf("invalid radius %d", req.Radius)
	}

	resp, err := gp.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: req.Center.Latitude, Lng: req.Center.Longitude},
		Radius:   uint(req.Radius),
		Keyword:  req.Keyword,
		Language: gp.language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby places: %w", err)
	}

	found := make([]models.Place, 0, len(resp.Results))
	for _, res := range resp.Results {
		found = append(found, fromSearchResult(res))
	}

	return found, nil
}

// Details fetches the popup fields for a single place.
func (gp *GoogleProvider) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	if placeID == "" {
		return nil, ErrEmptyPlaceID
	}

	gp.log.DebugContext(ctx, "Fetching place details", "place_id", placeID)

	res, err := gp.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: gp.language,
		Fields:   detailsFields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch place details: %w", err)
	}

	details := &models.PlaceDetails{
		ID:               res.PlaceID,
		Name:             res.Name,
		Address:          res.FormattedAddress,
		Rating:           res.Rating,
		UserRatingsTotal: res.UserRatingsTotal,
		Phone:            res.FormattedPhoneNumber,
		Website:          res.Website,
	}
	if res.OpeningHours != nil {
		details.OpenNow = res.OpeningHours.OpenNow
		details.WeekdayText = res.OpeningHours.WeekdayText
	}

	return details, nil
}

// Autocomplete suggests addresses restricted to the configured country.
func (gp *GoogleProvider) Autocomplete(ctx context.Context, input string) ([]models.Suggestion, error) {
	if input == "" {
		return []models.Suggestion{}, nil
	}

	req := &maps.PlaceAutocompleteRequest{
		Input:    input,
		Language: gp.language,
	}
	if gp.country != "" {
		req.Components = map[maps.Component][]string{maps.ComponentCountry: {gp.country}}
	}

	resp, err := gp.client.PlaceAutocomplete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete address: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, models.Suggestion{PlaceID: p.PlaceID, Description: p.Description})
	}

	return suggestions, nil
}

// Lookup resolves a place id into a place with geometry.
func (gp *GoogleProvider) Lookup(ctx context.Context, placeID string) (*models.Place, error) {
	if placeID == "" {
		return nil, ErrEmptyPlaceID
	}

	res, err := gp.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: gp.language,
		Fields:   lookupFields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up place: %w", err)
	}

	loc := res.Geometry.Location
	if loc.Lat == 0 && loc.Lng == 0 {
		return nil, ErrNoGeometry
	}

	return &models.Place{
		ID:       res.PlaceID,
		Name:     res.Name,
		Address:  res.FormattedAddress,
		Location: &models.Location{Latitude: loc.Lat, Longitude: loc.Lng},
	}, nil
}

func fromSearchResult(res maps.PlacesSearchResult) models.Place {
	place := models.Place{
		ID:               res.PlaceID,
		Name:             res.Name,
		Address:          res.FormattedAddress,
		Rating:           res.Rating,
		UserRatingsTotal: res.UserRatingsTotal,
	}
	if place.Address == "" {
		place.Address = res.Vicinity
	}

	loc := res.Geometry.Location
	if loc.Lat != 0 || loc.Lng != 0 {
		place.Location = &models.Location{Latitude: loc.Lat, Longitude: loc.Lng}
	}

	return place
}
