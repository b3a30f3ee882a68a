package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/vicinity/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider geocodes addresses with the Google Maps Geocoding API,
// restricted to a single country.
type GoogleProvider struct {
	client  GeocodeAPIClient // client is the Google Maps API client
	country string           // country is the ISO code results are restricted to
	log     *slog.Logger     // log is the logger for logging operations
}

// GeocodeAPIClient is the subset of *maps.Client used for geocoding.
type GeocodeAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given client, country and logger.
func NewGoogleProvider(client GeocodeAPIClient, country string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, country: country, log: log}
}

// Geocode returns the location of the provided address using the Google Maps Geocoding API.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Location, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address, "country", gp.country)

	req := maps.GeocodingRequest{Address: address}
	if gp.country != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: gp.country}
	}

	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	coords := geocodeResponse[0].Geometry.Location

	return &models.Location{Longitude: coords.Lng, Latitude: coords.Lat}, nil
}
