package places

import (
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

// ClientConfig holds what is needed to build a Google Maps API client.
type ClientConfig struct {
	APIKey    string // API key with Places and Geocoding access
	RateLimit int    // Requests per second, zero disables client-side limiting
}

// ErrMissingAPIKey is returned when no Google Maps API key is configured.
var ErrMissingAPIKey = errors.New("API key is required for Google provider")

// NewGoogleClient creates a Google Maps client with the API key and optional rate limiting.
// The returned client satisfies GoogleAPIClient and geocoding.GeocodeAPIClient.
func NewGoogleClient(config ClientConfig) (*maps.Client, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return client, nil
}
