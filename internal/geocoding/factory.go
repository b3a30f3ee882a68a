package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type     ProviderType     // Type of provider to create
	Client   GeocodeAPIClient // Google Maps client (used by Google provider)
	Country  string           // ISO country code results are restricted to
	Language string           // Preferred response language (used by Nominatim provider)
	Logger   *slog.Logger     // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
//
// Supported provider types:
// - "google": Google Maps Geocoding API (requires a client)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		if config.Client == nil {
			return nil, errors.New("maps client is required for Google provider")
		}
		return NewGoogleProvider(config.Client, config.Country, config.Logger), nil
	case ProviderTypeNominatim:
		return NewNominatimProvider(config.Country, config.Language, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}
