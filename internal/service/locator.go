package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/geocoding"
	"github.com/UnknownOlympus/vicinity/internal/metrics"
	"github.com/UnknownOlympus/vicinity/internal/models"
)

// ErrEmptyAddress is returned when neither a suggestion nor an address was submitted.
var ErrEmptyAddress = errors.New("address is empty")

// PlaceLookup resolves a selected autocomplete suggestion.
type PlaceLookup interface {
	Lookup(ctx context.Context, placeID string) (*models.Place, error)
}

// LocatorService turns the user's location input into the origin of a search.
type LocatorService struct {
	log          *slog.Logger       // Logger for logging service activities
	places       PlaceLookup        // Places provider used for picked suggestions
	geocoder     geocoding.Provider // Geocoding provider for free-text addresses
	providerName string             // Name of the geocoder for metrics labeling
	metrics      *metrics.Metrics   // Metrics for tracking provider calls
	addrSuffix   string             // Appended to free-text addresses, e.g. city and country
}

// NewLocatorService creates a new instance of LocatorService.
// addressSuffix is appended to free-text addresses before geocoding so that
// partial inputs resolve inside the served area; it may be empty.
func NewLocatorService(
	log *slog.Logger,
	places PlaceLookup,
	geocoder geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	addressSuffix string,
) *LocatorService {
	return &LocatorService{
		log:          log,
		places:       places,
		geocoder:     geocoder,
		providerName: providerName,
		metrics:      metrics,
		addrSuffix:   addressSuffix,
	}
}

// Resolve returns the place to center a search on. A non-empty placeID wins
// over the typed address.
func (ls *LocatorService) Resolve(ctx context.Context, placeID, address string) (*models.Place, error) {
	if placeID != "" {
		return ls.lookup(ctx, placeID)
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	return ls.geocode(ctx, address)
}

func (ls *LocatorService) lookup(ctx context.Context, placeID string) (*models.Place, error) {
	ls.log.DebugContext(ctx, "Resolving selected suggestion", "place_id", placeID)

	startTime := time.Now()
	place, err := ls.places.Lookup(ctx, placeID)
	ls.metrics.RequestSeconds.WithLabelValues("place_lookup").Observe(time.Since(startTime).Seconds())

	if err != nil {
		ls.metrics.APIErrors.WithLabelValues("place_lookup").Inc()
		return nil, fmt.Errorf("failed to resolve place %s: %w", placeID, err)
	}

	return place, nil
}

func (ls *LocatorService) geocode(ctx context.Context, address string) (*models.Place, error) {
	query := address
	if ls.addrSuffix != "" {
		query = address + ", " + ls.addrSuffix
	}
	ls.log.DebugContext(ctx, "Geocoding typed address", "address", query, "provider", ls.providerName)

	startTime := time.Now()
	coords, err := ls.geocoder.Geocode(ctx, query)
	ls.metrics.RequestSeconds.WithLabelValues("geocode").Observe(time.Since(startTime).Seconds())

	if err != nil {
		ls.metrics.APIErrors.WithLabelValues("geocode").Inc()
		ls.log.ErrorContext(ctx, "Failed to geocode", "address", query, "provider", ls.providerName, "error", err)
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	return &models.Place{Name: address, Address: address, Location: coords}, nil
}
