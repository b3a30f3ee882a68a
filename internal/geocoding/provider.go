package geocoding

import (
	"context"

	"github.com/UnknownOlympus/vicinity/internal/models"
)

// Provider is an interface that defines a method for geocoding a free-text address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding location and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Location, error)
}
