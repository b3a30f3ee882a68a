package geo_test

import (
	"testing"

	"github.com/UnknownOlympus/vicinity/internal/geo"
	"github.com/UnknownOlympus/vicinity/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	mochis := models.Location{Latitude: 25.7690852, Longitude: -108.9888047}

	t.Run("identical points", func(t *testing.T) {
		assert.Zero(t, geo.Haversine(mochis, mochis))
	})

	t.Run("known fixture", func(t *testing.T) {
		north := models.Location{Latitude: 25.7700852, Longitude: -108.9888047}

		assert.InDelta(t, 111.2, geo.Haversine(mochis, north), 0.05)
	})

	t.Run("symmetric", func(t *testing.T) {
		points := []models.Location{
			{Latitude: 19.4326, Longitude: -99.1332},
			{Latitude: -33.8688, Longitude: 151.2093},
			{Latitude: 51.5074, Longitude: -0.1278},
			{Latitude: 0, Longitude: 179.9},
			{Latitude: 0, Longitude: -179.9},
		}
		for _, a := range points {
			for _, b := range points {
				assert.InDelta(t, geo.Haversine(a, b), geo.Haversine(b, a), 1e-6)
			}
		}
	})

	t.Run("antimeridian", func(t *testing.T) {
		east := models.Location{Latitude: 0, Longitude: 179.9}
		west := models.Location{Latitude: 0, Longitude: -179.9}

		assert.InDelta(t, 22239, geo.Haversine(east, west), 5)
	})
}
