// Package geo holds the great-circle math used to rank and filter places.
package geo

import (
	"math"

	"github.com/UnknownOlympus/vicinity/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

const metersPerKm = 1000

// Haversine returns the great-circle distance in meters between two points given in degrees.
func Haversine(from, to models.Location) float64 {
	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLat := toRadians(to.Latitude - from.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c * metersPerKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
