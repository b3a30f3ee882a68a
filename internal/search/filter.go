package search

import (
	"sort"

	"github.com/UnknownOlympus/vicinity/internal/geo"
	"github.com/UnknownOlympus/vicinity/internal/models"
)

// Merge concatenates result lists in order and keeps the first occurrence of
// every place id. Places without an id are dropped.
func Merge(lists ...[]models.Place) []models.Place {
	seen := make(map[string]struct{})
	merged := []models.Place{}

	for _, list := range lists {
		for _, place := range list {
			if place.ID == "" {
				continue
			}
			if _, dup := seen[place.ID]; dup {
				continue
			}
			seen[place.ID] = struct{}{}
			merged = append(merged, place)
		}
	}

	return merged
}

// WithinRadius keeps the places whose haversine distance to center is at most
// radius meters, ordered by ascending distance. Ties keep their input order.
// The second return value holds the places that fell outside the radius.
func WithinRadius(
	center models.Location,
	radius float64,
	candidates []models.Place,
) ([]models.RankedPlace, []models.RankedPlace) {
	accepted := []models.RankedPlace{}
	rejected := []models.RankedPlace{}

	for _, place := range candidates {
		if place.Location == nil {
			continue
		}

		ranked := models.RankedPlace{Place: place, Distance: geo.Haversine(center, *place.Location)}
		if ranked.Distance <= radius {
			accepted = append(accepted, ranked)
		} else {
			rejected = append(rejected, ranked)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Distance < accepted[j].Distance
	})

	return accepted, rejected
}
