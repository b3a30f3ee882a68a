package search

import (
	"strconv"
	"strings"
)

// DefaultRadius is the search radius in meters used when the user gives none.
const DefaultRadius = 300

// EffectiveRadius reads the leading integer of the radius typed by the user,
// so "500m" is 500 and "120.9" is 120. Empty, non-numeric and non-positive
// input falls back to fallback.
func EffectiveRadius(raw string, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultRadius
	}

	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}

	radius, err := strconv.Atoi(raw[:end])
	if err != nil || radius <= 0 {
		return fallback
	}

	return radius
}
