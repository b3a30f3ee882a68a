package models

// Location represents a geographical point defined by its latitude and longitude in degrees.
type Location struct {
	Latitude  float64 `json:"lat"` // Latitude of the geographical point.
	Longitude float64 `json:"lng"` // Longitude of the geographical point.
}
