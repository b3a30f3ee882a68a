package models

// Place is a business or location record returned by the places provider.
// Location is nil when the provider did not return a geometry for the place.
type Place struct {
	ID               string    // ID is the provider's unique place identifier.
	Name             string    // Name is the display name of the business.
	Address          string    // Address is the formatted address or vicinity.
	Location         *Location // Location is the place geometry, if any.
	Rating           float32   // Rating is the average user rating, zero when absent.
	UserRatingsTotal int       // UserRatingsTotal is the number of ratings behind Rating.
}

// PlaceDetails holds the extended fields fetched lazily when a marker is clicked.
type PlaceDetails struct {
	ID               string
	Name             string
	Address          string
	Rating           float32
	UserRatingsTotal int
	Phone            string
	Website          string
	OpenNow          *bool    // OpenNow is nil when the provider has no opening hours.
	WeekdayText      []string // WeekdayText lists opening hours per day.
}

// Suggestion is a single address autocomplete prediction.
type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}
