package models

// SearchRequest is a single category-scoped nearby query against the places provider.
type SearchRequest struct {
	Center  Location // Center of the search circle.
	Radius  int      // Radius in meters.
	Keyword string   // Keyword expression sent to the provider.
}

// Category groups businesses under one keyword expression.
type Category struct {
	Name    string
	Keyword string
}

// Default categories searched on every request. Food results are merged before store results.
var (
	CategoryFood = Category{
		Name:    "food",
		Keyword: `comida OR restaurante OR cafe OR panaderia OR "para llevar"`,
	}
	CategoryStores = Category{
		Name: "stores",
		Keyword: `supermercado OR Walmart OR Oxxo OR "Super Ávila" OR Soriana OR abarrotes OR ` +
			`"tienda de conveniencia"`,
	}
)

// RankedPlace is a place accepted by the radius filter together with its distance to the center.
type RankedPlace struct {
	Place    Place
	Distance float64 // Distance in meters.
}

// Outcome describes how a search cycle ended.
type Outcome string

const (
	OutcomeResults      Outcome = "results"
	OutcomeNoMatches    Outcome = "no_matches"
	OutcomeNoneInRadius Outcome = "none_in_radius"
	OutcomeError        Outcome = "error"
)
