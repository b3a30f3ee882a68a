// Package search runs the two category-scoped nearby queries for a center,
// merges and deduplicates them and filters the candidates by distance.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/metrics"
	"github.com/UnknownOlympus/vicinity/internal/models"
	"github.com/UnknownOlympus/vicinity/internal/places"
)

// ErrUnexpected wraps failures that abort a search cycle as a whole.
var ErrUnexpected = errors.New("unexpected search failure")

// Result is the outcome of one search cycle.
type Result struct {
	Outcome  models.Outcome       // Outcome tells the presenter which rows to render.
	Radius   int                  // Radius is the effective radius in meters.
	Places   []models.RankedPlace // Places accepted by the radius filter, nearest first.
	Merged   int                  // Merged is the number of unique candidates before filtering.
	Failures []string             // Failures lists the categories whose query failed.
}

// Orchestrator issues the category queries and applies merge and radius filtering.
type Orchestrator struct {
	log        *slog.Logger     // Logger for search activities
	provider   places.Provider  // Places provider for nearby queries
	metrics    *metrics.Metrics // Metrics for provider calls and filter results
	categories []models.Category
	timeout    time.Duration // Upper bound for a single provider call, zero means none
}

// NewOrchestrator creates an Orchestrator searching food and store categories, in that order.
func NewOrchestrator(
	log *slog.Logger,
	provider places.Provider,
	metrics *metrics.Metrics,
	timeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		log:        log,
		provider:   provider,
		metrics:    metrics,
		categories: []models.Category{models.CategoryFood, models.CategoryStores},
		timeout:    timeout,
	}
}

// Search runs every category query concurrently around center and returns the
// places within radius meters. A failed category query is logged and treated
// as an empty list; only a failure of the cycle itself returns an error.
func (o *Orchestrator) Search(ctx context.Context, center models.Location, radius int) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.ErrorContext(ctx, "Search cycle panicked", "panic", r)
			result, err = nil, fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	if radius <= 0 {
		return nil, fmt.Errorf("%w: invalid radius %d", ErrUnexpected, radius)
	}

	tasks := make([]func(context.Context) ([]models.Place, error), 0, len(o.categories))
	for _, category := range o.categories {
		req := models.SearchRequest{Center: center, Radius: radius, Keyword: category.Keyword}
		tasks = append(tasks, func(ctx context.Context) ([]models.Place, error) {
			return o.nearby(ctx, category, req)
		})
	}

	settled := Settle(ctx, tasks...)

	result = &Result{Radius: radius}
	lists := make([][]models.Place, 0, len(settled))
	for idx, outcome := range settled {
		category := o.categories[idx]
		if outcome.Err != nil {
			o.log.ErrorContext(ctx, "Category search failed, continuing without it",
				"category", category.Name, "error", outcome.Err)
			result.Failures = append(result.Failures, category.Name)
			continue
		}
		o.log.DebugContext(ctx, "Category search finished", "category", category.Name, "results", len(outcome.Value))
		lists = append(lists, outcome.Value)
	}

	total := 0
	for _, list := range lists {
		total += len(list)
	}

	merged := Merge(lists...)
	result.Merged = len(merged)
	o.metrics.PlacesProcessed.WithLabelValues("duplicate").Add(float64(total - len(merged)))

	if len(merged) == 0 {
		o.log.InfoContext(ctx, "No places found for any category", "failed_categories", len(result.Failures))
		result.Outcome = models.OutcomeNoMatches
		return result, nil
	}

	accepted, rejected := WithinRadius(center, float64(radius), merged)
	for _, r := range rejected {
		o.log.DebugContext(ctx, "Place outside radius filtered",
			"place", r.Place.Name, "distance", fmt.Sprintf("%.0fm", r.Distance))
	}
	o.metrics.PlacesProcessed.WithLabelValues("accepted").Add(float64(len(accepted)))
	o.metrics.PlacesProcessed.WithLabelValues("out_of_radius").Add(float64(len(rejected)))

	result.Places = accepted
	if len(accepted) == 0 {
		result.Outcome = models.OutcomeNoneInRadius
	} else {
		result.Outcome = models.OutcomeResults
	}

	o.log.InfoContext(ctx, "Search finished",
		"unique", len(merged), "within_radius", len(accepted), "radius", radius)

	return result, nil
}

// nearby runs one category query with the per-call timeout and records its metrics.
func (o *Orchestrator) nearby(ctx context.Context, category models.Category, req models.SearchRequest) ([]models.Place, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	startTime := time.Now()
	found, err := o.provider.NearbySearch(ctx, req)
	o.metrics.RequestSeconds.WithLabelValues("nearby_search").Observe(time.Since(startTime).Seconds())

	if err != nil {
		o.metrics.APIErrors.WithLabelValues("nearby_search").Inc()
		return nil, fmt.Errorf("%s search: %w", category.Name, err)
	}

	return found, nil
}
