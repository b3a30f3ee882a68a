package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/vicinity/internal/models"
)

const createSearchesTable = `
	CREATE TABLE IF NOT EXISTS search_history (
		id            BIGSERIAL PRIMARY KEY,
		session_id    TEXT NOT NULL,
		address       TEXT NOT NULL DEFAULT '',
		latitude      DOUBLE PRECISION NOT NULL,
		longitude     DOUBLE PRECISION NOT NULL,
		radius        INTEGER NOT NULL,
		outcome       TEXT NOT NULL,
		results_count INTEGER NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// EnsureSchema creates the search history table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSearchesTable); err != nil {
		return fmt.Errorf("failed to create search history table: %w", err)
	}

	return nil
}

// SaveSearch stores one finished search cycle.
func (r *Repository) SaveSearch(ctx context.Context, record models.SearchRecord) error {
	query := `
		INSERT INTO search_history
			(session_id, address, latitude, longitude, radius, outcome, results_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	_, err := r.db.Exec(ctx, query,
		record.SessionID,
		record.Address,
		record.Center.Latitude,
		record.Center.Longitude,
		record.Radius,
		string(record.Outcome),
		record.Results,
	)
	if err != nil {
		return fmt.Errorf("failed to save search history: %w", err)
	}

	r.log.DebugContext(ctx, "Search saved to history", "session", record.SessionID, "outcome", record.Outcome)

	return nil
}

// RecentSearches returns the latest searches of a session, newest first.
//
// Parameters:
// - ctx: The context for the operation, allowing for cancellation and timeout.
// - sessionID: The session whose searches are listed.
// - limit: The maximum number of searches to retrieve.
func (r *Repository) RecentSearches(ctx context.Context, sessionID string, limit int) ([]models.SearchRecord, error) {
	query := `
		SELECT id, session_id, address, latitude, longitude, radius, outcome, results_count, created_at
		FROM search_history
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	records := []models.SearchRecord{}
	for rows.Next() {
		var (
			record  models.SearchRecord
			outcome string
		)
		if errScan := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.Address,
			&record.Center.Latitude,
			&record.Center.Longitude,
			&record.Radius,
			&outcome,
			&record.Results,
			&record.CreatedAt,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan search history row: %w", errScan)
		}
		record.Outcome = models.Outcome(outcome)
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return records, nil
}
