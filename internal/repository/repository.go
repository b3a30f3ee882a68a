package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/vicinity/internal/models"
)

// Repository persists the search history of every session.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is what the session and the http layer need from the history store.
type Interface interface {
	SaveSearch(ctx context.Context, record models.SearchRecord) error
	RecentSearches(ctx context.Context, sessionID string, limit int) ([]models.SearchRecord, error)
}

// NewRepository returns a history Repository backed by db.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
