package models

import "time"

// SearchRecord is one persisted search cycle.
type SearchRecord struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"-"`
	Address   string    `json:"address"`
	Center    Location  `json:"center"`
	Radius    int       `json:"radius"`
	Outcome   Outcome   `json:"outcome"`
	Results   int       `json:"results"`
	CreatedAt time.Time `json:"created_at"`
}
