package models

import (
	"database/sql"
	"time"
)

// League represents a football competition tracked by the pipeline.
// ExternalID is the provider's identifier and is unique per data source.
type League struct {
	ID         int            `db:"id"`
	SportID    int            `db:"sport_id"`
	ExternalID string         `db:"external_id"`
	Name       string         `db:"name"`
	Slug       string         `db:"slug"`
	Country    sql.NullString `db:"country"`
	Season     sql.NullString `db:"season"`
	LogoURL    sql.NullString `db:"logo_url"`
	DataSource string         `db:"data_source"`
	IsActive   bool           `db:"is_active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
