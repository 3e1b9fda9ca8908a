package models

import (
	"database/sql"
	"time"
)

// Team represents a football club
type Team struct {
	ID            int            `db:"id"`
	SportID       int            `db:"sport_id"`
	LeagueID      sql.NullInt32  `db:"league_id"`
	ExternalID    string         `db:"external_id"`
	Name          string         `db:"name"`
	Code          sql.NullString `db:"code"`
	Country       sql.NullString `db:"country"`
	FoundedYear   sql.NullInt32  `db:"founded_year"`
	LogoURL       sql.NullString `db:"logo_url"`
	Venue         sql.NullString `db:"venue"`
	VenueCity     sql.NullString `db:"venue_city"`
	VenueCapacity sql.NullInt32  `db:"venue_capacity"`
	DataSource    string         `db:"data_source"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}
