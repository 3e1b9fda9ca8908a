package models

import (
	"database/sql"
	"time"
)

// MatchStatus is the canonical match lifecycle status.
// Provider status vocabularies are mapped onto these values by the normalizer.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
	StatusPostponed MatchStatus = "postponed"
	StatusCancelled MatchStatus = "cancelled"
)

// Match represents a fixture between two teams.
// HomeTeamID and AwayTeamID are always distinct; the sync pipeline rejects
// records that would violate this.
type Match struct {
	ID         int            `db:"id"`
	SportID    int            `db:"sport_id"`
	LeagueID   int            `db:"league_id"`
	ExternalID string         `db:"external_id"`
	Season     sql.NullString `db:"season"`
	HomeTeamID int            `db:"home_team_id"`
	AwayTeamID int            `db:"away_team_id"`
	MatchDate  time.Time      `db:"match_date"`
	Venue      sql.NullString `db:"venue"`
	Round      sql.NullString `db:"round"`
	Referee    sql.NullString `db:"referee"`
	Status     MatchStatus    `db:"status"`

	// Scores are null until the match has started
	HomeScore         sql.NullInt32 `db:"home_score"`
	AwayScore         sql.NullInt32 `db:"away_score"`
	HomeHalftimeScore sql.NullInt32 `db:"home_halftime_score"`
	AwayHalftimeScore sql.NullInt32 `db:"away_halftime_score"`

	// Expected goals, when the provider supplies them
	HomeXG sql.NullFloat64 `db:"home_xg"`
	AwayXG sql.NullFloat64 `db:"away_xg"`

	DataSource string    `db:"data_source"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// IsLive returns true if the match is currently in play
func (m *Match) IsLive() bool {
	return m.Status == StatusLive
}

// IsFinished returns true if the match is completed
func (m *Match) IsFinished() bool {
	return m.Status == StatusFinished
}

// IsScheduled returns true if the match has not started
func (m *Match) IsScheduled() bool {
	return m.Status == StatusScheduled
}
