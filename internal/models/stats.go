package models

import (
	"database/sql"
	"time"
)

// TeamStatistics holds per-season aggregates for a team, unique on
// (team_id, season). Derived fields are recomputed on every write.
type TeamStatistics struct {
	ID     int    `db:"id"`
	TeamID int    `db:"team_id"`
	Season string `db:"season"`

	MatchesPlayed int `db:"matches_played"`
	Wins          int `db:"wins"`
	Draws         int `db:"draws"`
	Losses        int `db:"losses"`
	GoalsFor      int `db:"goals_for"`
	GoalsAgainst  int `db:"goals_against"`
	Points        int `db:"points"`

	HomeMatches      int `db:"home_matches"`
	HomeWins         int `db:"home_wins"`
	HomeDraws        int `db:"home_draws"`
	HomeLosses       int `db:"home_losses"`
	HomeGoalsFor     int `db:"home_goals_for"`
	HomeGoalsAgainst int `db:"home_goals_against"`

	AwayMatches      int `db:"away_matches"`
	AwayWins         int `db:"away_wins"`
	AwayDraws        int `db:"away_draws"`
	AwayLosses       int `db:"away_losses"`
	AwayGoalsFor     int `db:"away_goals_for"`
	AwayGoalsAgainst int `db:"away_goals_against"`

	// Derived, recomputed on write
	GoalDifference       int             `db:"goal_difference"`
	GoalsForPerMatch     sql.NullFloat64 `db:"goals_for_per_match"`
	GoalsAgainstPerMatch sql.NullFloat64 `db:"goals_against_per_match"`

	// Expected goals aggregates, when available
	XGFor     sql.NullFloat64 `db:"xg_for"`
	XGAgainst sql.NullFloat64 `db:"xg_against"`

	// Last five results, most recent first (e.g. "WWDLW")
	Form sql.NullString `db:"form"`

	DataSource string    `db:"data_source"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ComputeDerived recomputes goal difference and per-match averages from the
// raw counters. Called before every write so derived columns never go stale.
func (s *TeamStatistics) ComputeDerived() {
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst

	if s.MatchesPlayed > 0 {
		played := float64(s.MatchesPlayed)
		s.GoalsForPerMatch = sql.NullFloat64{Float64: float64(s.GoalsFor) / played, Valid: true}
		s.GoalsAgainstPerMatch = sql.NullFloat64{Float64: float64(s.GoalsAgainst) / played, Valid: true}
	} else {
		s.GoalsForPerMatch = sql.NullFloat64{}
		s.GoalsAgainstPerMatch = sql.NullFloat64{}
	}
}
