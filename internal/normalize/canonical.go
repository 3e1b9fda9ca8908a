package normalize

import (
	"time"

	"footysync/ingestion/internal/models"
)

// Canonical record types: validated, provider-agnostic representations ready
// for the store. The orchestrator only ever sees these.

// CanonicalLeague is a normalized league record
type CanonicalLeague struct {
	ExternalID string
	Name       string
	Slug       string
	Country    string
	Season     string
	LogoURL    string
	DataSource string
}

// CanonicalTeam is a normalized team record
type CanonicalTeam struct {
	ExternalID    string
	Name          string
	Code          string
	Country       string
	FoundedYear   *int
	LogoURL       string
	Venue         string
	VenueCity     string
	VenueCapacity *int
	DataSource    string
}

// CanonicalMatch is a normalized fixture record. HomeTeamExternalID and
// AwayTeamExternalID are guaranteed distinct.
type CanonicalMatch struct {
	ExternalID         string
	HomeTeamExternalID string
	AwayTeamExternalID string
	HomeTeamName       string
	AwayTeamName       string
	MatchDate          time.Time
	Venue              string
	Round              string
	Referee            string
	Status             models.MatchStatus
	HomeScore          *int
	AwayScore          *int
	HalftimeHome       *int
	HalftimeAway       *int
	HomeXG             *float64
	AwayXG             *float64
	DataSource         string
}

// CanonicalStanding is a normalized standings row for one team
type CanonicalStanding struct {
	TeamExternalID string
	TeamName       string
	Points         int
	Played         int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int

	HomePlayed       int
	HomeWins         int
	HomeDraws        int
	HomeLosses       int
	HomeGoalsFor     int
	HomeGoalsAgainst int

	AwayPlayed       int
	AwayWins         int
	AwayDraws        int
	AwayLosses       int
	AwayGoalsFor     int
	AwayGoalsAgainst int

	Form       string
	XGFor      *float64
	XGAgainst  *float64
	DataSource string
}

// CanonicalMatchStats holds normalized per-side statistics for one fixture.
// Percentage-valued source strings are parsed to floats.
type CanonicalMatchStats struct {
	MatchExternalID string
	Home            SideStats
	Away            SideStats
}

// SideStats is one side's statistics for a fixture
type SideStats struct {
	Possession     *float64
	ShotsTotal     *int
	ShotsOnTarget  *int
	PassesTotal    *int
	PassesAccurate *int
	Fouls          *int
	YellowCards    *int
	RedCards       *int
	Corners        *int
	Offsides       *int
	XG             *float64
}
