package normalize

// Raw record types produced by the API clients. Fields are unvalidated and
// loosely typed: clients flatten each provider's JSON shape into these,
// and the normalizer is the only place that validates and coerces them.
// Raw payload shape never leaves the client/normalize boundary.

// RawLeague is an unvalidated league record from a provider
type RawLeague struct {
	ExternalID string
	Name       string
	Country    string
	Season     string
	LogoURL    string
	Type       string
}

// RawTeam is an unvalidated team record from a provider
type RawTeam struct {
	ExternalID    string
	Name          string
	Code          string
	Country       string
	FoundedYear   any
	LogoURL       string
	Venue         string
	VenueCity     string
	VenueCapacity any
}

// RawMatch is an unvalidated fixture record from a provider.
// StatusCode carries the provider's own status vocabulary.
type RawMatch struct {
	ExternalID         string
	HomeTeamExternalID string
	AwayTeamExternalID string
	HomeTeamName       string
	AwayTeamName       string
	MatchDate          string
	Venue              string
	Round              string
	Referee            string
	StatusCode         string
	HomeScore          any
	AwayScore          any
	HalftimeHome       any
	HalftimeAway       any
	HomeXG             any
	AwayXG             any
}

// RawStanding is one team's row from a standings table
type RawStanding struct {
	TeamExternalID string
	TeamName       string
	Rank           any
	Points         any
	Played         any
	Wins           any
	Draws          any
	Losses         any
	GoalsFor       any
	GoalsAgainst   any

	HomePlayed       any
	HomeWins         any
	HomeDraws        any
	HomeLosses       any
	HomeGoalsFor     any
	HomeGoalsAgainst any

	AwayPlayed       any
	AwayWins         any
	AwayDraws        any
	AwayLosses       any
	AwayGoalsFor     any
	AwayGoalsAgainst any

	Form      string
	XGFor     any
	XGAgainst any
}

// RawMatchStats holds per-side statistic values for a single fixture, keyed
// by the provider's statistic label (e.g. "Ball Possession" -> "55%").
type RawMatchStats struct {
	MatchExternalID string
	Home            map[string]any
	Away            map[string]any
}
