package client

import (
	"context"
	"fmt"
	"time"

	"footysync/ingestion/internal/cache"
	"footysync/ingestion/internal/config"
	"footysync/ingestion/internal/normalize"
	"footysync/ingestion/internal/ratelimit"
)

// DataSource is the provider-agnostic fetch surface. Implementations flatten
// provider JSON into normalize.Raw* records and hide caching, rate limiting
// and retries behind each Fetch call.
//
// A returned error means the call could not be made at all (quota exhausted,
// bad credentials, counter backend down). Recoverable provider-side failures
// produce an empty result and a nil error so a sync batch can carry on.
type DataSource interface {
	// Source returns the provider name used in sync logs and cache keys
	Source() string

	// Leagues returns the canonical league slugs this source can serve
	Leagues() []string

	// LeagueExternalID resolves a canonical league slug to this provider's
	// identifier for it, matching the external_id on stored league rows
	LeagueExternalID(league string) (string, error)

	// FetchLeagues returns every league this source is configured to track
	FetchLeagues(ctx context.Context) ([]normalize.RawLeague, error)

	// FetchTeams returns the teams in a league for a season. league is the
	// canonical league slug (e.g. "premier_league").
	FetchTeams(ctx context.Context, league string, season int) ([]normalize.RawTeam, error)

	// FetchMatches returns fixtures for a league between from and to inclusive
	FetchMatches(ctx context.Context, league string, season int, from, to time.Time) ([]normalize.RawMatch, error)

	// FetchStandings returns the current standings table for a league season
	FetchStandings(ctx context.Context, league string, season int) ([]normalize.RawStanding, error)

	// FetchMatchDetails returns per-side statistics for a finished fixture.
	// Returns (nil, nil) when the provider has no statistics for it.
	FetchMatchDetails(ctx context.Context, matchExternalID string) (*normalize.RawMatchStats, error)

	// FetchFixture returns a single fixture by its provider id, or (nil, nil)
	// when the provider does not know it
	FetchFixture(ctx context.Context, matchExternalID string) (*normalize.RawMatch, error)

	// FetchTeamStatistics returns a team's season aggregate record, or
	// (nil, nil) when the provider has no such endpoint
	FetchTeamStatistics(ctx context.Context, teamExternalID, league string, season int) (*normalize.RawStanding, error)

	// TestConnection makes a cheap authenticated call to verify credentials
	TestConnection(ctx context.Context) error

	// Usage reports quota consumption in the current rate-limit window
	Usage(ctx context.Context) (Usage, error)
}

// Usage describes how much of the provider's request quota the current
// window has consumed.
type Usage struct {
	Used      int
	Limit     int
	Remaining int
	Percent   float64
}

// AuthError indicates the provider rejected our credentials. Not retryable.
type AuthError struct {
	Source string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: check API key", e.Source)
}

// UnknownLeagueError indicates a league slug this source has no mapping for
type UnknownLeagueError struct {
	Source string
	League string
}

func (e *UnknownLeagueError) Error() string {
	return fmt.Sprintf("%s has no mapping for league %q", e.Source, e.League)
}

// New builds the DataSource for a provider name. The provider name matches
// normalize.SourceAPIFootball / normalize.SourceFootballData.
func New(source string, cfg *config.Config, store cache.Cache, counter ratelimit.Counter) (DataSource, error) {
	switch source {
	case normalize.SourceAPIFootball:
		if cfg.APIFootballKey == "" {
			return nil, fmt.Errorf("API_FOOTBALL_KEY is not configured")
		}
		return NewAPIFootballClient(cfg, store, counter), nil
	case normalize.SourceFootballData:
		if cfg.FootballDataKey == "" {
			return nil, fmt.Errorf("FOOTBALL_DATA_KEY is not configured")
		}
		return NewFootballDataClient(cfg, store, counter), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", source)
	}
}
