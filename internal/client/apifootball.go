package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"footysync/ingestion/internal/cache"
	"footysync/ingestion/internal/config"
	"footysync/ingestion/internal/normalize"
	"footysync/ingestion/internal/ratelimit"
)

// apiFootballLeagues maps canonical league slugs to API-Football league ids
var apiFootballLeagues = map[string]int{
	"premier-league":   39,
	"la-liga":          140,
	"serie-a":          135,
	"bundesliga":       78,
	"ligue-1":          61,
	"eredivisie":       88,
	"primeira-liga":    94,
	"championship":     40,
	"champions-league": 2,
	"europa-league":    3,
}

// APIFootballClient fetches from the API-Football v3 API. The free tier
// allows 100 requests per day, so every fetch goes through the response
// cache and the daily limiter.
type APIFootballClient struct {
	fetcher
	cfg *config.Config
}

// NewAPIFootballClient creates a client for API-Football
func NewAPIFootballClient(cfg *config.Config, store cache.Cache, counter ratelimit.Counter) *APIFootballClient {
	return &APIFootballClient{
		fetcher: fetcher{
			source:  normalize.SourceAPIFootball,
			baseURL: cfg.APIFootballBaseURL,
			headers: map[string]string{
				"x-apisports-key": cfg.APIFootballKey,
			},
			httpClient: &http.Client{Timeout: cfg.RequestTimeout},
			cache:      store,
			limiter:    ratelimit.NewLimiter(normalize.SourceAPIFootball, cfg.APIFootballDailyLimit, 24*time.Hour, counter),
			cacheable:  apiFootballCacheable,
		},
		cfg: cfg,
	}
}

func (c *APIFootballClient) Source() string {
	return normalize.SourceAPIFootball
}

// Leagues returns the canonical slugs of every mapped league, sorted
func (c *APIFootballClient) Leagues() []string {
	slugs := make([]string, 0, len(apiFootballLeagues))
	for slug := range apiFootballLeagues {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// LeagueExternalID resolves a slug to the provider's league id
func (c *APIFootballClient) LeagueExternalID(league string) (string, error) {
	id, err := c.leagueID(league)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(id), nil
}

// envelope is the fixed wrapper around every API-Football response. errors
// is {} on success and an object or array of messages on failure.
type apiFootballEnvelope struct {
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response json.RawMessage `json:"response"`
}

// decodeEnvelope unwraps the response array. A non-empty errors field means
// the provider rejected the call; that is logged and treated as empty.
func (c *APIFootballClient) decodeEnvelope(body []byte, endpoint string) (json.RawMessage, error) {
	if body == nil {
		return nil, nil
	}

	var env apiFootballEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	if hasEnvelopeErrors(env.Errors) {
		log.Error().
			Str("source", c.source).
			Str("endpoint", endpoint).
			RawJSON("errors", env.Errors).
			Msg("Provider returned errors in response envelope")
		return nil, nil
	}
	return env.Response, nil
}

// apiFootballCacheable rejects 200 bodies whose envelope carries provider
// errors so the next fetch re-contacts the provider instead of serving the
// failure for the full TTL
func apiFootballCacheable(body []byte) bool {
	var env apiFootballEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	return !hasEnvelopeErrors(env.Errors)
}

// hasEnvelopeErrors reports whether the errors field carries any messages.
// API-Football emits it as an empty array on success and as either an object
// or a populated array on failure.
func hasEnvelopeErrors(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		return len(asMap) > 0
	}
	var asList []any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return len(asList) > 0
	}
	return false
}

func (c *APIFootballClient) leagueID(league string) (int, error) {
	id, ok := apiFootballLeagues[league]
	if !ok {
		return 0, &UnknownLeagueError{Source: c.source, League: league}
	}
	return id, nil
}

// FetchLeagues fetches every mapped league, one request per league id.
// Responses are cached for a day so repeated syncs cost one call per league.
func (c *APIFootballClient) FetchLeagues(ctx context.Context) ([]normalize.RawLeague, error) {
	var leagues []normalize.RawLeague
	for _, slug := range c.Leagues() {
		id := apiFootballLeagues[slug]
		body, err := c.getJSON(ctx, "/leagues", map[string]string{"id": strconv.Itoa(id)}, c.cfg.CacheTTLLeagues)
		if err != nil {
			return nil, err
		}
		response, err := c.decodeEnvelope(body, "/leagues")
		if err != nil {
			return nil, err
		}
		if response == nil {
			continue
		}

		var entries []struct {
			League struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
				Type string `json:"type"`
				Logo string `json:"logo"`
			} `json:"league"`
			Country struct {
				Name string `json:"name"`
			} `json:"country"`
			Seasons []struct {
				Year    int  `json:"year"`
				Current bool `json:"current"`
			} `json:"seasons"`
		}
		if err := json.Unmarshal(response, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode leagues: %w", err)
		}

		for _, e := range entries {
			season := ""
			for _, s := range e.Seasons {
				if s.Current {
					season = strconv.Itoa(s.Year)
				}
			}
			leagues = append(leagues, normalize.RawLeague{
				ExternalID: strconv.Itoa(e.League.ID),
				Name:       e.League.Name,
				Country:    e.Country.Name,
				Season:     season,
				LogoURL:    e.League.Logo,
				Type:       e.League.Type,
			})
		}
	}
	return leagues, nil
}

// FetchTeams fetches the teams registered in a league season
func (c *APIFootballClient) FetchTeams(ctx context.Context, league string, season int) ([]normalize.RawTeam, error) {
	id, err := c.leagueID(league)
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "/teams", map[string]string{
		"league": strconv.Itoa(id),
		"season": strconv.Itoa(season),
	}, c.cfg.CacheTTLTeams)
	if err != nil {
		return nil, err
	}
	response, err := c.decodeEnvelope(body, "/teams")
	if err != nil || response == nil {
		return nil, err
	}

	var entries []struct {
		Team struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Code    string `json:"code"`
			Country string `json:"country"`
			Founded any    `json:"founded"`
			Logo    string `json:"logo"`
		} `json:"team"`
		Venue struct {
			Name     string `json:"name"`
			City     string `json:"city"`
			Capacity any    `json:"capacity"`
		} `json:"venue"`
	}
	if err := json.Unmarshal(response, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}

	teams := make([]normalize.RawTeam, 0, len(entries))
	for _, e := range entries {
		teams = append(teams, normalize.RawTeam{
			ExternalID:    strconv.Itoa(e.Team.ID),
			Name:          e.Team.Name,
			Code:          e.Team.Code,
			Country:       e.Team.Country,
			FoundedYear:   e.Team.Founded,
			LogoURL:       e.Team.Logo,
			Venue:         e.Venue.Name,
			VenueCity:     e.Venue.City,
			VenueCapacity: e.Venue.Capacity,
		})
	}
	return teams, nil
}

// FetchMatches fetches fixtures for a league between from and to
func (c *APIFootballClient) FetchMatches(ctx context.Context, league string, season int, from, to time.Time) ([]normalize.RawMatch, error) {
	id, err := c.leagueID(league)
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "/fixtures", map[string]string{
		"league": strconv.Itoa(id),
		"season": strconv.Itoa(season),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}, c.cfg.CacheTTLFixtures)
	if err != nil {
		return nil, err
	}
	response, err := c.decodeEnvelope(body, "/fixtures")
	if err != nil || response == nil {
		return nil, err
	}
	return decodeAPIFootballFixtures(response)
}

func decodeAPIFootballFixtures(response json.RawMessage) ([]normalize.RawMatch, error) {
	var entries []struct {
		Fixture struct {
			ID      int    `json:"id"`
			Date    string `json:"date"`
			Referee string `json:"referee"`
			Venue   struct {
				Name string `json:"name"`
			} `json:"venue"`
			Status struct {
				Short string `json:"short"`
			} `json:"status"`
		} `json:"fixture"`
		League struct {
			Round string `json:"round"`
		} `json:"league"`
		Teams struct {
			Home struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
		Goals struct {
			Home any `json:"home"`
			Away any `json:"away"`
		} `json:"goals"`
		Score struct {
			Halftime struct {
				Home any `json:"home"`
				Away any `json:"away"`
			} `json:"halftime"`
		} `json:"score"`
	}
	if err := json.Unmarshal(response, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}

	matches := make([]normalize.RawMatch, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, normalize.RawMatch{
			ExternalID:         strconv.Itoa(e.Fixture.ID),
			HomeTeamExternalID: strconv.Itoa(e.Teams.Home.ID),
			AwayTeamExternalID: strconv.Itoa(e.Teams.Away.ID),
			HomeTeamName:       e.Teams.Home.Name,
			AwayTeamName:       e.Teams.Away.Name,
			MatchDate:          e.Fixture.Date,
			Venue:              e.Fixture.Venue.Name,
			Round:              e.League.Round,
			Referee:            e.Fixture.Referee,
			StatusCode:         e.Fixture.Status.Short,
			HomeScore:          e.Goals.Home,
			AwayScore:          e.Goals.Away,
			HalftimeHome:       e.Score.Halftime.Home,
			HalftimeAway:       e.Score.Halftime.Away,
		})
	}
	return matches, nil
}

// FetchFixture fetches a single fixture by its API-Football id. Returns
// (nil, nil) when the provider does not know the fixture.
func (c *APIFootballClient) FetchFixture(ctx context.Context, matchExternalID string) (*normalize.RawMatch, error) {
	body, err := c.getJSON(ctx, "/fixtures", map[string]string{
		"id": matchExternalID,
	}, c.cfg.CacheTTLFixture)
	if err != nil {
		return nil, err
	}
	response, err := c.decodeEnvelope(body, "/fixtures")
	if err != nil || response == nil {
		return nil, err
	}

	matches, err := decodeAPIFootballFixtures(response)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// FetchStandings fetches the standings table for a league season
func (c *APIFootballClient) FetchStandings(ctx context.Context, league string, season int) ([]normalize.RawStanding, error) {
	id, err := c.leagueID(league)
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "/standings", map[string]string{
		"league": strconv.Itoa(id),
		"season": strconv.Itoa(season),
	}, c.cfg.CacheTTLStandings)
	if err != nil {
		return nil, err
	}
	response, err := c.decodeEnvelope(body, "/standings")
	if err != nil || response == nil {
		return nil, err
	}

	type sideRecord struct {
		Played int `json:"played"`
		Win    int `json:"win"`
		Draw   int `json:"draw"`
		Lose   int `json:"lose"`
		Goals  struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	}
	var entries []struct {
		League struct {
			Standings [][]struct {
				Rank int `json:"rank"`
				Team struct {
					ID   int    `json:"id"`
					Name string `json:"name"`
				} `json:"team"`
				Points int        `json:"points"`
				Form   string     `json:"form"`
				All    sideRecord `json:"all"`
				Home   sideRecord `json:"home"`
				Away   sideRecord `json:"away"`
			} `json:"standings"`
		} `json:"league"`
	}
	if err := json.Unmarshal(response, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode standings: %w", err)
	}

	var standings []normalize.RawStanding
	for _, e := range entries {
		for _, table := range e.League.Standings {
			for _, row := range table {
				standings = append(standings, normalize.RawStanding{
					TeamExternalID: strconv.Itoa(row.Team.ID),
					TeamName:       row.Team.Name,
					Rank:           row.Rank,
					Points:         row.Points,
					Played:         row.All.Played,
					Wins:           row.All.Win,
					Draws:          row.All.Draw,
					Losses:         row.All.Lose,
					GoalsFor:       row.All.Goals.For,
					GoalsAgainst:   row.All.Goals.Against,

					HomePlayed:       row.Home.Played,
					HomeWins:         row.Home.Win,
					HomeDraws:        row.Home.Draw,
					HomeLosses:       row.Home.Lose,
					HomeGoalsFor:     row.Home.Goals.For,
					HomeGoalsAgainst: row.Home.Goals.Against,

					AwayPlayed:       row.Away.Played,
					AwayWins:         row.Away.Win,
					AwayDraws:        row.Away.Draw,
					AwayLosses:       row.Away.Lose,
					AwayGoalsFor:     row.Away.Goals.For,
					AwayGoalsAgainst: row.Away.Goals.Against,

					Form: row.Form,
				})
			}
		}
	}
	return standings, nil
}

// FetchMatchDetails fetches per-side statistics for a fixture. API-Football
// returns one statistics block per team, home side first.
func (c *APIFootballClient) FetchMatchDetails(ctx context.Context, matchExternalID string) (*normalize.RawMatchStats, error) {
	body, err := c.getJSON(ctx, "/fixtures/statistics", map[string]string{
		"fixture": matchExternalID,
	}, c.cfg.CacheTTLFixture)
	if err != nil {
		return nil, err
	}
	response, err := c.decodeEnvelope(body, "/fixtures/statistics")
	if err != nil || response == nil {
		return nil, err
	}

	var entries []struct {
		Team struct {
			ID int `json:"id"`
		} `json:"team"`
		Statistics []struct {
			Type  string `json:"type"`
			Value any    `json:"value"`
		} `json:"statistics"`
	}
	if err := json.Unmarshal(response, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode fixture statistics: %w", err)
	}
	if len(entries) < 2 {
		return nil, nil
	}

	stats := &normalize.RawMatchStats{
		MatchExternalID: matchExternalID,
		Home:            make(map[string]any, len(entries[0].Statistics)),
		Away:            make(map[string]any, len(entries[1].Statistics)),
	}
	for _, s := range entries[0].Statistics {
		stats.Home[s.Type] = s.Value
	}
	for _, s := range entries[1].Statistics {
		stats.Away[s.Type] = s.Value
	}
	return stats, nil
}

// FetchTeamStatistics fetches a team's season aggregate record from
// /teams/statistics. API-Football does not include rank or points there, so
// points are derived from the win/draw record.
func (c *APIFootballClient) FetchTeamStatistics(ctx context.Context, teamExternalID, league string, season int) (*normalize.RawStanding, error) {
	id, err := c.leagueID(league)
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "/teams/statistics", map[string]string{
		"team":   teamExternalID,
		"league": strconv.Itoa(id),
		"season": strconv.Itoa(season),
	}, c.cfg.CacheTTLTeamStats)
	if err != nil {
		return nil, err
	}
	response, err := c.decodeEnvelope(body, "/teams/statistics")
	if err != nil || response == nil {
		return nil, err
	}

	type record struct {
		Home  int `json:"home"`
		Away  int `json:"away"`
		Total int `json:"total"`
	}
	var entry struct {
		Team struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"team"`
		Form     string `json:"form"`
		Fixtures struct {
			Played record `json:"played"`
			Wins   record `json:"wins"`
			Draws  record `json:"draws"`
			Loses  record `json:"loses"`
		} `json:"fixtures"`
		Goals struct {
			For struct {
				Total record `json:"total"`
			} `json:"for"`
			Against struct {
				Total record `json:"total"`
			} `json:"against"`
		} `json:"goals"`
	}
	if err := json.Unmarshal(response, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode team statistics: %w", err)
	}
	if entry.Team.ID == 0 {
		return nil, nil
	}

	return &normalize.RawStanding{
		TeamExternalID: strconv.Itoa(entry.Team.ID),
		TeamName:       entry.Team.Name,
		Points:         entry.Fixtures.Wins.Total*3 + entry.Fixtures.Draws.Total,
		Played:         entry.Fixtures.Played.Total,
		Wins:           entry.Fixtures.Wins.Total,
		Draws:          entry.Fixtures.Draws.Total,
		Losses:         entry.Fixtures.Loses.Total,
		GoalsFor:       entry.Goals.For.Total.Total,
		GoalsAgainst:   entry.Goals.Against.Total.Total,

		HomePlayed:       entry.Fixtures.Played.Home,
		HomeWins:         entry.Fixtures.Wins.Home,
		HomeDraws:        entry.Fixtures.Draws.Home,
		HomeLosses:       entry.Fixtures.Loses.Home,
		HomeGoalsFor:     entry.Goals.For.Total.Home,
		HomeGoalsAgainst: entry.Goals.Against.Total.Home,

		AwayPlayed:       entry.Fixtures.Played.Away,
		AwayWins:         entry.Fixtures.Wins.Away,
		AwayDraws:        entry.Fixtures.Draws.Away,
		AwayLosses:       entry.Fixtures.Loses.Away,
		AwayGoalsFor:     entry.Goals.For.Total.Away,
		AwayGoalsAgainst: entry.Goals.Against.Total.Away,

		Form: entry.Form,
	}, nil
}

// TestConnection calls the account status endpoint, which does not count
// against the daily quota, so it bypasses the cache and limiter.
func (c *APIFootballClient) TestConnection(ctx context.Context) error {
	resp, err := c.do(ctx, "/status", nil)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Source: c.source}
	default:
		return fmt.Errorf("connection test failed: status %d", resp.StatusCode)
	}
}

// Usage reports requests consumed in the current daily window
func (c *APIFootballClient) Usage(ctx context.Context) (Usage, error) {
	return c.usage(ctx)
}
