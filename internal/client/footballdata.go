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

// competition identifies one Football-Data.org competition. The API is
// addressed by code; stored league rows carry the numeric id.
type competition struct {
	Code string
	ID   int
}

// footballDataCompetitions maps canonical league slugs to Football-Data.org
// competitions
var footballDataCompetitions = map[string]competition{
	"premier-league":   {Code: "PL", ID: 2021},
	"la-liga":          {Code: "PD", ID: 2014},
	"serie-a":          {Code: "SA", ID: 2019},
	"bundesliga":       {Code: "BL1", ID: 2002},
	"ligue-1":          {Code: "FL1", ID: 2015},
	"eredivisie":       {Code: "DED", ID: 2003},
	"primeira-liga":    {Code: "PPL", ID: 2017},
	"championship":     {Code: "ELC", ID: 2016},
	"champions-league": {Code: "CL", ID: 2001},
}

// FootballDataClient fetches from the Football-Data.org v4 API. The free
// tier allows 10 requests per minute.
type FootballDataClient struct {
	fetcher
	cfg *config.Config
}

// NewFootballDataClient creates a client for Football-Data.org
func NewFootballDataClient(cfg *config.Config, store cache.Cache, counter ratelimit.Counter) *FootballDataClient {
	return &FootballDataClient{
		fetcher: fetcher{
			source:  normalize.SourceFootballData,
			baseURL: cfg.FootballDataBaseURL,
			headers: map[string]string{
				"X-Auth-Token": cfg.FootballDataKey,
			},
			httpClient: &http.Client{Timeout: cfg.RequestTimeout},
			cache:      store,
			limiter:    ratelimit.NewLimiter(normalize.SourceFootballData, cfg.FootballDataMinuteLimit, time.Minute, counter),
		},
		cfg: cfg,
	}
}

func (c *FootballDataClient) Source() string {
	return normalize.SourceFootballData
}

// Leagues returns the canonical slugs of every mapped competition, sorted
func (c *FootballDataClient) Leagues() []string {
	slugs := make([]string, 0, len(footballDataCompetitions))
	for slug := range footballDataCompetitions {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// LeagueExternalID resolves a slug to the provider's competition id
func (c *FootballDataClient) LeagueExternalID(league string) (string, error) {
	comp, ok := footballDataCompetitions[league]
	if !ok {
		return "", &UnknownLeagueError{Source: c.source, League: league}
	}
	return strconv.Itoa(comp.ID), nil
}

func (c *FootballDataClient) competitionCode(league string) (string, error) {
	comp, ok := footballDataCompetitions[league]
	if !ok {
		return "", &UnknownLeagueError{Source: c.source, League: league}
	}
	return comp.Code, nil
}

// FetchLeagues fetches every mapped competition, one request per code
func (c *FootballDataClient) FetchLeagues(ctx context.Context) ([]normalize.RawLeague, error) {
	var leagues []normalize.RawLeague
	for _, slug := range c.Leagues() {
		code := footballDataCompetitions[slug].Code
		body, err := c.getJSON(ctx, "/competitions/"+code, nil, c.cfg.CacheTTLLeagues)
		if err != nil {
			return nil, err
		}
		if body == nil {
			continue
		}

		var comp struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
			Area struct {
				Name string `json:"name"`
			} `json:"area"`
			Emblem        string `json:"emblem"`
			CurrentSeason struct {
				StartDate string `json:"startDate"`
			} `json:"currentSeason"`
		}
		if err := json.Unmarshal(body, &comp); err != nil {
			return nil, fmt.Errorf("failed to decode competition %s: %w", code, err)
		}

		season := ""
		if len(comp.CurrentSeason.StartDate) >= 4 {
			season = comp.CurrentSeason.StartDate[:4]
		}
		leagues = append(leagues, normalize.RawLeague{
			ExternalID: strconv.Itoa(comp.ID),
			Name:       comp.Name,
			Country:    comp.Area.Name,
			Season:     season,
			LogoURL:    comp.Emblem,
			Type:       comp.Type,
		})
	}
	return leagues, nil
}

// FetchTeams fetches the teams registered in a competition season
func (c *FootballDataClient) FetchTeams(ctx context.Context, league string, season int) ([]normalize.RawTeam, error) {
	code, err := c.competitionCode(league)
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "/competitions/"+code+"/teams", map[string]string{
		"season": strconv.Itoa(season),
	}, c.cfg.CacheTTLTeams)
	if err != nil || body == nil {
		return nil, err
	}

	var payload struct {
		Teams []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			TLA  string `json:"tla"`
			Area struct {
				Name string `json:"name"`
			} `json:"area"`
			Founded any    `json:"founded"`
			Crest   string `json:"crest"`
			Venue   string `json:"venue"`
		} `json:"teams"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}

	teams := make([]normalize.RawTeam, 0, len(payload.Teams))
	for _, t := range payload.Teams {
		teams = append(teams, normalize.RawTeam{
			ExternalID:  strconv.Itoa(t.ID),
			Name:        t.Name,
			Code:        t.TLA,
			Country:     t.Area.Name,
			FoundedYear: t.Founded,
			LogoURL:     t.Crest,
			Venue:       t.Venue,
		})
	}
	return teams, nil
}

// FetchMatches fetches fixtures for a competition between from and to
func (c *FootballDataClient) FetchMatches(ctx context.Context, league string, season int, from, to time.Time) ([]normalize.RawMatch, error) {
	code, err := c.competitionCode(league)
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "/competitions/"+code+"/matches", map[string]string{
		"season":   strconv.Itoa(season),
		"dateFrom": from.Format("2006-01-02"),
		"dateTo":   to.Format("2006-01-02"),
	}, c.cfg.CacheTTLFixtures)
	if err != nil || body == nil {
		return nil, err
	}

	var payload struct {
		Matches []struct {
			ID       int    `json:"id"`
			UTCDate  string `json:"utcDate"`
			Status   string `json:"status"`
			Matchday int    `json:"matchday"`
			HomeTeam struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"homeTeam"`
			AwayTeam struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"awayTeam"`
			Score struct {
				FullTime struct {
					Home any `json:"home"`
					Away any `json:"away"`
				} `json:"fullTime"`
				HalfTime struct {
					Home any `json:"home"`
					Away any `json:"away"`
				} `json:"halfTime"`
			} `json:"score"`
			Referees []struct {
				Name string `json:"name"`
			} `json:"referees"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}

	matches := make([]normalize.RawMatch, 0, len(payload.Matches))
	for _, m := range payload.Matches {
		referee := ""
		if len(m.Referees) > 0 {
			referee = m.Referees[0].Name
		}
		round := ""
		if m.Matchday > 0 {
			round = fmt.Sprintf("Matchday %d", m.Matchday)
		}
		matches = append(matches, normalize.RawMatch{
			ExternalID:         strconv.Itoa(m.ID),
			HomeTeamExternalID: strconv.Itoa(m.HomeTeam.ID),
			AwayTeamExternalID: strconv.Itoa(m.AwayTeam.ID),
			HomeTeamName:       m.HomeTeam.Name,
			AwayTeamName:       m.AwayTeam.Name,
			MatchDate:          m.UTCDate,
			Round:              round,
			Referee:            referee,
			StatusCode:         m.Status,
			HomeScore:          m.Score.FullTime.Home,
			AwayScore:          m.Score.FullTime.Away,
			HalftimeHome:       m.Score.HalfTime.Home,
			HalftimeAway:       m.Score.HalfTime.Away,
		})
	}
	return matches, nil
}

// FetchStandings fetches the standings tables for a competition season.
// The provider returns separate TOTAL, HOME and AWAY tables; rows are merged
// per team.
func (c *FootballDataClient) FetchStandings(ctx context.Context, league string, season int) ([]normalize.RawStanding, error) {
	code, err := c.competitionCode(league)
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "/competitions/"+code+"/standings", map[string]string{
		"season": strconv.Itoa(season),
	}, c.cfg.CacheTTLStandings)
	if err != nil || body == nil {
		return nil, err
	}

	type tableRow struct {
		Position int `json:"position"`
		Team     struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"team"`
		PlayedGames  int    `json:"playedGames"`
		Won          int    `json:"won"`
		Draw         int    `json:"draw"`
		Lost         int    `json:"lost"`
		Points       int    `json:"points"`
		GoalsFor     int    `json:"goalsFor"`
		GoalsAgainst int    `json:"goalsAgainst"`
		Form         string `json:"form"`
	}
	var payload struct {
		Standings []struct {
			Type  string     `json:"type"`
			Table []tableRow `json:"table"`
		} `json:"standings"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode standings: %w", err)
	}

	byTeam := make(map[int]*normalize.RawStanding)
	var order []int
	for _, s := range payload.Standings {
		for _, row := range s.Table {
			st, ok := byTeam[row.Team.ID]
			if !ok {
				st = &normalize.RawStanding{
					TeamExternalID: strconv.Itoa(row.Team.ID),
					TeamName:       row.Team.Name,
				}
				byTeam[row.Team.ID] = st
				order = append(order, row.Team.ID)
			}

			switch s.Type {
			case "TOTAL":
				st.Rank = row.Position
				st.Points = row.Points
				st.Played = row.PlayedGames
				st.Wins = row.Won
				st.Draws = row.Draw
				st.Losses = row.Lost
				st.GoalsFor = row.GoalsFor
				st.GoalsAgainst = row.GoalsAgainst
				st.Form = row.Form
			case "HOME":
				st.HomePlayed = row.PlayedGames
				st.HomeWins = row.Won
				st.HomeDraws = row.Draw
				st.HomeLosses = row.Lost
				st.HomeGoalsFor = row.GoalsFor
				st.HomeGoalsAgainst = row.GoalsAgainst
			case "AWAY":
				st.AwayPlayed = row.PlayedGames
				st.AwayWins = row.Won
				st.AwayDraws = row.Draw
				st.AwayLosses = row.Lost
				st.AwayGoalsFor = row.GoalsFor
				st.AwayGoalsAgainst = row.GoalsAgainst
			}
		}
	}

	standings := make([]normalize.RawStanding, 0, len(order))
	for _, id := range order {
		standings = append(standings, *byTeam[id])
	}
	return standings, nil
}

// FetchMatchDetails returns nil: Football-Data.org does not expose per-side
// fixture statistics on the free tier.
func (c *FootballDataClient) FetchMatchDetails(ctx context.Context, matchExternalID string) (*normalize.RawMatchStats, error) {
	log.Debug().
		Str("source", c.source).
		Str("match", matchExternalID).
		Msg("Fixture statistics not available from this provider")
	return nil, nil
}

// FetchFixture fetches a single match by its Football-Data.org id. Returns
// (nil, nil) when the provider does not know it.
func (c *FootballDataClient) FetchFixture(ctx context.Context, matchExternalID string) (*normalize.RawMatch, error) {
	body, err := c.getJSON(ctx, "/matches/"+matchExternalID, nil, c.cfg.CacheTTLFixture)
	if err != nil || body == nil {
		return nil, err
	}

	var m struct {
		ID       int    `json:"id"`
		UTCDate  string `json:"utcDate"`
		Status   string `json:"status"`
		Matchday int    `json:"matchday"`
		HomeTeam struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"homeTeam"`
		AwayTeam struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"awayTeam"`
		Score struct {
			FullTime struct {
				Home any `json:"home"`
				Away any `json:"away"`
			} `json:"fullTime"`
			HalfTime struct {
				Home any `json:"home"`
				Away any `json:"away"`
			} `json:"halfTime"`
		} `json:"score"`
		Referees []struct {
			Name string `json:"name"`
		} `json:"referees"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("failed to decode match %s: %w", matchExternalID, err)
	}
	if m.ID == 0 {
		return nil, nil
	}

	referee := ""
	if len(m.Referees) > 0 {
		referee = m.Referees[0].Name
	}
	round := ""
	if m.Matchday > 0 {
		round = fmt.Sprintf("Matchday %d", m.Matchday)
	}
	return &normalize.RawMatch{
		ExternalID:         strconv.Itoa(m.ID),
		HomeTeamExternalID: strconv.Itoa(m.HomeTeam.ID),
		AwayTeamExternalID: strconv.Itoa(m.AwayTeam.ID),
		HomeTeamName:       m.HomeTeam.Name,
		AwayTeamName:       m.AwayTeam.Name,
		MatchDate:          m.UTCDate,
		Round:              round,
		Referee:            referee,
		StatusCode:         m.Status,
		HomeScore:          m.Score.FullTime.Home,
		AwayScore:          m.Score.FullTime.Away,
		HalftimeHome:       m.Score.HalfTime.Home,
		HalftimeAway:       m.Score.HalfTime.Away,
	}, nil
}

// FetchTeamStatistics returns nil: Football-Data.org has no per-team season
// aggregate endpoint; the standings tables carry the same numbers.
func (c *FootballDataClient) FetchTeamStatistics(ctx context.Context, teamExternalID, league string, season int) (*normalize.RawStanding, error) {
	log.Debug().
		Str("source", c.source).
		Str("team", teamExternalID).
		Msg("Team season statistics not available from this provider")
	return nil, nil
}

// TestConnection fetches the competition list to verify the token. The call
// counts against the minute quota, so usage is recorded.
func (c *FootballDataClient) TestConnection(ctx context.Context) error {
	resp, err := c.do(ctx, "/competitions", nil)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.limiter.Record(ctx); err != nil {
		log.Warn().Err(err).Str("source", c.source).Msg("Failed to record rate limit usage")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Source: c.source}
	default:
		return fmt.Errorf("connection test failed: status %d", resp.StatusCode)
	}
}

// Usage reports requests consumed in the current minute window
func (c *FootballDataClient) Usage(ctx context.Context) (Usage, error) {
	return c.usage(ctx)
}
