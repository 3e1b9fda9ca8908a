package normalize

import (
	"strings"

	"github.com/rs/zerolog/log"

	"footysync/ingestion/internal/models"
)

// Provider source names
const (
	SourceAPIFootball  = "FootballAPI"
	SourceFootballData = "FootballDataOrg"
)

// apiFootballStatuses maps API-Football short status codes to the canonical
// status enum. Unmapped codes default to scheduled.
var apiFootballStatuses = map[string]models.MatchStatus{
	"TBD":  models.StatusScheduled,
	"NS":   models.StatusScheduled,
	"LIVE": models.StatusLive,
	"1H":   models.StatusLive,
	"HT":   models.StatusLive,
	"2H":   models.StatusLive,
	"ET":   models.StatusLive,
	"P":    models.StatusLive,
	"BT":   models.StatusLive,
	"FT":   models.StatusFinished,
	"AET":  models.StatusFinished,
	"PEN":  models.StatusFinished,
	"WO":   models.StatusFinished,
	"PST":  models.StatusPostponed,
	"CANC": models.StatusCancelled,
	"ABD":  models.StatusCancelled,
	"AWD":  models.StatusCancelled,
}

// footballDataStatuses maps Football-Data.org status strings
var footballDataStatuses = map[string]models.MatchStatus{
	"SCHEDULED": models.StatusScheduled,
	"TIMED":     models.StatusScheduled,
	"IN_PLAY":   models.StatusLive,
	"PAUSED":    models.StatusLive,
	"FINISHED":  models.StatusFinished,
	"AWARDED":   models.StatusFinished,
	"POSTPONED": models.StatusPostponed,
	"SUSPENDED": models.StatusPostponed,
	"CANCELLED": models.StatusCancelled,
}

// Normalizer converts raw provider records into canonical records,
// validating required fields and coercing types safely.
type Normalizer struct {
	source   string
	statuses map[string]models.MatchStatus
}

// NewNormalizer creates a normalizer for the named source. The source
// selects the status vocabulary table.
func NewNormalizer(source string) *Normalizer {
	statuses := apiFootballStatuses
	if source == SourceFootballData {
		statuses = footballDataStatuses
	}
	return &Normalizer{source: source, statuses: statuses}
}

// Source returns the source name stamped onto canonical records
func (n *Normalizer) Source() string {
	return n.source
}

// MapStatus resolves a provider status code to the canonical enum.
// Unmapped codes default to scheduled.
func (n *Normalizer) MapStatus(code string) models.MatchStatus {
	if status, ok := n.statuses[code]; ok {
		return status
	}
	return models.StatusScheduled
}

// NormalizeLeague validates and converts a raw league record
func (n *Normalizer) NormalizeLeague(raw RawLeague) (*CanonicalLeague, error) {
	var missing []string
	if raw.ExternalID == "" {
		missing = append(missing, "external_id")
	}
	if raw.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return nil, missingFields("league", missing)
	}

	league := &CanonicalLeague{
		ExternalID: raw.ExternalID,
		Name:       raw.Name,
		Slug:       Slugify(raw.Name),
		Country:    raw.Country,
		Season:     raw.Season,
		LogoURL:    raw.LogoURL,
		DataSource: n.source,
	}

	log.Debug().Str("league", league.Name).Msg("Normalized league")
	return league, nil
}

// NormalizeTeam validates and converts a raw team record
func (n *Normalizer) NormalizeTeam(raw RawTeam) (*CanonicalTeam, error) {
	var missing []string
	if raw.ExternalID == "" {
		missing = append(missing, "external_id")
	}
	if raw.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return nil, missingFields("team", missing)
	}

	team := &CanonicalTeam{
		ExternalID:    raw.ExternalID,
		Name:          raw.Name,
		Code:          raw.Code,
		Country:       raw.Country,
		FoundedYear:   safeInt(raw.FoundedYear),
		LogoURL:       raw.LogoURL,
		Venue:         raw.Venue,
		VenueCity:     raw.VenueCity,
		VenueCapacity: safeInt(raw.VenueCapacity),
		DataSource:    n.source,
	}

	log.Debug().Str("team", team.Name).Msg("Normalized team")
	return team, nil
}

// NormalizeMatch validates and converts a raw fixture record. A record whose
// home and away teams resolve to the same external id is rejected.
func (n *Normalizer) NormalizeMatch(raw RawMatch) (*CanonicalMatch, error) {
	var missing []string
	if raw.ExternalID == "" {
		missing = append(missing, "external_id")
	}
	if raw.MatchDate == "" {
		missing = append(missing, "match_date")
	}
	if raw.StatusCode == "" {
		missing = append(missing, "status")
	}
	if raw.HomeTeamExternalID == "" {
		missing = append(missing, "home_team_external_id")
	}
	if raw.AwayTeamExternalID == "" {
		missing = append(missing, "away_team_external_id")
	}
	if len(missing) > 0 {
		return nil, missingFields("match", missing)
	}

	if raw.HomeTeamExternalID == raw.AwayTeamExternalID {
		return nil, parseFailure("match", "home and away team are the same: "+raw.HomeTeamExternalID)
	}

	matchDate, ok := parseDateTime(raw.MatchDate)
	if !ok {
		return nil, parseFailure("match", "invalid match_date: "+raw.MatchDate)
	}

	match := &CanonicalMatch{
		ExternalID:         raw.ExternalID,
		HomeTeamExternalID: raw.HomeTeamExternalID,
		AwayTeamExternalID: raw.AwayTeamExternalID,
		HomeTeamName:       raw.HomeTeamName,
		AwayTeamName:       raw.AwayTeamName,
		MatchDate:          matchDate,
		Venue:              raw.Venue,
		Round:              raw.Round,
		Referee:            raw.Referee,
		Status:             n.MapStatus(raw.StatusCode),
		HomeScore:          safeInt(raw.HomeScore),
		AwayScore:          safeInt(raw.AwayScore),
		HalftimeHome:       safeInt(raw.HalftimeHome),
		HalftimeAway:       safeInt(raw.HalftimeAway),
		HomeXG:             safeFloat(raw.HomeXG),
		AwayXG:             safeFloat(raw.AwayXG),
		DataSource:         n.source,
	}

	log.Debug().Str("external_id", match.ExternalID).Msg("Normalized match")
	return match, nil
}

// NormalizeStanding validates and converts one standings row
func (n *Normalizer) NormalizeStanding(raw RawStanding) (*CanonicalStanding, error) {
	if raw.TeamExternalID == "" {
		return nil, missingFields("standing", []string{"team_external_id"})
	}

	// Football-Data.org delimits form with commas; API-Football does not
	form := strings.ReplaceAll(raw.Form, ",", "")
	if len(form) > 5 {
		form = form[:5]
	}

	standing := &CanonicalStanding{
		TeamExternalID: raw.TeamExternalID,
		TeamName:       raw.TeamName,
		Points:         intOrZero(raw.Points),
		Played:         intOrZero(raw.Played),
		Wins:           intOrZero(raw.Wins),
		Draws:          intOrZero(raw.Draws),
		Losses:         intOrZero(raw.Losses),
		GoalsFor:       intOrZero(raw.GoalsFor),
		GoalsAgainst:   intOrZero(raw.GoalsAgainst),

		HomePlayed:       intOrZero(raw.HomePlayed),
		HomeWins:         intOrZero(raw.HomeWins),
		HomeDraws:        intOrZero(raw.HomeDraws),
		HomeLosses:       intOrZero(raw.HomeLosses),
		HomeGoalsFor:     intOrZero(raw.HomeGoalsFor),
		HomeGoalsAgainst: intOrZero(raw.HomeGoalsAgainst),

		AwayPlayed:       intOrZero(raw.AwayPlayed),
		AwayWins:         intOrZero(raw.AwayWins),
		AwayDraws:        intOrZero(raw.AwayDraws),
		AwayLosses:       intOrZero(raw.AwayLosses),
		AwayGoalsFor:     intOrZero(raw.AwayGoalsFor),
		AwayGoalsAgainst: intOrZero(raw.AwayGoalsAgainst),

		Form:       form,
		XGFor:      safeFloat(raw.XGFor),
		XGAgainst:  safeFloat(raw.XGAgainst),
		DataSource: n.source,
	}

	return standing, nil
}

// NormalizeMatchStats converts a raw per-fixture statistics record.
// Percentage strings like "55%" become floats.
func (n *Normalizer) NormalizeMatchStats(raw RawMatchStats) (*CanonicalMatchStats, error) {
	if raw.MatchExternalID == "" {
		return nil, missingFields("match_statistics", []string{"match_external_id"})
	}

	return &CanonicalMatchStats{
		MatchExternalID: raw.MatchExternalID,
		Home:            normalizeSide(raw.Home),
		Away:            normalizeSide(raw.Away),
	}, nil
}

func normalizeSide(stats map[string]any) SideStats {
	return SideStats{
		Possession:     safeFloat(stats["Ball Possession"]),
		ShotsTotal:     safeInt(stats["Total Shots"]),
		ShotsOnTarget:  safeInt(stats["Shots on Goal"]),
		PassesTotal:    safeInt(stats["Total passes"]),
		PassesAccurate: safeInt(stats["Passes accurate"]),
		Fouls:          safeInt(stats["Fouls"]),
		YellowCards:    safeInt(stats["Yellow Cards"]),
		RedCards:       safeInt(stats["Red Cards"]),
		Corners:        safeInt(stats["Corner Kicks"]),
		Offsides:       safeInt(stats["Offsides"]),
		XG:             safeFloat(stats["expected_goals"]),
	}
}
