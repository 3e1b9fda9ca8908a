package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footysync/ingestion/internal/models"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		source string
		code   string
		want   models.MatchStatus
	}{
		{SourceAPIFootball, "NS", models.StatusScheduled},
		{SourceAPIFootball, "1H", models.StatusLive},
		{SourceAPIFootball, "HT", models.StatusLive},
		{SourceAPIFootball, "FT", models.StatusFinished},
		{SourceAPIFootball, "AET", models.StatusFinished},
		{SourceAPIFootball, "PST", models.StatusPostponed},
		{SourceAPIFootball, "CANC", models.StatusCancelled},
		{SourceFootballData, "TIMED", models.StatusScheduled},
		{SourceFootballData, "IN_PLAY", models.StatusLive},
		{SourceFootballData, "FINISHED", models.StatusFinished},
		{SourceFootballData, "POSTPONED", models.StatusPostponed},
		{SourceFootballData, "CANCELLED", models.StatusCancelled},
		// Unknown codes fall back to scheduled
		{SourceAPIFootball, "???", models.StatusScheduled},
		{SourceFootballData, "", models.StatusScheduled},
	}

	for _, tt := range tests {
		n := NewNormalizer(tt.source)
		assert.Equal(t, tt.want, n.MapStatus(tt.code), "source=%s code=%q", tt.source, tt.code)
	}
}

func TestNormalizeLeague_MissingFields(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	_, err := n.NormalizeLeague(RawLeague{Name: "Premier League"})
	require.Error(t, err, "Missing external id should fail")

	var pe *ParsingError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Fields, "external_id")
}

func TestNormalizeLeague_SlugAndSource(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	league, err := n.NormalizeLeague(RawLeague{
		ExternalID: "39",
		Name:       "Premier League",
		Country:    "England",
		Season:     "2025",
	})
	require.NoError(t, err)
	assert.Equal(t, "premier-league", league.Slug)
	assert.Equal(t, SourceAPIFootball, league.DataSource)
}

func TestNormalizeTeam_CoercesLooseTypes(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	team, err := n.NormalizeTeam(RawTeam{
		ExternalID:    "42",
		Name:          "Arsenal",
		FoundedYear:   float64(1886), // JSON numbers decode as float64
		VenueCapacity: "60704",
	})
	require.NoError(t, err)
	require.NotNil(t, team.FoundedYear)
	assert.Equal(t, 1886, *team.FoundedYear)
	require.NotNil(t, team.VenueCapacity)
	assert.Equal(t, 60704, *team.VenueCapacity)
}

func TestNormalizeTeam_MalformedNumbersAreDropped(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	team, err := n.NormalizeTeam(RawTeam{
		ExternalID:  "42",
		Name:        "Arsenal",
		FoundedYear: "not-a-year",
	})
	require.NoError(t, err, "A bad optional value should not fail the record")
	assert.Nil(t, team.FoundedYear)
}

func TestNormalizeMatch_RequiredFields(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	_, err := n.NormalizeMatch(RawMatch{ExternalID: "1001"})
	require.Error(t, err)

	var pe *ParsingError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Fields, "match_date")
	assert.Contains(t, pe.Fields, "status")
	assert.Contains(t, pe.Fields, "home_team_external_id")
	assert.Contains(t, pe.Fields, "away_team_external_id")
}

func TestNormalizeMatch_RejectsSameTeamOnBothSides(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	_, err := n.NormalizeMatch(RawMatch{
		ExternalID:         "1001",
		HomeTeamExternalID: "42",
		AwayTeamExternalID: "42",
		MatchDate:          "2025-09-01T15:00:00Z",
		StatusCode:         "NS",
	})
	require.Error(t, err, "A team cannot play itself")

	var pe *ParsingError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "same")
}

func TestNormalizeMatch_RejectsMalformedDate(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	_, err := n.NormalizeMatch(RawMatch{
		ExternalID:         "1001",
		HomeTeamExternalID: "42",
		AwayTeamExternalID: "43",
		MatchDate:          "next tuesday",
		StatusCode:         "NS",
	})
	require.Error(t, err)

	var pe *ParsingError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "match_date")
}

func TestNormalizeMatch_FullRecord(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	home, away := 2, 1
	match, err := n.NormalizeMatch(RawMatch{
		ExternalID:         "1001",
		HomeTeamExternalID: "42",
		AwayTeamExternalID: "43",
		MatchDate:          "2025-09-01T15:00:00Z",
		StatusCode:         "FT",
		HomeScore:          float64(home),
		AwayScore:          float64(away),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, match.Status)
	require.NotNil(t, match.HomeScore)
	assert.Equal(t, home, *match.HomeScore)
	require.NotNil(t, match.AwayScore)
	assert.Equal(t, away, *match.AwayScore)
	assert.Equal(t, 2025, match.MatchDate.Year())
}

func TestNormalizeStanding_TruncatesForm(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	standing, err := n.NormalizeStanding(RawStanding{
		TeamExternalID: "42",
		Form:           "WWDLWWL",
		Points:         30,
		Played:         12,
	})
	require.NoError(t, err)
	assert.Equal(t, "WWDLW", standing.Form, "Form should keep only the last five results")
	assert.Equal(t, 30, standing.Points)
	assert.Equal(t, 12, standing.Played)
}

func TestNormalizeStanding_StripsFormDelimiters(t *testing.T) {
	n := NewNormalizer(SourceFootballData)

	standing, err := n.NormalizeStanding(RawStanding{
		TeamExternalID: "57",
		Form:           "W,W,D,L,W",
	})
	require.NoError(t, err)
	assert.Equal(t, "WWDLW", standing.Form)
}

func TestNormalizeStanding_RequiresTeamID(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	_, err := n.NormalizeStanding(RawStanding{TeamName: "Arsenal"})
	require.Error(t, err)
}

func TestNormalizeMatchStats_ParsesPercentages(t *testing.T) {
	n := NewNormalizer(SourceAPIFootball)

	stats, err := n.NormalizeMatchStats(RawMatchStats{
		MatchExternalID: "1001",
		Home: map[string]any{
			"Ball Possession": "55%",
			"Total Shots":     float64(14),
			"expected_goals":  "1.92",
		},
		Away: map[string]any{
			"Ball Possession": "45%",
			"Total Shots":     nil,
		},
	})
	require.NoError(t, err)

	require.NotNil(t, stats.Home.Possession)
	assert.InDelta(t, 55.0, *stats.Home.Possession, 0.001)
	require.NotNil(t, stats.Home.ShotsTotal)
	assert.Equal(t, 14, *stats.Home.ShotsTotal)
	require.NotNil(t, stats.Home.XG)
	assert.InDelta(t, 1.92, *stats.Home.XG, 0.001)

	require.NotNil(t, stats.Away.Possession)
	assert.InDelta(t, 45.0, *stats.Away.Possession, 0.001)
	assert.Nil(t, stats.Away.ShotsTotal, "Null values should stay nil")
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"55%", 55, true},
		{" 42.5% ", 42.5, true},
		{"1.92", 1.92, true},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePercent(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 0.001, "input %q", tt.in)
		}
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "premier-league", Slugify("Premier League"))
	assert.Equal(t, "la-liga", Slugify("  La Liga "))
	assert.Equal(t, "serie-a", Slugify("Serie A"))
}
