package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"footysync/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLeagueAndTeams inserts one league with two teams and returns them
func seedLeagueAndTeams(t *testing.T, db *Database, ctx context.Context) (*models.League, *models.Team, *models.Team) {
	t.Helper()

	league := testLeague()
	require.NoError(t, db.Leagues.Create(ctx, league))

	home := &models.Team{
		SportID:    models.SportFootball,
		LeagueID:   sql.NullInt32{Int32: int32(league.ID), Valid: true},
		ExternalID: "42",
		Name:       "Arsenal",
		DataSource: "FootballAPI",
		IsActive:   true,
	}
	require.NoError(t, db.Teams.Create(ctx, home))

	away := &models.Team{
		SportID:    models.SportFootball,
		LeagueID:   sql.NullInt32{Int32: int32(league.ID), Valid: true},
		ExternalID: "50",
		Name:       "Manchester City",
		DataSource: "FootballAPI",
		IsActive:   true,
	}
	require.NoError(t, db.Teams.Create(ctx, away))

	return league, home, away
}

func TestMatchRepository_CreateAndFind(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league, home, away := seedLeagueAndTeams(t, db, ctx)

	match := &models.Match{
		SportID:    models.SportFootball,
		LeagueID:   league.ID,
		ExternalID: "1001",
		Season:     sql.NullString{String: "2025", Valid: true},
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		MatchDate:  time.Date(2025, 9, 1, 15, 0, 0, 0, time.UTC),
		Status:     models.StatusScheduled,
		DataSource: "FootballAPI",
	}
	require.NoError(t, db.Matches.Create(ctx, match))

	found, err := db.Matches.FindByExternalID(ctx, "1001", "FootballAPI")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, home.ID, found.HomeTeamID)
	assert.Equal(t, models.StatusScheduled, found.Status)
	assert.False(t, found.HomeScore.Valid, "Score should be null before kickoff")
}

func TestMatchRepository_UpdateScore(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league, home, away := seedLeagueAndTeams(t, db, ctx)

	match := &models.Match{
		SportID:    models.SportFootball,
		LeagueID:   league.ID,
		ExternalID: "1001",
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		MatchDate:  time.Date(2025, 9, 1, 15, 0, 0, 0, time.UTC),
		Status:     models.StatusLive,
		DataSource: "FootballAPI",
	}
	require.NoError(t, db.Matches.Create(ctx, match))

	match.Status = models.StatusFinished
	match.HomeScore = sql.NullInt32{Int32: 2, Valid: true}
	match.AwayScore = sql.NullInt32{Int32: 1, Valid: true}
	require.NoError(t, db.Matches.Update(ctx, match))

	found, err := db.Matches.FindByExternalID(ctx, "1001", "FootballAPI")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsFinished())
	assert.Equal(t, int32(2), found.HomeScore.Int32)
	assert.Equal(t, int32(1), found.AwayScore.Int32)
}

func TestMatchRepository_ListLive(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league, home, away := seedLeagueAndTeams(t, db, ctx)

	for i, status := range []models.MatchStatus{models.StatusLive, models.StatusScheduled, models.StatusFinished} {
		match := &models.Match{
			SportID:    models.SportFootball,
			LeagueID:   league.ID,
			ExternalID: "100" + string(rune('1'+i)),
			HomeTeamID: home.ID,
			AwayTeamID: away.ID,
			MatchDate:  time.Date(2025, 9, 1+i, 15, 0, 0, 0, time.UTC),
			Status:     status,
			DataSource: "FootballAPI",
		}
		require.NoError(t, db.Matches.Create(ctx, match))
	}

	live, err := db.Matches.ListLive(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1, "Only the live match should be listed")
	assert.Equal(t, models.StatusLive, live[0].Status)
}

func TestStatsRepository_UpsertRecomputesDerived(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, home, _ := seedLeagueAndTeams(t, db, ctx)

	stats := &models.TeamStatistics{
		TeamID:        home.ID,
		Season:        "2025",
		MatchesPlayed: 10,
		Wins:          8,
		Draws:         1,
		Losses:        1,
		GoalsFor:      22,
		GoalsAgainst:  8,
		Points:        25,
		DataSource:    "FootballAPI",
		IsActive:      true,
	}
	require.NoError(t, db.Stats.Upsert(ctx, stats))

	found, err := db.Stats.GetByTeamSeason(ctx, home.ID, "2025")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 14, found.GoalDifference)
	assert.InDelta(t, 2.2, found.GoalsForPerMatch.Float64, 0.001)

	// Second upsert for the same team and season updates in place
	stats.MatchesPlayed = 11
	stats.GoalsFor = 25
	require.NoError(t, db.Stats.Upsert(ctx, stats))

	found, err = db.Stats.GetByTeamSeason(ctx, home.ID, "2025")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 11, found.MatchesPlayed)
	assert.Equal(t, 17, found.GoalDifference)
}

func TestSyncLogRepository_AppendAndList(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	for _, dataType := range []string{"leagues", "teams", "matches"} {
		entry := &models.SyncLog{
			DataSource:        "FootballAPI",
			DataType:          dataType,
			TotalRecords:      10,
			SuccessfulRecords: 10,
			SyncStatus:        models.SyncStatusCompleted,
		}
		require.NoError(t, db.SyncLogs.Append(ctx, entry))
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.SyncedAt.IsZero())
	}

	all, err := db.SyncLogs.List(ctx, "", 50)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyTeams, err := db.SyncLogs.List(ctx, "teams", 50)
	require.NoError(t, err)
	require.Len(t, onlyTeams, 1)
	assert.Equal(t, "teams", onlyTeams[0].DataType)
}
