package repository

import (
	"database/sql"
	"testing"

	"footysync/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLeague() *models.League {
	return &models.League{
		SportID:    models.SportFootball,
		ExternalID: "39",
		Name:       "Premier League",
		Slug:       "premier-league",
		Country:    sql.NullString{String: "England", Valid: true},
		Season:     sql.NullString{String: "2025", Valid: true},
		DataSource: "FootballAPI",
		IsActive:   true,
	}
}

func TestLeagueRepository_CreateAndFind(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league := testLeague()
	err := db.Leagues.Create(ctx, league)
	require.NoError(t, err, "Should insert league")
	assert.NotZero(t, league.ID, "Create should populate the id")

	found, err := db.Leagues.FindByExternalID(ctx, "39", "FootballAPI")
	require.NoError(t, err)
	require.NotNil(t, found, "Should find stored league")
	assert.Equal(t, "Premier League", found.Name)
	assert.Equal(t, "premier-league", found.Slug)

	// Same external id under a different source is a different league
	missing, err := db.Leagues.FindByExternalID(ctx, "39", "FootballDataOrg")
	require.NoError(t, err)
	assert.Nil(t, missing, "Lookups are scoped by data source")
}

func TestLeagueRepository_FindMissingIsNil(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	found, err := db.Leagues.FindByExternalID(ctx, "does-not-exist", "FootballAPI")
	require.NoError(t, err, "A missing row is not an error")
	assert.Nil(t, found)
}

func TestLeagueRepository_Update(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league := testLeague()
	require.NoError(t, db.Leagues.Create(ctx, league))

	league.Season = sql.NullString{String: "2026", Valid: true}
	err := db.Leagues.Update(ctx, league)
	require.NoError(t, err, "Should update league")

	found, err := db.Leagues.FindByExternalID(ctx, "39", "FootballAPI")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "2026", found.Season.String)
}

func TestLeagueRepository_ListActive(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	active := testLeague()
	require.NoError(t, db.Leagues.Create(ctx, active))

	inactive := testLeague()
	inactive.ExternalID = "140"
	inactive.Name = "La Liga"
	inactive.Slug = "la-liga"
	inactive.IsActive = false
	require.NoError(t, db.Leagues.Create(ctx, inactive))

	leagues, err := db.Leagues.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, leagues, 1, "Only active leagues should be listed")
	assert.Equal(t, "39", leagues[0].ExternalID)
}
