package repository

import (
	"context"

	"footysync/ingestion/internal/models"
)

// Flat persistence methods forwarding to the entity repositories. These give
// the sync service a single narrow surface to write through.

func (db *Database) FindLeagueByExternalID(ctx context.Context, externalID, dataSource string) (*models.League, error) {
	return db.Leagues.FindByExternalID(ctx, externalID, dataSource)
}

func (db *Database) CreateLeague(ctx context.Context, league *models.League) error {
	return db.Leagues.Create(ctx, league)
}

func (db *Database) UpdateLeague(ctx context.Context, league *models.League) error {
	return db.Leagues.Update(ctx, league)
}

func (db *Database) ListActiveLeagues(ctx context.Context) ([]models.League, error) {
	return db.Leagues.ListActive(ctx)
}

func (db *Database) FindTeamByExternalID(ctx context.Context, externalID, dataSource string) (*models.Team, error) {
	return db.Teams.FindByExternalID(ctx, externalID, dataSource)
}

func (db *Database) CreateTeam(ctx context.Context, team *models.Team) error {
	return db.Teams.Create(ctx, team)
}

func (db *Database) UpdateTeam(ctx context.Context, team *models.Team) error {
	return db.Teams.Update(ctx, team)
}

func (db *Database) FindMatchByExternalID(ctx context.Context, externalID, dataSource string) (*models.Match, error) {
	return db.Matches.FindByExternalID(ctx, externalID, dataSource)
}

func (db *Database) CreateMatch(ctx context.Context, match *models.Match) error {
	return db.Matches.Create(ctx, match)
}

func (db *Database) UpdateMatch(ctx context.Context, match *models.Match) error {
	return db.Matches.Update(ctx, match)
}

func (db *Database) GetTeamStats(ctx context.Context, teamID int, season string) (*models.TeamStatistics, error) {
	return db.Stats.GetByTeamSeason(ctx, teamID, season)
}

func (db *Database) UpsertTeamStats(ctx context.Context, stats *models.TeamStatistics) error {
	return db.Stats.Upsert(ctx, stats)
}

func (db *Database) AppendSyncLog(ctx context.Context, entry *models.SyncLog) error {
	return db.SyncLogs.Append(ctx, entry)
}

func (db *Database) ListSyncLogs(ctx context.Context, dataType string, limit int) ([]models.SyncLog, error) {
	return db.SyncLogs.List(ctx, dataType, limit)
}

func (db *Database) SettlePredictions(ctx context.Context, matchID, homeScore, awayScore int) (int64, error) {
	return db.Predictions.SettleForMatch(ctx, matchID, homeScore, awayScore)
}
