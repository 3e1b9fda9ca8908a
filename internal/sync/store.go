package sync

import (
	"context"

	"footysync/ingestion/internal/models"
)

// Store is the persistence surface the sync service writes through.
// *repository.Database satisfies it; tests supply a fake.
type Store interface {
	FindLeagueByExternalID(ctx context.Context, externalID, dataSource string) (*models.League, error)
	CreateLeague(ctx context.Context, league *models.League) error
	UpdateLeague(ctx context.Context, league *models.League) error
	ListActiveLeagues(ctx context.Context) ([]models.League, error)

	FindTeamByExternalID(ctx context.Context, externalID, dataSource string) (*models.Team, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, team *models.Team) error

	FindMatchByExternalID(ctx context.Context, externalID, dataSource string) (*models.Match, error)
	CreateMatch(ctx context.Context, match *models.Match) error
	UpdateMatch(ctx context.Context, match *models.Match) error

	GetTeamStats(ctx context.Context, teamID int, season string) (*models.TeamStatistics, error)
	UpsertTeamStats(ctx context.Context, stats *models.TeamStatistics) error

	AppendSyncLog(ctx context.Context, entry *models.SyncLog) error
	ListSyncLogs(ctx context.Context, dataType string, limit int) ([]models.SyncLog, error)

	SettlePredictions(ctx context.Context, matchID, homeScore, awayScore int) (int64, error)
}
