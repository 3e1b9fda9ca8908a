package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"footysync/ingestion/internal/client"
	"footysync/ingestion/internal/models"
)

// InitialLoad brings one league season in from nothing: leagues, teams,
// the whole season's fixture list, then standings. Order matters because
// matches and standings attach to rows created by the earlier steps.
func (s *Service) InitialLoad(ctx context.Context, league string, season int) ([]*SyncResult, error) {
	log.Info().
		Str("source", s.source.Source()).
		Str("league", league).
		Int("season", season).
		Msg("Starting initial load")

	var results []*SyncResult

	leagues, err := s.SyncLeagues(ctx)
	if err != nil {
		return results, err
	}
	results = append(results, leagues)

	teams, err := s.SyncTeams(ctx, league, season)
	if err != nil {
		return results, err
	}
	results = append(results, teams)

	from, to := seasonWindow(season)
	matches, err := s.SyncMatches(ctx, league, season, from, to)
	if err != nil {
		return results, err
	}
	results = append(results, matches)

	standings, err := s.SyncStandings(ctx, league, season)
	if err != nil {
		return results, err
	}
	results = append(results, standings)

	return results, nil
}

// FullSync refreshes one league's teams and then its upcoming fixtures.
// Record-level errors in the team batch do not stop the match batch; only a
// fatal failure (league unresolved, fetch impossible) aborts.
func (s *Service) FullSync(ctx context.Context, league string, season int) ([]*SyncResult, error) {
	var results []*SyncResult

	teams, err := s.SyncTeams(ctx, league, season)
	if err != nil {
		return results, err
	}
	results = append(results, teams)

	now := time.Now().UTC()
	matches, err := s.SyncMatches(ctx, league, season, now.AddDate(0, 0, -1), now.AddDate(0, 0, s.daysAhead))
	if err != nil {
		return results, err
	}
	results = append(results, matches)

	return results, nil
}

// DailySync refreshes one league: fixtures from yesterday through the
// configured look-ahead, then standings. Yesterday is included so results
// that finished overnight are picked up.
func (s *Service) DailySync(ctx context.Context, league string, season int) ([]*SyncResult, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -1)
	to := now.AddDate(0, 0, s.daysAhead)

	var results []*SyncResult

	matches, err := s.SyncMatches(ctx, league, season, from, to)
	if err != nil {
		return results, err
	}
	results = append(results, matches)

	standings, err := s.SyncStandings(ctx, league, season)
	if err != nil {
		return results, err
	}
	results = append(results, standings)

	return results, nil
}

// DailySyncAll runs DailySync for every stored active league the source
// serves. A league that fails is logged and the rest still run; the first
// error is returned after the loop so callers can surface it.
func (s *Service) DailySyncAll(ctx context.Context, season int) ([]*SyncResult, error) {
	leagues, err := s.activeLeagues(ctx)
	if err != nil {
		return nil, err
	}

	var results []*SyncResult
	var firstErr error

	for _, league := range leagues {
		leagueResults, err := s.DailySync(ctx, league, season)
		results = append(results, leagueResults...)
		if err != nil {
			log.Error().Err(err).Str("league", league).Msg("Daily sync failed for league")
			if firstErr == nil {
				firstErr = fmt.Errorf("league %s: %w", league, err)
			}
		}
	}

	return results, firstErr
}

// activeLeagues returns the source's league slugs whose stored rows are
// active. Leagues deactivated in the database drop out of scheduled syncs
// without a code change; a league never synced is skipped the same way.
func (s *Service) activeLeagues(ctx context.Context) ([]string, error) {
	rows, err := s.store.ListActiveLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active leagues: %w", err)
	}

	active := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.DataSource == s.source.Source() {
			active[row.ExternalID] = true
		}
	}

	var slugs []string
	for _, league := range s.source.Leagues() {
		externalID, err := s.source.LeagueExternalID(league)
		if err != nil {
			continue
		}
		if active[externalID] {
			slugs = append(slugs, league)
		} else {
			log.Debug().Str("league", league).Msg("Skipping league, not stored as active")
		}
	}
	return slugs, nil
}

// InitialLoadAll runs InitialLoad for every league the source serves,
// stored or not, since it is what brings the league rows in to begin with.
// Same error policy as DailySyncAll: keep going, return the first failure.
func (s *Service) InitialLoadAll(ctx context.Context, season int) ([]*SyncResult, error) {
	var results []*SyncResult
	var firstErr error

	for _, league := range s.source.Leagues() {
		leagueResults, err := s.InitialLoad(ctx, league, season)
		results = append(results, leagueResults...)
		if err != nil {
			log.Error().Err(err).Str("league", league).Msg("Initial load failed for league")
			if firstErr == nil {
				firstErr = fmt.Errorf("league %s: %w", league, err)
			}
		}
	}

	return results, firstErr
}

// Status reports provider quota usage and recent sync batches
type Status struct {
	Source     string
	Quota      client.Usage
	RecentLogs []models.SyncLog
}

// GetSyncStatus returns the current quota usage and the most recent audit
// rows for this source. dataType filters the audit rows when non-empty.
func (s *Service) GetSyncStatus(ctx context.Context, dataType string, limit int) (*Status, error) {
	quota, err := s.source.Usage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read quota usage: %w", err)
	}

	logs, err := s.store.ListSyncLogs(ctx, dataType, limit)
	if err != nil {
		return nil, err
	}

	return &Status{
		Source:     s.source.Source(),
		Quota:      quota,
		RecentLogs: logs,
	}, nil
}

// seasonWindow returns the fixture date range covering a European season:
// August 1st of the starting year through May 31st of the next.
func seasonWindow(season int) (time.Time, time.Time) {
	from := time.Date(season, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(season+1, time.May, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}
