package scheduler

import (
	"context"
	"fmt"
	"time"

	"footysync/ingestion/internal/config"
	"footysync/ingestion/internal/repository"
	"footysync/ingestion/internal/sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages background sync tasks:
// - A daily cron batch refreshing fixtures and standings for every league
// - A polling ticker that refreshes scores while matches are live
type Scheduler struct {
	cfg      *config.Config
	svc      *sync.Service
	db       *repository.Database
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, svc *sync.Service, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		svc:      svc,
		db:       db,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.DailySyncCron, func() {
		log.Info().Msg("Running daily sync...")
		season := CurrentSeason(time.Now())
		if _, err := s.svc.DailySyncAll(ctx, season); err != nil {
			log.Error().Err(err).Msg("Daily sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.DailySyncCron).
		Msg("Daily sync scheduled")

	s.ticker = time.NewTicker(s.cfg.LivePollInterval)
	log.Info().
		Dur("interval", s.cfg.LivePollInterval).
		Msg("Live match polling started")

	go s.pollLiveMatches(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollLiveMatches continuously checks for matches in play
func (s *Scheduler) pollLiveMatches(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping live match polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping live match polling")
			return
		case <-s.ticker.C:
			if err := s.refreshLiveMatches(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to refresh live matches")
			}
		}
	}
}

// refreshLiveMatches re-syncs today's fixtures while any stored match is
// live. Quota is only spent when there is something in play.
func (s *Scheduler) refreshLiveMatches(ctx context.Context) error {
	start := time.Now()

	live, err := s.db.Matches.ListLive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list live matches: %w", err)
	}

	if len(live) == 0 {
		log.Debug().Msg("No live matches")
		return nil
	}

	log.Info().Int("count", len(live)).Msg("Found live matches, refreshing")

	now := time.Now().UTC()
	season := CurrentSeason(now)
	from := now.AddDate(0, 0, -1)
	to := now.AddDate(0, 0, 1)

	for _, league := range s.svc.Leagues() {
		if _, err := s.svc.SyncMatches(ctx, league, season, from, to); err != nil {
			log.Error().Err(err).Str("league", league).Msg("Live refresh failed for league")
		}
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Msg("Live match refresh complete")
	return nil
}

// CurrentSeason returns the starting year of the European season containing
// the given date: August onward belongs to that year's season, earlier
// months to the previous year's.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}
