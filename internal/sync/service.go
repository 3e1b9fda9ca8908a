package sync

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"footysync/ingestion/internal/client"
	"footysync/ingestion/internal/metrics"
	"footysync/ingestion/internal/models"
	"footysync/ingestion/internal/normalize"
)

// Service orchestrates sync batches for one data source: fetch, normalize,
// reconcile against stored rows, audit. Batches are idempotent: running the
// same batch twice produces updates, never duplicates.
type Service struct {
	store     Store
	source    client.DataSource
	norm      *normalize.Normalizer
	daysAhead int
	dryRun    bool
}

// Option configures a Service
type Option func(*Service)

// WithDryRun makes the service count work without writing anything
func WithDryRun(dryRun bool) Option {
	return func(s *Service) { s.dryRun = dryRun }
}

// WithDaysAhead sets how far forward DailySync looks for fixtures
func WithDaysAhead(days int) Option {
	return func(s *Service) { s.daysAhead = days }
}

// NewService creates a sync service for the given source
func NewService(store Store, source client.DataSource, opts ...Option) *Service {
	s := &Service{
		store:     store,
		source:    source,
		norm:      normalize.NewNormalizer(source.Source()),
		daysAhead: 7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the provider this service syncs from
func (s *Service) Source() string {
	return s.source.Source()
}

// Leagues returns the canonical league slugs the source serves
func (s *Service) Leagues() []string {
	return s.source.Leagues()
}

// SyncLeagues fetches and reconciles every league the source serves
func (s *Service) SyncLeagues(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{DataType: "leagues"}
	start := time.Now()

	raws, err := s.source.FetchLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leagues: %w", err)
	}

	for _, raw := range raws {
		canon, err := s.norm.NormalizeLeague(raw)
		if err != nil {
			result.recordError("league %s: %v", raw.ExternalID, err)
			continue
		}
		s.upsertLeague(ctx, result, canon)
	}

	s.finish(ctx, result, start)
	return result, nil
}

func (s *Service) upsertLeague(ctx context.Context, result *SyncResult, canon *normalize.CanonicalLeague) {
	existing, err := s.store.FindLeagueByExternalID(ctx, canon.ExternalID, canon.DataSource)
	if err != nil {
		result.recordError("league %s: %v", canon.ExternalID, err)
		return
	}

	if existing == nil {
		league := &models.League{
			SportID:    models.SportFootball,
			ExternalID: canon.ExternalID,
			Name:       canon.Name,
			Slug:       canon.Slug,
			Country:    nullString(canon.Country),
			Season:     nullString(canon.Season),
			LogoURL:    nullString(canon.LogoURL),
			DataSource: canon.DataSource,
			IsActive:   true,
		}
		if !s.dryRun {
			if err := s.store.CreateLeague(ctx, league); err != nil {
				result.recordError("league %s: %v", canon.ExternalID, err)
				return
			}
		}
		result.Created++
		return
	}

	existing.Name = canon.Name
	existing.Slug = canon.Slug
	existing.Country = nullString(canon.Country)
	existing.Season = nullString(canon.Season)
	existing.LogoURL = nullString(canon.LogoURL)
	if !s.dryRun {
		if err := s.store.UpdateLeague(ctx, existing); err != nil {
			result.recordError("league %s: %v", canon.ExternalID, err)
			return
		}
	}
	result.Updated++
}

// SyncTeams fetches and reconciles the teams of one league season. The
// parent league must already be synced; a missing league fails the batch.
func (s *Service) SyncTeams(ctx context.Context, league string, season int) (*SyncResult, error) {
	result := &SyncResult{DataType: "teams"}
	start := time.Now()

	leagueRow, err := s.resolveLeague(ctx, league)
	if err != nil {
		return nil, err
	}

	raws, err := s.source.FetchTeams(ctx, league, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams for %s: %w", league, err)
	}

	for _, raw := range raws {
		canon, err := s.norm.NormalizeTeam(raw)
		if err != nil {
			result.recordError("team %s: %v", raw.ExternalID, err)
			continue
		}
		s.upsertTeam(ctx, result, canon, leagueRow.ID)
	}

	s.finish(ctx, result, start)
	return result, nil
}

func (s *Service) upsertTeam(ctx context.Context, result *SyncResult, canon *normalize.CanonicalTeam, leagueID int) {
	existing, err := s.store.FindTeamByExternalID(ctx, canon.ExternalID, canon.DataSource)
	if err != nil {
		result.recordError("team %s: %v", canon.ExternalID, err)
		return
	}

	if existing == nil {
		team := &models.Team{
			SportID:       models.SportFootball,
			LeagueID:      sql.NullInt32{Int32: int32(leagueID), Valid: true},
			ExternalID:    canon.ExternalID,
			Name:          canon.Name,
			Code:          nullString(canon.Code),
			Country:       nullString(canon.Country),
			FoundedYear:   nullInt(canon.FoundedYear),
			LogoURL:       nullString(canon.LogoURL),
			Venue:         nullString(canon.Venue),
			VenueCity:     nullString(canon.VenueCity),
			VenueCapacity: nullInt(canon.VenueCapacity),
			DataSource:    canon.DataSource,
			IsActive:      true,
		}
		if !s.dryRun {
			if err := s.store.CreateTeam(ctx, team); err != nil {
				result.recordError("team %s: %v", canon.ExternalID, err)
				return
			}
		}
		result.Created++
		return
	}

	existing.LeagueID = sql.NullInt32{Int32: int32(leagueID), Valid: true}
	existing.Name = canon.Name
	existing.Code = nullString(canon.Code)
	existing.Country = nullString(canon.Country)
	existing.FoundedYear = nullInt(canon.FoundedYear)
	existing.LogoURL = nullString(canon.LogoURL)
	existing.Venue = nullString(canon.Venue)
	existing.VenueCity = nullString(canon.VenueCity)
	existing.VenueCapacity = nullInt(canon.VenueCapacity)
	if !s.dryRun {
		if err := s.store.UpdateTeam(ctx, existing); err != nil {
			result.recordError("team %s: %v", canon.ExternalID, err)
			return
		}
	}
	result.Updated++
}

// SyncMatches fetches and reconciles fixtures for a league between from and
// to. A fixture whose teams are not yet stored is skipped, not failed; run
// SyncTeams first to pick those up.
func (s *Service) SyncMatches(ctx context.Context, league string, season int, from, to time.Time) (*SyncResult, error) {
	result := &SyncResult{DataType: "matches"}
	start := time.Now()

	leagueRow, err := s.resolveLeague(ctx, league)
	if err != nil {
		return nil, err
	}

	raws, err := s.source.FetchMatches(ctx, league, season, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches for %s: %w", league, err)
	}

	for _, raw := range raws {
		canon, err := s.norm.NormalizeMatch(raw)
		if err != nil {
			result.recordError("match %s: %v", raw.ExternalID, err)
			continue
		}
		s.upsertMatch(ctx, result, canon, leagueRow.ID, season)
	}

	s.finish(ctx, result, start)
	return result, nil
}

func (s *Service) upsertMatch(ctx context.Context, result *SyncResult, canon *normalize.CanonicalMatch, leagueID, season int) {
	home, err := s.store.FindTeamByExternalID(ctx, canon.HomeTeamExternalID, canon.DataSource)
	if err != nil {
		result.recordError("match %s: %v", canon.ExternalID, err)
		return
	}
	away, err := s.store.FindTeamByExternalID(ctx, canon.AwayTeamExternalID, canon.DataSource)
	if err != nil {
		result.recordError("match %s: %v", canon.ExternalID, err)
		return
	}
	if home == nil || away == nil {
		log.Debug().
			Str("match", canon.ExternalID).
			Str("home", canon.HomeTeamName).
			Str("away", canon.AwayTeamName).
			Msg("Skipping match, team not synced yet")
		result.Skipped++
		return
	}

	existing, err := s.store.FindMatchByExternalID(ctx, canon.ExternalID, canon.DataSource)
	if err != nil {
		result.recordError("match %s: %v", canon.ExternalID, err)
		return
	}

	if existing == nil {
		match := &models.Match{
			SportID:           models.SportFootball,
			LeagueID:          leagueID,
			ExternalID:        canon.ExternalID,
			Season:            nullString(strconv.Itoa(season)),
			HomeTeamID:        home.ID,
			AwayTeamID:        away.ID,
			MatchDate:         canon.MatchDate,
			Venue:             nullString(canon.Venue),
			Round:             nullString(canon.Round),
			Referee:           nullString(canon.Referee),
			Status:            canon.Status,
			HomeScore:         nullInt(canon.HomeScore),
			AwayScore:         nullInt(canon.AwayScore),
			HomeHalftimeScore: nullInt(canon.HalftimeHome),
			AwayHalftimeScore: nullInt(canon.HalftimeAway),
			HomeXG:            nullFloat(canon.HomeXG),
			AwayXG:            nullFloat(canon.AwayXG),
			DataSource:        canon.DataSource,
		}
		if !s.dryRun {
			if err := s.store.CreateMatch(ctx, match); err != nil {
				result.recordError("match %s: %v", canon.ExternalID, err)
				return
			}
			s.maybeSettle(ctx, match, false)
		}
		result.Created++
		return
	}

	wasFinished := existing.IsFinished()

	existing.MatchDate = canon.MatchDate
	existing.Venue = nullString(canon.Venue)
	existing.Round = nullString(canon.Round)
	existing.Referee = nullString(canon.Referee)
	existing.Status = canon.Status
	existing.HomeScore = nullInt(canon.HomeScore)
	existing.AwayScore = nullInt(canon.AwayScore)
	existing.HomeHalftimeScore = nullInt(canon.HalftimeHome)
	existing.AwayHalftimeScore = nullInt(canon.HalftimeAway)
	if canon.HomeXG != nil {
		existing.HomeXG = nullFloat(canon.HomeXG)
	}
	if canon.AwayXG != nil {
		existing.AwayXG = nullFloat(canon.AwayXG)
	}
	if !s.dryRun {
		if err := s.store.UpdateMatch(ctx, existing); err != nil {
			result.recordError("match %s: %v", canon.ExternalID, err)
			return
		}
		s.maybeSettle(ctx, existing, wasFinished)
	}
	result.Updated++
}

// maybeSettle settles predictions when a match has just reached a finished
// state with a full score. Settlement failures never fail the sync batch.
func (s *Service) maybeSettle(ctx context.Context, match *models.Match, wasFinished bool) {
	if wasFinished || !match.IsFinished() {
		return
	}
	if !match.HomeScore.Valid || !match.AwayScore.Valid {
		return
	}

	_, err := s.store.SettlePredictions(ctx, match.ID, int(match.HomeScore.Int32), int(match.AwayScore.Int32))
	if err != nil {
		log.Error().Err(err).
			Int("match_id", match.ID).
			Msg("Failed to settle predictions")
		metrics.RecordError("sync", "prediction_settlement")
	}
}

// SyncStandings fetches the standings table for a league season and upserts
// per-team season statistics. Rows for teams not yet stored are skipped.
func (s *Service) SyncStandings(ctx context.Context, league string, season int) (*SyncResult, error) {
	result := &SyncResult{DataType: "team_statistics"}
	start := time.Now()

	if _, err := s.resolveLeague(ctx, league); err != nil {
		return nil, err
	}

	raws, err := s.source.FetchStandings(ctx, league, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings for %s: %w", league, err)
	}

	for _, raw := range raws {
		canon, err := s.norm.NormalizeStanding(raw)
		if err != nil {
			result.recordError("standing %s: %v", raw.TeamExternalID, err)
			continue
		}
		s.upsertStanding(ctx, result, canon, season)
	}

	s.finish(ctx, result, start)
	return result, nil
}

func (s *Service) upsertStanding(ctx context.Context, result *SyncResult, canon *normalize.CanonicalStanding, season int) {
	team, err := s.store.FindTeamByExternalID(ctx, canon.TeamExternalID, canon.DataSource)
	if err != nil {
		result.recordError("standing %s: %v", canon.TeamExternalID, err)
		return
	}
	if team == nil {
		log.Debug().
			Str("team", canon.TeamName).
			Str("external_id", canon.TeamExternalID).
			Msg("Skipping standing, team not synced yet")
		result.Skipped++
		return
	}

	stats := &models.TeamStatistics{
		TeamID:        team.ID,
		Season:        strconv.Itoa(season),
		MatchesPlayed: canon.Played,
		Wins:          canon.Wins,
		Draws:         canon.Draws,
		Losses:        canon.Losses,
		GoalsFor:      canon.GoalsFor,
		GoalsAgainst:  canon.GoalsAgainst,
		Points:        canon.Points,

		HomeMatches:      canon.HomePlayed,
		HomeWins:         canon.HomeWins,
		HomeDraws:        canon.HomeDraws,
		HomeLosses:       canon.HomeLosses,
		HomeGoalsFor:     canon.HomeGoalsFor,
		HomeGoalsAgainst: canon.HomeGoalsAgainst,

		AwayMatches:      canon.AwayPlayed,
		AwayWins:         canon.AwayWins,
		AwayDraws:        canon.AwayDraws,
		AwayLosses:       canon.AwayLosses,
		AwayGoalsFor:     canon.AwayGoalsFor,
		AwayGoalsAgainst: canon.AwayGoalsAgainst,

		XGFor:      nullFloat(canon.XGFor),
		XGAgainst:  nullFloat(canon.XGAgainst),
		Form:       nullString(canon.Form),
		DataSource: canon.DataSource,
		IsActive:   true,
	}

	existing, err := s.store.GetTeamStats(ctx, team.ID, stats.Season)
	if err != nil {
		result.recordError("standing %s: %v", canon.TeamExternalID, err)
		return
	}

	if !s.dryRun {
		if err := s.store.UpsertTeamStats(ctx, stats); err != nil {
			result.recordError("standing %s: %v", canon.TeamExternalID, err)
			return
		}
	}
	if existing == nil {
		result.Created++
	} else {
		result.Updated++
	}
}

// SyncMatchDetails fetches per-side statistics for one stored fixture and
// applies the expected-goals figures to it
func (s *Service) SyncMatchDetails(ctx context.Context, matchExternalID string) (*SyncResult, error) {
	result := &SyncResult{DataType: "match_details"}
	start := time.Now()

	match, err := s.store.FindMatchByExternalID(ctx, matchExternalID, s.source.Source())
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("match %s is not stored, sync matches first", matchExternalID)
	}

	raw, err := s.source.FetchMatchDetails(ctx, matchExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match details for %s: %w", matchExternalID, err)
	}
	if raw == nil {
		result.Skipped++
		s.finish(ctx, result, start)
		return result, nil
	}

	canon, err := s.norm.NormalizeMatchStats(*raw)
	if err != nil {
		result.recordError("match %s: %v", matchExternalID, err)
		s.finish(ctx, result, start)
		return result, nil
	}

	match.HomeXG = nullFloat(canon.Home.XG)
	match.AwayXG = nullFloat(canon.Away.XG)
	if !s.dryRun {
		if err := s.store.UpdateMatch(ctx, match); err != nil {
			result.recordError("match %s: %v", matchExternalID, err)
			s.finish(ctx, result, start)
			return result, nil
		}
	}
	result.Updated++

	s.finish(ctx, result, start)
	return result, nil
}

// resolveLeague looks up the stored league row for a canonical slug. The
// lookup failing is fatal for the batch: matches and teams cannot be
// attached to a league that has never been synced.
func (s *Service) resolveLeague(ctx context.Context, league string) (*models.League, error) {
	externalID, err := s.source.LeagueExternalID(league)
	if err != nil {
		return nil, err
	}

	row, err := s.store.FindLeagueByExternalID(ctx, externalID, s.source.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve league %s: %w", league, err)
	}
	if row == nil {
		return nil, fmt.Errorf("league %s is not stored, sync leagues first", league)
	}
	return row, nil
}

// finish stamps the duration, records metrics, writes the audit row and
// logs a summary. Audit failures are logged but never fail the batch.
func (s *Service) finish(ctx context.Context, result *SyncResult, start time.Time) {
	result.Duration = time.Since(start)

	status := "success"
	syncStatus := models.SyncStatusCompleted
	if !result.Success() {
		status = "partial"
		syncStatus = models.SyncStatusCompletedWithErrors
	}

	metrics.RecordSync(result.DataType, status, result.Duration.Seconds())
	metrics.RecordSyncOutcome(result.DataType, "created", result.Created)
	metrics.RecordSyncOutcome(result.DataType, "updated", result.Updated)
	metrics.RecordSyncOutcome(result.DataType, "skipped", result.Skipped)
	metrics.RecordSyncOutcome(result.DataType, "error", result.Errors)

	if !s.dryRun {
		entry := &models.SyncLog{
			DataSource:        s.source.Source(),
			DataType:          result.DataType,
			TotalRecords:      result.Processed(),
			SuccessfulRecords: result.Created + result.Updated,
			FailedRecords:     result.Errors,
			SyncStatus:        syncStatus,
		}
		if err := s.store.AppendSyncLog(ctx, entry); err != nil {
			log.Error().Err(err).Str("data_type", result.DataType).Msg("Failed to append sync log")
		}
	}

	log.Info().
		Str("source", s.source.Source()).
		Str("data_type", result.DataType).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Dur("duration", result.Duration).
		Bool("dry_run", s.dryRun).
		Msg("Sync batch finished")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*n), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
