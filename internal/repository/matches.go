package repository

import (
	"context"
	"fmt"
	"time"

	"footysync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

const matchColumns = `
	id, sport_id, league_id, external_id, season, home_team_id, away_team_id,
	match_date, venue, round, referee, status, home_score, away_score,
	home_halftime_score, away_halftime_score, home_xg, away_xg,
	data_source, created_at, updated_at`

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.SportID, &m.LeagueID, &m.ExternalID, &m.Season,
		&m.HomeTeamID, &m.AwayTeamID, &m.MatchDate,
		&m.Venue, &m.Round, &m.Referee, &m.Status,
		&m.HomeScore, &m.AwayScore,
		&m.HomeHalftimeScore, &m.AwayHalftimeScore,
		&m.HomeXG, &m.AwayXG,
		&m.DataSource, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new match
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			sport_id, league_id, external_id, season, home_team_id,
			away_team_id, match_date, venue, round, referee, status,
			home_score, away_score, home_halftime_score, away_halftime_score,
			home_xg, away_xg, data_source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		match.SportID, match.LeagueID, match.ExternalID, match.Season,
		match.HomeTeamID, match.AwayTeamID, match.MatchDate,
		match.Venue, match.Round, match.Referee, match.Status,
		match.HomeScore, match.AwayScore,
		match.HomeHalftimeScore, match.AwayHalftimeScore,
		match.HomeXG, match.AwayXG, match.DataSource,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	log.Debug().
		Int("id", match.ID).
		Str("external_id", match.ExternalID).
		Str("status", string(match.Status)).
		Msg("Match created")

	return nil
}

// Update updates an existing match by its database ID
func (r *MatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches SET
			season = $2,
			match_date = $3,
			venue = $4,
			round = $5,
			referee = $6,
			status = $7,
			home_score = $8,
			away_score = $9,
			home_halftime_score = $10,
			away_halftime_score = $11,
			home_xg = $12,
			away_xg = $13,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		match.ID, match.Season, match.MatchDate, match.Venue,
		match.Round, match.Referee, match.Status,
		match.HomeScore, match.AwayScore,
		match.HomeHalftimeScore, match.AwayHalftimeScore,
		match.HomeXG, match.AwayXG,
	).Scan(&match.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	return nil
}

// FindByExternalID retrieves a match by provider identifier. Returns
// (nil, nil) when no match matches.
func (r *MatchRepository) FindByExternalID(ctx context.Context, externalID, dataSource string) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE external_id = $1 AND data_source = $2
	`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, externalID, dataSource))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	return match, nil
}

// ListLive returns matches currently marked live, oldest kickoff first
func (r *MatchRepository) ListLive(ctx context.Context) ([]models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE status = $1
		ORDER BY match_date
	`
	return r.list(ctx, query, models.StatusLive)
}

// ListByDateRange returns a league's matches with kickoff between from and
// to, oldest first
func (r *MatchRepository) ListByDateRange(ctx context.Context, leagueID int, from, to time.Time) ([]models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE league_id = $1 AND match_date >= $2 AND match_date <= $3
		ORDER BY match_date
	`
	return r.list(ctx, query, leagueID, from, to)
}

func (r *MatchRepository) list(ctx context.Context, query string, args ...any) ([]models.Match, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *match)
	}
	return matches, rows.Err()
}
