package repository

import (
	"context"
	"fmt"

	"footysync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// LeagueRepository handles league database operations
type LeagueRepository struct {
	db *Database
}

const leagueColumns = `
	id, sport_id, external_id, name, slug, country, season, logo_url,
	data_source, is_active, created_at, updated_at`

func scanLeague(row pgx.Row) (*models.League, error) {
	var l models.League
	err := row.Scan(
		&l.ID, &l.SportID, &l.ExternalID, &l.Name, &l.Slug,
		&l.Country, &l.Season, &l.LogoURL,
		&l.DataSource, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new league
func (r *LeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (
			sport_id, external_id, name, slug, country, season, logo_url,
			data_source, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		league.SportID, league.ExternalID, league.Name, league.Slug,
		league.Country, league.Season, league.LogoURL,
		league.DataSource, league.IsActive,
	).Scan(&league.ID, &league.CreatedAt, &league.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}

	log.Debug().
		Int("id", league.ID).
		Str("external_id", league.ExternalID).
		Str("name", league.Name).
		Msg("League created")

	return nil
}

// Update updates an existing league by its database ID
func (r *LeagueRepository) Update(ctx context.Context, league *models.League) error {
	query := `
		UPDATE leagues SET
			name = $2,
			slug = $3,
			country = $4,
			season = $5,
			logo_url = $6,
			is_active = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		league.ID, league.Name, league.Slug, league.Country,
		league.Season, league.LogoURL, league.IsActive,
	).Scan(&league.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update league: %w", err)
	}

	return nil
}

// FindByExternalID retrieves a league by provider identifier. Returns
// (nil, nil) when no league matches.
func (r *LeagueRepository) FindByExternalID(ctx context.Context, externalID, dataSource string) (*models.League, error) {
	query := `SELECT` + leagueColumns + `
		FROM leagues
		WHERE external_id = $1 AND data_source = $2
	`

	league, err := scanLeague(r.db.Pool.QueryRow(ctx, query, externalID, dataSource))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find league: %w", err)
	}
	return league, nil
}

// FindBySlug retrieves a league by its canonical slug. Returns (nil, nil)
// when no league matches.
func (r *LeagueRepository) FindBySlug(ctx context.Context, slug string) (*models.League, error) {
	query := `SELECT` + leagueColumns + `
		FROM leagues
		WHERE slug = $1
	`

	league, err := scanLeague(r.db.Pool.QueryRow(ctx, query, slug))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find league: %w", err)
	}
	return league, nil
}

// ListActive returns all active leagues ordered by name
func (r *LeagueRepository) ListActive(ctx context.Context) ([]models.League, error) {
	query := `SELECT` + leagueColumns + `
		FROM leagues
		WHERE is_active = true
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []models.League
	for rows.Next() {
		league, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, *league)
	}
	return leagues, rows.Err()
}
