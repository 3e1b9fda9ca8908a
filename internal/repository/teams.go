package repository

import (
	"context"
	"fmt"

	"footysync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

const teamColumns = `
	id, sport_id, league_id, external_id, name, code, country, founded_year,
	logo_url, venue, venue_city, venue_capacity, data_source, is_active,
	created_at, updated_at`

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.SportID, &t.LeagueID, &t.ExternalID, &t.Name,
		&t.Code, &t.Country, &t.FoundedYear, &t.LogoURL,
		&t.Venue, &t.VenueCity, &t.VenueCapacity,
		&t.DataSource, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			sport_id, league_id, external_id, name, code, country,
			founded_year, logo_url, venue, venue_city, venue_capacity,
			data_source, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.SportID, team.LeagueID, team.ExternalID, team.Name,
		team.Code, team.Country, team.FoundedYear, team.LogoURL,
		team.Venue, team.VenueCity, team.VenueCapacity,
		team.DataSource, team.IsActive,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Str("external_id", team.ExternalID).
		Str("name", team.Name).
		Msg("Team created")

	return nil
}

// Update updates an existing team by its database ID
func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			league_id = $2,
			name = $3,
			code = $4,
			country = $5,
			founded_year = $6,
			logo_url = $7,
			venue = $8,
			venue_city = $9,
			venue_capacity = $10,
			is_active = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.ID, team.LeagueID, team.Name, team.Code, team.Country,
		team.FoundedYear, team.LogoURL, team.Venue, team.VenueCity,
		team.VenueCapacity, team.IsActive,
	).Scan(&team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	return nil
}

// FindByExternalID retrieves a team by provider identifier. Returns
// (nil, nil) when no team matches.
func (r *TeamRepository) FindByExternalID(ctx context.Context, externalID, dataSource string) (*models.Team, error) {
	query := `SELECT` + teamColumns + `
		FROM teams
		WHERE external_id = $1 AND data_source = $2
	`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, externalID, dataSource))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// ListByLeague returns all teams in a league ordered by name
func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID int) ([]models.Team, error) {
	query := `SELECT` + teamColumns + `
		FROM teams
		WHERE league_id = $1
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}
