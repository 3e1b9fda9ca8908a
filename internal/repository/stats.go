package repository

import (
	"context"
	"fmt"

	"footysync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// StatsRepository handles team statistics database operations
type StatsRepository struct {
	db *Database
}

// Upsert inserts or updates a team's season statistics. Derived columns are
// recomputed before the write so they never go stale.
func (r *StatsRepository) Upsert(ctx context.Context, stats *models.TeamStatistics) error {
	stats.ComputeDerived()

	query := `
		INSERT INTO team_statistics (
			team_id, season, matches_played, wins, draws, losses,
			goals_for, goals_against, points,
			home_matches, home_wins, home_draws, home_losses,
			home_goals_for, home_goals_against,
			away_matches, away_wins, away_draws, away_losses,
			away_goals_for, away_goals_against,
			goal_difference, goals_for_per_match, goals_against_per_match,
			xg_for, xg_against, form, data_source, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21,
			$22, $23, $24, $25, $26, $27, $28, $29
		)
		ON CONFLICT (team_id, season) DO UPDATE SET
			matches_played = EXCLUDED.matches_played,
			wins = EXCLUDED.wins,
			draws = EXCLUDED.draws,
			losses = EXCLUDED.losses,
			goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against,
			points = EXCLUDED.points,
			home_matches = EXCLUDED.home_matches,
			home_wins = EXCLUDED.home_wins,
			home_draws = EXCLUDED.home_draws,
			home_losses = EXCLUDED.home_losses,
			home_goals_for = EXCLUDED.home_goals_for,
			home_goals_against = EXCLUDED.home_goals_against,
			away_matches = EXCLUDED.away_matches,
			away_wins = EXCLUDED.away_wins,
			away_draws = EXCLUDED.away_draws,
			away_losses = EXCLUDED.away_losses,
			away_goals_for = EXCLUDED.away_goals_for,
			away_goals_against = EXCLUDED.away_goals_against,
			goal_difference = EXCLUDED.goal_difference,
			goals_for_per_match = EXCLUDED.goals_for_per_match,
			goals_against_per_match = EXCLUDED.goals_against_per_match,
			xg_for = EXCLUDED.xg_for,
			xg_against = EXCLUDED.xg_against,
			form = EXCLUDED.form,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		stats.TeamID, stats.Season, stats.MatchesPlayed,
		stats.Wins, stats.Draws, stats.Losses,
		stats.GoalsFor, stats.GoalsAgainst, stats.Points,
		stats.HomeMatches, stats.HomeWins, stats.HomeDraws, stats.HomeLosses,
		stats.HomeGoalsFor, stats.HomeGoalsAgainst,
		stats.AwayMatches, stats.AwayWins, stats.AwayDraws, stats.AwayLosses,
		stats.AwayGoalsFor, stats.AwayGoalsAgainst,
		stats.GoalDifference, stats.GoalsForPerMatch, stats.GoalsAgainstPerMatch,
		stats.XGFor, stats.XGAgainst, stats.Form,
		stats.DataSource, stats.IsActive,
	).Scan(&stats.ID, &stats.CreatedAt, &stats.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team statistics: %w", err)
	}

	return nil
}

// GetByTeamSeason retrieves one team's statistics for a season. Returns
// (nil, nil) when no row matches.
func (r *StatsRepository) GetByTeamSeason(ctx context.Context, teamID int, season string) (*models.TeamStatistics, error) {
	query := `
		SELECT id, team_id, season, matches_played, wins, draws, losses,
		       goals_for, goals_against, points,
		       home_matches, home_wins, home_draws, home_losses,
		       home_goals_for, home_goals_against,
		       away_matches, away_wins, away_draws, away_losses,
		       away_goals_for, away_goals_against,
		       goal_difference, goals_for_per_match, goals_against_per_match,
		       xg_for, xg_against, form, data_source, is_active,
		       created_at, updated_at
		FROM team_statistics
		WHERE team_id = $1 AND season = $2
	`

	var s models.TeamStatistics
	err := r.db.Pool.QueryRow(ctx, query, teamID, season).Scan(
		&s.ID, &s.TeamID, &s.Season, &s.MatchesPlayed,
		&s.Wins, &s.Draws, &s.Losses,
		&s.GoalsFor, &s.GoalsAgainst, &s.Points,
		&s.HomeMatches, &s.HomeWins, &s.HomeDraws, &s.HomeLosses,
		&s.HomeGoalsFor, &s.HomeGoalsAgainst,
		&s.AwayMatches, &s.AwayWins, &s.AwayDraws, &s.AwayLosses,
		&s.AwayGoalsFor, &s.AwayGoalsAgainst,
		&s.GoalDifference, &s.GoalsForPerMatch, &s.GoalsAgainstPerMatch,
		&s.XGFor, &s.XGAgainst, &s.Form, &s.DataSource, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team statistics: %w", err)
	}
	return &s, nil
}
