package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// PredictionRepository handles prediction settlement. The pipeline never
// creates predictions; it only marks existing ones correct or not once the
// match they target finishes.
type PredictionRepository struct {
	db *Database
}

// SettleForMatch marks every unsettled prediction for a match as correct or
// incorrect against the final score. Already-settled predictions are left
// alone, so settlement is idempotent. Returns the number of rows settled.
func (r *PredictionRepository) SettleForMatch(ctx context.Context, matchID, homeScore, awayScore int) (int64, error) {
	query := `
		UPDATE predictions SET
			is_correct = (predicted_home_score = $2 AND predicted_away_score = $3),
			updated_at = NOW()
		WHERE match_id = $1 AND is_correct IS NULL
	`

	tag, err := r.db.Pool.Exec(ctx, query, matchID, homeScore, awayScore)
	if err != nil {
		return 0, fmt.Errorf("failed to settle predictions: %w", err)
	}

	if tag.RowsAffected() > 0 {
		log.Info().
			Int("match_id", matchID).
			Int64("settled", tag.RowsAffected()).
			Msg("Predictions settled")
	}

	return tag.RowsAffected(), nil
}
