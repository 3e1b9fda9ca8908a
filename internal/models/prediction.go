package models

import (
	"database/sql"
	"time"
)

// Prediction stores a score prediction for a match. The pipeline only
// settles correctness once the match finishes; it computes no probabilities.
type Prediction struct {
	ID                 int             `db:"id"`
	MatchID            int             `db:"match_id"`
	PredictionType     string          `db:"prediction_type"`
	PredictedHomeScore int             `db:"predicted_home_score"`
	PredictedAwayScore int             `db:"predicted_away_score"`
	Confidence         sql.NullFloat64 `db:"confidence"`
	IsCorrect          sql.NullBool    `db:"is_correct"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}
