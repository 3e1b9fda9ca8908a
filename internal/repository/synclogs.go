package repository

import (
	"context"
	"fmt"

	"footysync/ingestion/internal/models"
)

// SyncLogRepository handles the append-only sync audit log
type SyncLogRepository struct {
	db *Database
}

// Append records a completed sync batch. Rows are never updated or deleted.
func (r *SyncLogRepository) Append(ctx context.Context, entry *models.SyncLog) error {
	query := `
		INSERT INTO sync_logs (
			data_source, data_type, total_records, successful_records,
			failed_records, sync_status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, synced_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		entry.DataSource, entry.DataType, entry.TotalRecords,
		entry.SuccessfulRecords, entry.FailedRecords, entry.SyncStatus,
	).Scan(&entry.ID, &entry.SyncedAt)

	if err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}

	return nil
}

// List returns recent sync batches, newest first. dataType filters when
// non-empty; limit falls back to 50 when not positive.
func (r *SyncLogRepository) List(ctx context.Context, dataType string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, data_source, data_type, total_records, successful_records,
		       failed_records, sync_status, synced_at
		FROM sync_logs
	`
	args := []any{limit}
	if dataType != "" {
		query += ` WHERE data_type = $2`
		args = append(args, dataType)
	}
	query += ` ORDER BY synced_at DESC LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncLog
	for rows.Next() {
		var e models.SyncLog
		err := rows.Scan(
			&e.ID, &e.DataSource, &e.DataType, &e.TotalRecords,
			&e.SuccessfulRecords, &e.FailedRecords, &e.SyncStatus, &e.SyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
