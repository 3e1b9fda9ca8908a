package models

import "time"

// Sync log statuses
const (
	SyncStatusCompleted           = "completed"
	SyncStatusCompletedWithErrors = "completed_with_errors"
)

// SyncLog is an append-only audit record for a single sync batch.
// Rows are never mutated after creation.
type SyncLog struct {
	ID                int       `db:"id"`
	DataSource        string    `db:"data_source"`
	DataType          string    `db:"data_type"`
	TotalRecords      int       `db:"total_records"`
	SuccessfulRecords int       `db:"successful_records"`
	FailedRecords     int       `db:"failed_records"`
	SyncStatus        string    `db:"sync_status"`
	SyncedAt          time.Time `db:"synced_at"`
}
