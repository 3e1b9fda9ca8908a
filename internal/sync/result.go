package sync

import (
	"fmt"
	"time"
)

// SyncResult summarizes one sync batch. A batch succeeds only when no
// record-level errors occurred; skipped records do not count as errors.
type SyncResult struct {
	DataType      string
	Created       int
	Updated       int
	Skipped       int
	Errors        int
	ErrorMessages []string
	Duration      time.Duration
}

// Success reports whether the batch completed without record errors
func (r *SyncResult) Success() bool {
	return r.Errors == 0
}

// Processed returns the number of records the batch saw
func (r *SyncResult) Processed() int {
	return r.Created + r.Updated + r.Skipped + r.Errors
}

// String renders a one-line summary for logs and CLI output
func (r *SyncResult) String() string {
	return fmt.Sprintf("%s: created=%d updated=%d skipped=%d errors=%d in %s",
		r.DataType, r.Created, r.Updated, r.Skipped, r.Errors, r.Duration.Round(time.Millisecond))
}

// recordError counts a record-level failure and keeps its message
func (r *SyncResult) recordError(format string, args ...any) {
	r.Errors++
	r.ErrorMessages = append(r.ErrorMessages, fmt.Sprintf(format, args...))
}
