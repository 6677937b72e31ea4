package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncMode selects what a sync pass fetches.
type SyncMode string

const (
	SyncUpcoming SyncMode = "upcoming"
	SyncPrevious SyncMode = "previous"
	SyncRange    SyncMode = "range"
	SyncRockets  SyncMode = "rockets"
)

// DataSource returns the sync_log data_source value recorded for passes of this mode.
func (m SyncMode) DataSource() string {
	switch m {
	case SyncUpcoming:
		return "SPACE_DEVS_UPCOMING"
	case SyncPrevious:
		return "SPACE_DEVS_PREVIOUS"
	case SyncRange:
		return "SPACE_DEVS_RANGE"
	case SyncRockets:
		return "SPACE_DEVS_ROCKETS"
	}
	return "SPACE_DEVS"
}

// Valid reports whether m is a known mode.
func (m SyncMode) Valid() bool {
	switch m {
	case SyncUpcoming, SyncPrevious, SyncRange, SyncRockets:
		return true
	}
	return false
}

// Sync pass outcomes stored in sync_log.status.
const (
	SyncStatusSuccess = "SUCCESS"
	SyncStatusPartial = "PARTIAL"
	SyncStatusFailed  = "FAILED"
)

// SyncLogRepository defines the interface for the per-pass sync log.
type SyncLogRepository interface {
	// InsertSyncLog records the outcome of one sync pass.
	InsertSyncLog(entry *SyncLog) error

	// GetSyncLogs retrieves sync log entries, newest first. A limit of 0 returns all.
	GetSyncLogs(limit int) ([]*SyncLog, error)

	// GetLastSync retrieves the newest entry for a data source. It returns ErrNotFound if there is none.
	GetLastSync(dataSource string) (*SyncLog, error)
}

// SyncLog is the recorded outcome of one sync pass.
type SyncLog struct {
	ID             uuid.UUID
	SyncTime       time.Time
	DataSource     string
	RecordsAdded   int
	RecordsUpdated int
	RecordsSkipped int
	Status         string
	ErrorMessage   string
}

// SyncRequest describes one sync pass.
type SyncRequest struct {
	Mode  SyncMode
	Limit int    // number of records for upcoming and previous
	Start string // YYYY-MM-DD, range mode
	End   string // YYYY-MM-DD, range mode
}

// SyncResult summarizes a finished sync pass.
type SyncResult struct {
	SyncID    uuid.UUID
	Mode      SyncMode
	Added     int
	Updated   int
	Skipped   int
	Processed int
	Errors    []string
	Status    string
}
