package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.SyncLogRepository = (*Repository)(nil)

// dbSyncLog represents a sync log entry as stored in the database.
type dbSyncLog struct {
	ID             uuid.UUID      `db:"id"`
	SyncTime       time.Time      `db:"sync_time"`
	DataSource     string         `db:"data_source"`
	RecordsAdded   int            `db:"records_added"`
	RecordsUpdated int            `db:"records_updated"`
	RecordsSkipped int            `db:"records_skipped"`
	Status         string         `db:"status"`
	ErrorMessage   sql.NullString `db:"error_message"`
}

func toDomainSyncLog(row *dbSyncLog) *domain.SyncLog {
	return &domain.SyncLog{
		ID:             row.ID,
		SyncTime:       row.SyncTime.UTC(),
		DataSource:     row.DataSource,
		RecordsAdded:   row.RecordsAdded,
		RecordsUpdated: row.RecordsUpdated,
		RecordsSkipped: row.RecordsSkipped,
		Status:         row.Status,
		ErrorMessage:   row.ErrorMessage.String,
	}
}

// InsertSyncLog records the outcome of one sync pass. A nil ID or zero time is filled in.
func (repo *Repository) InsertSyncLog(entry *domain.SyncLog) error {
	if entry.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating uuid: %w", err)
		}
		entry.ID = id
	}
	if entry.SyncTime.IsZero() {
		entry.SyncTime = time.Now().UTC()
	}

	row := &dbSyncLog{
		ID:             entry.ID,
		SyncTime:       entry.SyncTime.UTC(),
		DataSource:     entry.DataSource,
		RecordsAdded:   entry.RecordsAdded,
		RecordsUpdated: entry.RecordsUpdated,
		RecordsSkipped: entry.RecordsSkipped,
		Status:         entry.Status,
		ErrorMessage:   nullString(entry.ErrorMessage),
	}
	query := `INSERT INTO sync_log (id, sync_time, data_source, records_added, records_updated, records_skipped, status, error_message)
	          VALUES (:id, :sync_time, :data_source, :records_added, :records_updated, :records_skipped, :status, :error_message)`

	_, err := repo.dbConn.NamedExec(query, row)
	if err != nil {
		return fmt.Errorf("inserting sync log %s: %w", entry.ID, checkErr(err))
	}
	return nil
}

// GetSyncLogs retrieves sync log entries, newest first.
func (repo *Repository) GetSyncLogs(limit int) ([]*domain.SyncLog, error) {
	query := `SELECT * FROM sync_log ORDER BY sync_time DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []*dbSyncLog
	err := repo.dbConn.Select(&rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting sync logs: %w", checkErr(err))
	}

	entries := make([]*domain.SyncLog, len(rows))
	for i, row := range rows {
		entries[i] = toDomainSyncLog(row)
	}
	return entries, nil
}

// GetLastSync retrieves the newest sync log entry for a data source.
func (repo *Repository) GetLastSync(dataSource string) (*domain.SyncLog, error) {
	var row dbSyncLog
	query := `SELECT * FROM sync_log WHERE data_source = ? ORDER BY sync_time DESC, id DESC LIMIT 1`

	err := repo.dbConn.Get(&row, query, dataSource)
	if err != nil {
		return nil, fmt.Errorf("getting last sync for %s: %w", dataSource, checkErr(err))
	}
	return toDomainSyncLog(&row), nil
}
