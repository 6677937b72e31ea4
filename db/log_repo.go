package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.LogRepository = (*Repository)(nil)

// dbLog represents a log entry as stored in the database.
type dbLog struct {
	ID        uuid.UUID      `db:"id"`        // Unique identifier for the log entry.
	Timestamp time.Time      `db:"timestamp"` // The time at which the log entry was created.
	Level     string         `db:"level"`     // The severity level of the log.
	Message   string         `db:"message"`   // The main content of the log message.
	Context   Metadata       `db:"context"`   // A map of additional key-value data for structured logging.
	LaunchID  sql.NullString `db:"launch_id"` // An optional ID of an associated launch.
	SyncID    sql.NullString `db:"sync_id"`   // An optional ID of the sync pass.
}

// toDomainLog converts a dbLog to a domain.Log.
func toDomainLog(dbLog *dbLog) *domain.Log {
	log := &domain.Log{
		ID:        dbLog.ID,
		Timestamp: dbLog.Timestamp,
		Level:     dbLog.Level,
		Message:   dbLog.Message,
		Context:   map[string]any(dbLog.Context),
	}

	if dbLog.LaunchID.Valid {
		if id, err := uuid.Parse(dbLog.LaunchID.String); err == nil {
			log.LaunchID = &id
		}
	}

	if dbLog.SyncID.Valid {
		if id, err := uuid.Parse(dbLog.SyncID.String); err == nil {
			log.SyncID = &id
		}
	}

	return log
}

// fromDomainLog converts a domain.Log to a dbLog.
func fromDomainLog(log *domain.Log) *dbLog {
	dbLog := &dbLog{
		ID:        log.ID,
		Timestamp: log.Timestamp,
		Level:     log.Level,
		Message:   log.Message,
		Context:   Metadata(log.Context),
	}

	if log.LaunchID != nil {
		dbLog.LaunchID = sql.NullString{String: log.LaunchID.String(), Valid: true}
	}

	if log.SyncID != nil {
		dbLog.SyncID = sql.NullString{String: log.SyncID.String(), Valid: true}
	}

	return dbLog
}

// InsertLog saves a new log entry to the database.
func (repo *Repository) InsertLog(log *domain.Log) error {
	dbLog := fromDomainLog(log)
	query := `INSERT INTO logs (id, level, timestamp, message, context, launch_id, sync_id)
	          VALUES (:id, :level, :timestamp, :message, :context, :launch_id, :sync_id)`

	_, err := repo.dbConn.NamedExec(query, dbLog)
	if err != nil {
		return fmt.Errorf("inserting log %s: %w", log.ID, checkErr(err))
	}

	return nil
}

// GetLogs retrieves all log entries from the database.
func (repo *Repository) GetLogs() ([]*domain.Log, error) {
	var dbLogs []*dbLog
	query := `SELECT * FROM logs ORDER BY timestamp`

	err := repo.dbConn.Select(&dbLogs, query)
	if err != nil {
		return nil, fmt.Errorf("fetching all logs: %w", checkErr(err))
	}

	domainLogs := make([]*domain.Log, len(dbLogs))
	for i, dbLog := range dbLogs {
		domainLogs[i] = toDomainLog(dbLog)
	}

	return domainLogs, nil
}
