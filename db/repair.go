package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

// column is a column definition that can be added to an existing table with ALTER TABLE.
type column struct {
	name string
	decl string
}

// knownColumns lists, per table, the columns added after the first public schema. Declarations
// are restricted to what ALTER TABLE ADD COLUMN accepts: no UNIQUE and no NOT NULL without a default.
var knownColumns = map[string][]column{
	"launches": {
		{"launch_window_start", "DATETIME"},
		{"launch_window_end", "DATETIME"},
		{"payload_mass", "REAL"},
		{"orbit_altitude", "REAL"},
		{"inclination", "REAL"},
		{"success", "BOOLEAN"},
		{"failure_reason", "TEXT"},
		{"remarks", "TEXT"},
		{"source_url", "TEXT"},
		{"notam_reference", "TEXT"},
		{"data_source", "TEXT NOT NULL DEFAULT 'MANUAL'"},
		{"external_id", "TEXT"},
		{"last_updated", "DATETIME"},
		{"last_synced", "DATETIME"},
	},
	"launch_sites": {
		{"latitude", "REAL"},
		{"longitude", "REAL"},
		{"country", "TEXT"},
		{"site_type", "TEXT NOT NULL DEFAULT 'LAUNCH'"},
		{"external_id", "TEXT"},
		{"turnaround_days", "INTEGER NOT NULL DEFAULT 7"},
	},
	"rockets": {
		{"alt_name", "TEXT"},
		{"family", "TEXT"},
		{"variant", "TEXT"},
		{"manufacturer", "TEXT"},
		{"country", "TEXT"},
		{"payload_leo", "REAL"},
		{"payload_gto", "REAL"},
		{"height", "REAL"},
		{"diameter", "REAL"},
		{"mass", "REAL"},
		{"stages", "INTEGER"},
		{"external_id", "TEXT"},
	},
	"reentry_sites": {
		{"latitude", "REAL"},
		{"longitude", "REAL"},
		{"country", "TEXT"},
		{"zone_type", "TEXT"},
		{"external_id", "TEXT"},
		{"turnaround_days", "INTEGER NOT NULL DEFAULT 7"},
	},
	"reentries": {
		{"launch_id", "TEXT REFERENCES launches(id) ON DELETE SET NULL"},
		{"reentry_time", "TEXT"},
		{"vehicle_component", "TEXT"},
		{"reentry_type", "TEXT"},
		{"remarks", "TEXT"},
		{"data_source", "TEXT NOT NULL DEFAULT 'MANUAL'"},
		{"external_id", "TEXT"},
	},
	"reentry_vehicles": {
		{"alt_name", "TEXT"},
		{"family", "TEXT"},
		{"variant", "TEXT"},
		{"manufacturer", "TEXT"},
		{"country", "TEXT"},
		{"payload", "INTEGER"},
		{"decelerator", "TEXT"},
		{"remarks", "TEXT"},
		{"external_id", "TEXT"},
	},
	"sync_log": {
		{"records_skipped", "INTEGER NOT NULL DEFAULT 0"},
		{"error_message", "TEXT"},
	},
	"logs": {
		{"context", "TEXT"},
		{"launch_id", "TEXT"},
		{"sync_id", "TEXT"},
	},
}

// repairOrder fixes the order in which tables are inspected so reports are stable.
var repairOrder = []string{"launch_sites", "rockets", "launches", "reentry_sites", "reentries", "reentry_vehicles", "sync_log", "logs"}

// RepairReport describes what Repair changed.
type RepairReport struct {
	Backup  string   // path of the copy taken before any change
	Added   []string // "table.column" for every column that was added
	Missing []string // tables that do not exist and are left to the migrations
}

// Repair brings a database created by an older version up to the current schema in place.
// The file is copied first, missing columns of known tables are added and the migrations are
// re-applied. Rows are never dropped.
func Repair(name string) (*RepairReport, error) {
	if _, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("checking database %s: %w", name, err)
	}

	backup, err := backupPath(name)
	if err != nil {
		return nil, err
	}
	if err := copyFile(name, backup); err != nil {
		return nil, fmt.Errorf("backing up database: %w", err)
	}
	report := &RepairReport{Backup: backup}

	dbConn, err := connect(name)
	if err != nil {
		return report, err
	}
	defer dbConn.Close()

	for _, table := range repairOrder {
		existing, err := tableColumns(dbConn, table)
		if err != nil {
			return report, err
		}
		if len(existing) == 0 {
			report.Missing = append(report.Missing, table)
			continue
		}

		for _, col := range knownColumns[table] {
			if existing[col.name] {
				continue
			}
			query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.name, col.decl)
			if _, err := dbConn.Exec(query); err != nil {
				return report, fmt.Errorf("adding column %s.%s: %w", table, col.name, err)
			}
			report.Added = append(report.Added, table+"."+col.name)

			if col.name == "external_id" {
				index := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_external_id ON %s (external_id)", table, table)
				if _, err := dbConn.Exec(index); err != nil {
					return report, fmt.Errorf("indexing %s.external_id: %w", table, err)
				}
			}
		}
	}

	if err := migrate(dbConn); err != nil {
		return report, err
	}
	return report, nil
}

// tableColumns returns the set of column names of table. A missing table yields an empty set.
func tableColumns(dbConn *sqlx.DB, table string) (map[string]bool, error) {
	rows, err := dbConn.Queryx(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		info := make(map[string]any)
		if err := rows.MapScan(info); err != nil {
			return nil, fmt.Errorf("scanning columns of %s: %w", table, err)
		}
		switch name := info["name"].(type) {
		case string:
			columns[name] = true
		case []byte:
			columns[string(name)] = true
		}
	}
	return columns, rows.Err()
}

// Reset moves the database aside to the first free <name>.OLD[.N] path and removes its
// journal files, so the next New starts from an empty schema. It returns the backup path,
// or an empty string when there was no database to move.
func Reset(name string) (string, error) {
	if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	backup, err := backupPath(name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(name, backup); err != nil {
		return "", fmt.Errorf("moving database to %s: %w", backup, err)
	}

	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if err := os.Remove(name + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return backup, fmt.Errorf("removing %s%s: %w", name, suffix, err)
		}
	}
	return backup, nil
}

// backupPath returns the first of <name>.OLD, <name>.OLD.1, <name>.OLD.2, ... that does not exist.
func backupPath(name string) (string, error) {
	candidate := name + ".OLD"
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking backup path %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s.OLD.%d", name, i)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// IsStaleSchemaMessage reports whether a driver error message points at a schema mismatch.
func IsStaleSchemaMessage(msg string) bool {
	return strings.Contains(msg, "no such column") || strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "has no column named")
}
