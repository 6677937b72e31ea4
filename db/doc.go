// Package db provides the database layer for the Shockwave planner.
// It encapsulates all interactions with the local SQLite file holding launches,
// launch sites, rockets, statuses, re-entries, re-entry sites, the sync log and
// the application log.
//
// This package is responsible for:
//   - Establishing the connection and applying embedded goose migrations (`db.go`).
//   - Defining database-specific structs that map to the SQL tables and converting
//     them to and from the domain package, using `sql.Null*` types for nullable columns.
//   - Implementing the repository interfaces of the domain package.
//   - Enforcing provenance: the synced write paths only ever touch rows that carry
//     an external identifier.
//   - Repairing or resetting a database file whose schema has gone stale (`repair.go`).
package db
