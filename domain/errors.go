package domain

import "errors"

var (
	// ErrNotFound is returned when a lookup by ID, name or external ID matches no row.
	ErrNotFound = errors.New("not found")

	// ErrStaleSchema is returned when the local database does not match the schema the
	// application expects (for example a missing column). It is not handled automatically;
	// the database has to be repaired or reset.
	ErrStaleSchema = errors.New("stale database schema, run repair or reset")

	// ErrSyncInProgress is returned when a sync pass is requested while another one is running.
	ErrSyncInProgress = errors.New("a sync is already in progress")
)
