package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provenance values stored in the data_source column.
const (
	DataSourceManual    = "MANUAL"
	DataSourceSpaceDevs = "SPACE_DEVS"
)

// LaunchRepository defines the interface for managing launches.
//
// Rows with an ExternalID are owned by the external source and are the only rows the
// synced variants (InsertSyncedLaunch, UpdateSyncedLaunch) may write. Rows created
// through CreateLaunch are manual and keep an empty ExternalID.
type LaunchRepository interface {
	// CreateLaunch stores a manually entered launch and returns its ID.
	// DataSource is forced to MANUAL and ExternalID is cleared.
	CreateLaunch(launch *Launch) (uuid.UUID, error)

	// GetLaunch retrieves a launch by ID. It returns ErrNotFound if it does not exist.
	GetLaunch(id uuid.UUID) (*Launch, error)

	// GetLaunches retrieves launches matching the filter, ordered by date and time.
	GetLaunches(filter LaunchFilter) ([]*Launch, error)

	// UpdateLaunch applies a manual edit to an existing launch.
	UpdateLaunch(launch *Launch) error

	// DeleteLaunch removes a launch. Deletion is always a manual operation.
	DeleteLaunch(id uuid.UUID) error

	// GetLaunchByExternalID retrieves the externally owned launch with the given external ID.
	// It returns ErrNotFound if no row carries that ID.
	GetLaunchByExternalID(externalID string) (*Launch, error)

	// InsertSyncedLaunch stores a launch that came from the external source.
	InsertSyncedLaunch(launch *Launch) (uuid.UUID, error)

	// UpdateSyncedLaunch overwrites the mutable fields of an externally owned launch and
	// refreshes its last_synced timestamp. It never modifies a row without an external ID.
	UpdateSyncedLaunch(id uuid.UUID, launch *Launch) error

	// CountLaunches returns the number of stored launches.
	CountLaunches() (int, error)
}

// Launch is a single launch event.
type Launch struct {
	ID             uuid.UUID
	LaunchDate     string // YYYY-MM-DD, UTC
	LaunchTime     string // HH:MM:SS, UTC, empty when unknown
	WindowStart    *time.Time
	WindowEnd      *time.Time
	SiteID         uuid.UUID
	RocketID       uuid.UUID
	StatusID       uuid.UUID
	MissionName    string
	PayloadName    string
	PayloadMass    *float64
	OrbitType      string
	OrbitAltitude  *float64
	Inclination    *float64
	Success        *bool // nil while the outcome is unknown
	FailureReason  string
	Remarks        string
	SourceURL      string
	NotamReference string
	DataSource     string
	ExternalID     string
	LastUpdated    *time.Time
	LastSynced     *time.Time
}

// IsManual reports whether the launch was entered by hand and is therefore protected from sync.
func (l *Launch) IsManual() bool {
	return l.ExternalID == ""
}

// DateTime combines LaunchDate and LaunchTime into a UTC time.
// The boolean is false if the time of day is unknown, in which case midnight is used.
func (l *Launch) DateTime() (time.Time, bool) {
	if l.LaunchTime != "" {
		if t, err := time.Parse("2006-01-02 15:04:05", l.LaunchDate+" "+l.LaunchTime); err == nil {
			return t.UTC(), true
		}
	}
	t, err := time.Parse("2006-01-02", l.LaunchDate)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), false
}

// LaunchFilter narrows GetLaunches. Zero values disable the corresponding condition.
type LaunchFilter struct {
	From   string // inclusive YYYY-MM-DD
	To     string // inclusive YYYY-MM-DD
	Search string // matched against mission, payload, site and rocket names
	Limit  int
}

// SyncedLaunch is one record as delivered by the external source, already mapped to
// local field names but not yet resolved to local site, rocket and status rows.
type SyncedLaunch struct {
	ExternalID  string
	LaunchDate  string
	LaunchTime  string
	WindowStart *time.Time
	WindowEnd   *time.Time
	MissionName string
	PayloadName string
	OrbitType   string
	StatusName  string
	Success     *bool
	Remarks     string
	SourceURL   string
	Site        LaunchSite
	Rocket      Rocket
}
