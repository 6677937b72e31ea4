package domain

import "github.com/google/uuid"

// ReentryRepository defines the interface for managing re-entry events.
// Re-entries follow the same provenance rules as launches.
type ReentryRepository interface {
	CreateReentry(reentry *Reentry) (uuid.UUID, error)
	GetReentry(id uuid.UUID) (*Reentry, error)
	// GetReentries retrieves re-entries between from and to (inclusive, YYYY-MM-DD).
	// Empty bounds are open.
	GetReentries(from, to string) ([]*Reentry, error)
	UpdateReentry(reentry *Reentry) error
	DeleteReentry(id uuid.UUID) error
	CountReentries() (int, error)
}

// ReentrySiteRepository defines the interface for managing re-entry sites (drop zones).
type ReentrySiteRepository interface {
	CreateReentrySite(site *ReentrySite) (uuid.UUID, error)
	GetReentrySite(id uuid.UUID) (*ReentrySite, error)
	GetReentrySites() ([]*ReentrySite, error)
	UpdateReentrySite(site *ReentrySite) error
	DeleteReentrySite(id uuid.UUID) error
}

// Reentry is a descent event, optionally tied to the launch that put the vehicle up.
type Reentry struct {
	ID               uuid.UUID
	LaunchID         *uuid.UUID
	ReentryDate      string
	ReentryTime      string
	SiteID           uuid.UUID
	VehicleComponent string
	ReentryType      string
	StatusID         uuid.UUID
	Remarks          string
	DataSource       string
	ExternalID       string
}

// ReentrySite is a drop zone.
type ReentrySite struct {
	ID             uuid.UUID
	Location       string
	DropZone       string
	Latitude       *float64
	Longitude      *float64
	Country        string
	ZoneType       string
	ExternalID     string
	TurnaroundDays int
}
