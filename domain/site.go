package domain

import "github.com/google/uuid"

// LaunchSiteRepository defines the interface for managing launch sites.
type LaunchSiteRepository interface {
	// CreateSite stores a launch site and returns its ID.
	CreateSite(site *LaunchSite) (uuid.UUID, error)

	// GetSite retrieves a launch site by ID.
	GetSite(id uuid.UUID) (*LaunchSite, error)

	// GetSites retrieves all launch sites ordered by location and pad.
	GetSites() ([]*LaunchSite, error)

	// FindSite retrieves the site with the given location and pad. It returns ErrNotFound if none matches.
	FindSite(location, launchPad string) (*LaunchSite, error)

	// GetSiteByExternalID retrieves the externally owned site with the given external ID.
	GetSiteByExternalID(externalID string) (*LaunchSite, error)

	// UpdateSite applies a manual edit.
	UpdateSite(site *LaunchSite) error

	// UpdateSyncedSite refreshes an externally owned site. Manual sites are left untouched.
	UpdateSyncedSite(id uuid.UUID, site *LaunchSite) error

	// DeleteSite removes a launch site. It fails while launches still reference it.
	DeleteSite(id uuid.UUID) error
}

// LaunchSite is a launch location and pad.
type LaunchSite struct {
	ID             uuid.UUID
	Location       string
	LaunchPad      string
	Latitude       *float64
	Longitude      *float64
	Country        string
	SiteType       string
	ExternalID     string
	TurnaroundDays int
}
