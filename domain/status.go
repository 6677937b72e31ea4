package domain

import "github.com/google/uuid"

// Launch status names seeded by the initial migration.
const (
	StatusScheduled      = "Scheduled"
	StatusGo             = "Go for Launch"
	StatusSuccess        = "Success"
	StatusFailure        = "Failure"
	StatusPartialFailure = "Partial Failure"
	StatusScrubbed       = "Scrubbed"
	StatusHold           = "Hold"
	StatusInFlight       = "In Flight"
)

// StatusRepository defines read access to launch statuses.
type StatusRepository interface {
	// GetStatuses retrieves all statuses.
	GetStatuses() ([]*LaunchStatus, error)

	// GetStatusByName retrieves a status by its unique name.
	GetStatusByName(name string) (*LaunchStatus, error)
}

// LaunchStatus is the state of a launch or re-entry, with its display colour.
type LaunchStatus struct {
	ID          uuid.UUID
	Name        string
	Abbr        string
	Colour      string
	Description string
}
