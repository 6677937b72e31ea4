package domain

import "github.com/google/uuid"

// ReentryVehicleRepository defines the interface for managing re-entry vehicles, the
// capsules, stages and spaceplanes that come back down.
type ReentryVehicleRepository interface {
	// CreateReentryVehicle stores a vehicle and returns its ID. Names are unique.
	CreateReentryVehicle(vehicle *ReentryVehicle) (uuid.UUID, error)

	// GetReentryVehicle retrieves a vehicle by ID.
	GetReentryVehicle(id uuid.UUID) (*ReentryVehicle, error)

	// GetReentryVehicles retrieves all vehicles ordered by name.
	GetReentryVehicles() ([]*ReentryVehicle, error)

	// GetReentryVehicleByName retrieves a vehicle by its unique name.
	GetReentryVehicleByName(name string) (*ReentryVehicle, error)

	// GetReentryVehicleByExternalID retrieves the externally owned vehicle with the given external ID.
	GetReentryVehicleByExternalID(externalID string) (*ReentryVehicle, error)

	UpdateReentryVehicle(vehicle *ReentryVehicle) error
	DeleteReentryVehicle(id uuid.UUID) error
}

// ReentryVehicle is the re-entry counterpart of Rocket.
type ReentryVehicle struct {
	ID           uuid.UUID
	Name         string
	AltName      string
	Family       string
	Variant      string
	Manufacturer string
	Country      string
	Payload      *int // kg
	Decelerator  string
	Remarks      string
	ExternalID   string
}
