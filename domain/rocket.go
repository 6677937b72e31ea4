package domain

import "github.com/google/uuid"

// RocketRepository defines the interface for managing rockets (launch vehicles).
type RocketRepository interface {
	// CreateRocket stores a rocket and returns its ID. Names are unique.
	CreateRocket(rocket *Rocket) (uuid.UUID, error)

	// GetRocket retrieves a rocket by ID.
	GetRocket(id uuid.UUID) (*Rocket, error)

	// GetRockets retrieves all rockets ordered by name.
	GetRockets() ([]*Rocket, error)

	// GetRocketByName retrieves a rocket by its unique name.
	GetRocketByName(name string) (*Rocket, error)

	// GetRocketByExternalID retrieves the externally owned rocket with the given external ID.
	GetRocketByExternalID(externalID string) (*Rocket, error)

	// GetSyncedRockets retrieves every rocket that carries an external ID.
	GetSyncedRockets() ([]*Rocket, error)

	// UpdateRocket applies a manual edit.
	UpdateRocket(rocket *Rocket) error

	// UpdateSyncedRocket refreshes an externally owned rocket. Empty or nil fields in the
	// update keep their stored value, so details are filled in opportunistically.
	UpdateSyncedRocket(id uuid.UUID, rocket *Rocket) error

	// DeleteRocket removes a rocket. It fails while launches still reference it.
	DeleteRocket(id uuid.UUID) error
}

// Rocket is a launch vehicle configuration.
type Rocket struct {
	ID           uuid.UUID
	Name         string
	AltName      string
	Family       string
	Variant      string
	Manufacturer string
	Country      string
	PayloadLEO   *float64 // kg
	PayloadGTO   *float64 // kg
	Height       *float64 // m
	Diameter     *float64 // m
	Mass         *float64 // t
	Stages       *int
	ExternalID   string
}
