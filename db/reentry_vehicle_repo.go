package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.ReentryVehicleRepository = (*Repository)(nil)

// dbReentryVehicle represents a re-entry vehicle as stored in the database.
type dbReentryVehicle struct {
	ID           uuid.UUID      `db:"id"`
	Name         string         `db:"name"`
	AltName      sql.NullString `db:"alt_name"`
	Family       sql.NullString `db:"family"`
	Variant      sql.NullString `db:"variant"`
	Manufacturer sql.NullString `db:"manufacturer"`
	Country      sql.NullString `db:"country"`
	Payload      sql.NullInt64  `db:"payload"`
	Decelerator  sql.NullString `db:"decelerator"`
	Remarks      sql.NullString `db:"remarks"`
	ExternalID   sql.NullString `db:"external_id"`
}

func toDomainReentryVehicle(row *dbReentryVehicle) *domain.ReentryVehicle {
	return &domain.ReentryVehicle{
		ID:           row.ID,
		Name:         row.Name,
		AltName:      row.AltName.String,
		Family:       row.Family.String,
		Variant:      row.Variant.String,
		Manufacturer: row.Manufacturer.String,
		Country:      row.Country.String,
		Payload:      intPtr(row.Payload),
		Decelerator:  row.Decelerator.String,
		Remarks:      row.Remarks.String,
		ExternalID:   row.ExternalID.String,
	}
}

func fromDomainReentryVehicle(vehicle *domain.ReentryVehicle) *dbReentryVehicle {
	return &dbReentryVehicle{
		ID:           vehicle.ID,
		Name:         vehicle.Name,
		AltName:      nullString(vehicle.AltName),
		Family:       nullString(vehicle.Family),
		Variant:      nullString(vehicle.Variant),
		Manufacturer: nullString(vehicle.Manufacturer),
		Country:      nullString(vehicle.Country),
		Payload:      nullInt(vehicle.Payload),
		Decelerator:  nullString(vehicle.Decelerator),
		Remarks:      nullString(vehicle.Remarks),
		ExternalID:   nullString(vehicle.ExternalID),
	}
}

// CreateReentryVehicle stores a re-entry vehicle. A non-empty ExternalID marks it as externally owned.
func (repo *Repository) CreateReentryVehicle(vehicle *domain.ReentryVehicle) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	row := fromDomainReentryVehicle(vehicle)
	row.ID = id
	query := `INSERT INTO reentry_vehicles (id, name, alt_name, family, variant, manufacturer, country,
	            payload, decelerator, remarks, external_id)
	          VALUES (:id, :name, :alt_name, :family, :variant, :manufacturer, :country,
	            :payload, :decelerator, :remarks, :external_id)`

	_, err = repo.dbConn.NamedExec(query, row)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating reentry vehicle %s: %w", vehicle.Name, checkErr(err))
	}
	return id, nil
}

// GetReentryVehicle retrieves a re-entry vehicle by ID.
func (repo *Repository) GetReentryVehicle(id uuid.UUID) (*domain.ReentryVehicle, error) {
	var row dbReentryVehicle
	err := repo.dbConn.Get(&row, `SELECT * FROM reentry_vehicles WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting reentry vehicle %s: %w", id, checkErr(err))
	}
	return toDomainReentryVehicle(&row), nil
}

// GetReentryVehicles retrieves all re-entry vehicles.
func (repo *Repository) GetReentryVehicles() ([]*domain.ReentryVehicle, error) {
	var rows []*dbReentryVehicle
	err := repo.dbConn.Select(&rows, `SELECT * FROM reentry_vehicles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("getting reentry vehicles: %w", checkErr(err))
	}

	vehicles := make([]*domain.ReentryVehicle, len(rows))
	for i, row := range rows {
		vehicles[i] = toDomainReentryVehicle(row)
	}
	return vehicles, nil
}

// GetReentryVehicleByName retrieves a re-entry vehicle by its unique name.
func (repo *Repository) GetReentryVehicleByName(name string) (*domain.ReentryVehicle, error) {
	var row dbReentryVehicle
	err := repo.dbConn.Get(&row, `SELECT * FROM reentry_vehicles WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("getting reentry vehicle %s: %w", name, checkErr(err))
	}
	return toDomainReentryVehicle(&row), nil
}

// GetReentryVehicleByExternalID retrieves the re-entry vehicle carrying the given external ID.
func (repo *Repository) GetReentryVehicleByExternalID(externalID string) (*domain.ReentryVehicle, error) {
	if externalID == "" {
		return nil, fmt.Errorf("getting reentry vehicle by external id: %w", domain.ErrNotFound)
	}

	var row dbReentryVehicle
	err := repo.dbConn.Get(&row, `SELECT * FROM reentry_vehicles WHERE external_id = ?`, externalID)
	if err != nil {
		return nil, fmt.Errorf("getting reentry vehicle by external id %s: %w", externalID, checkErr(err))
	}
	return toDomainReentryVehicle(&row), nil
}

// UpdateReentryVehicle applies a manual edit.
func (repo *Repository) UpdateReentryVehicle(vehicle *domain.ReentryVehicle) error {
	row := fromDomainReentryVehicle(vehicle)
	query := `UPDATE reentry_vehicles SET name = :name, alt_name = :alt_name, family = :family,
	            variant = :variant, manufacturer = :manufacturer, country = :country, payload = :payload,
	            decelerator = :decelerator, remarks = :remarks
	          WHERE id = :id`

	return repo.execOne(query, row, fmt.Sprintf("updating reentry vehicle %s", vehicle.ID))
}

// DeleteReentryVehicle removes a re-entry vehicle.
func (repo *Repository) DeleteReentryVehicle(id uuid.UUID) error {
	return repo.deleteByID("reentry_vehicles", id)
}
