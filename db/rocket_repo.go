package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.RocketRepository = (*Repository)(nil)

// dbRocket represents a rocket as stored in the database.
type dbRocket struct {
	ID           uuid.UUID       `db:"id"`
	Name         string          `db:"name"`
	AltName      sql.NullString  `db:"alt_name"`
	Family       sql.NullString  `db:"family"`
	Variant      sql.NullString  `db:"variant"`
	Manufacturer sql.NullString  `db:"manufacturer"`
	Country      sql.NullString  `db:"country"`
	PayloadLEO   sql.NullFloat64 `db:"payload_leo"`
	PayloadGTO   sql.NullFloat64 `db:"payload_gto"`
	Height       sql.NullFloat64 `db:"height"`
	Diameter     sql.NullFloat64 `db:"diameter"`
	Mass         sql.NullFloat64 `db:"mass"`
	Stages       sql.NullInt64   `db:"stages"`
	ExternalID   sql.NullString  `db:"external_id"`
}

func toDomainRocket(row *dbRocket) *domain.Rocket {
	return &domain.Rocket{
		ID:           row.ID,
		Name:         row.Name,
		AltName:      row.AltName.String,
		Family:       row.Family.String,
		Variant:      row.Variant.String,
		Manufacturer: row.Manufacturer.String,
		Country:      row.Country.String,
		PayloadLEO:   floatPtr(row.PayloadLEO),
		PayloadGTO:   floatPtr(row.PayloadGTO),
		Height:       floatPtr(row.Height),
		Diameter:     floatPtr(row.Diameter),
		Mass:         floatPtr(row.Mass),
		Stages:       intPtr(row.Stages),
		ExternalID:   row.ExternalID.String,
	}
}

func fromDomainRocket(rocket *domain.Rocket) *dbRocket {
	return &dbRocket{
		ID:           rocket.ID,
		Name:         rocket.Name,
		AltName:      nullString(rocket.AltName),
		Family:       nullString(rocket.Family),
		Variant:      nullString(rocket.Variant),
		Manufacturer: nullString(rocket.Manufacturer),
		Country:      nullString(rocket.Country),
		PayloadLEO:   nullFloat(rocket.PayloadLEO),
		PayloadGTO:   nullFloat(rocket.PayloadGTO),
		Height:       nullFloat(rocket.Height),
		Diameter:     nullFloat(rocket.Diameter),
		Mass:         nullFloat(rocket.Mass),
		Stages:       nullInt(rocket.Stages),
		ExternalID:   nullString(rocket.ExternalID),
	}
}

// CreateRocket stores a rocket. A non-empty ExternalID marks it as externally owned.
func (repo *Repository) CreateRocket(rocket *domain.Rocket) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	row := fromDomainRocket(rocket)
	row.ID = id
	query := `INSERT INTO rockets (id, name, alt_name, family, variant, manufacturer, country,
	            payload_leo, payload_gto, height, diameter, mass, stages, external_id)
	          VALUES (:id, :name, :alt_name, :family, :variant, :manufacturer, :country,
	            :payload_leo, :payload_gto, :height, :diameter, :mass, :stages, :external_id)`

	_, err = repo.dbConn.NamedExec(query, row)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating rocket %s: %w", rocket.Name, checkErr(err))
	}
	return id, nil
}

// GetRocket retrieves a rocket by ID.
func (repo *Repository) GetRocket(id uuid.UUID) (*domain.Rocket, error) {
	var row dbRocket
	err := repo.dbConn.Get(&row, `SELECT * FROM rockets WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting rocket %s: %w", id, checkErr(err))
	}
	return toDomainRocket(&row), nil
}

// GetRockets retrieves all rockets.
func (repo *Repository) GetRockets() ([]*domain.Rocket, error) {
	return repo.selectRockets(`SELECT * FROM rockets ORDER BY name`)
}

// GetSyncedRockets retrieves every externally owned rocket.
func (repo *Repository) GetSyncedRockets() ([]*domain.Rocket, error) {
	return repo.selectRockets(`SELECT * FROM rockets WHERE external_id IS NOT NULL ORDER BY name`)
}

func (repo *Repository) selectRockets(query string) ([]*domain.Rocket, error) {
	var rows []*dbRocket
	err := repo.dbConn.Select(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("getting rockets: %w", checkErr(err))
	}

	rockets := make([]*domain.Rocket, len(rows))
	for i, row := range rows {
		rockets[i] = toDomainRocket(row)
	}
	return rockets, nil
}

// GetRocketByName retrieves a rocket by its unique name.
func (repo *Repository) GetRocketByName(name string) (*domain.Rocket, error) {
	var row dbRocket
	err := repo.dbConn.Get(&row, `SELECT * FROM rockets WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("getting rocket %s: %w", name, checkErr(err))
	}
	return toDomainRocket(&row), nil
}

// GetRocketByExternalID retrieves the rocket carrying the given external ID.
func (repo *Repository) GetRocketByExternalID(externalID string) (*domain.Rocket, error) {
	if externalID == "" {
		return nil, fmt.Errorf("getting rocket by external id: %w", domain.ErrNotFound)
	}

	var row dbRocket
	err := repo.dbConn.Get(&row, `SELECT * FROM rockets WHERE external_id = ?`, externalID)
	if err != nil {
		return nil, fmt.Errorf("getting rocket by external id %s: %w", externalID, checkErr(err))
	}
	return toDomainRocket(&row), nil
}

// UpdateRocket applies a manual edit.
func (repo *Repository) UpdateRocket(rocket *domain.Rocket) error {
	row := fromDomainRocket(rocket)
	query := `UPDATE rockets SET name = :name, alt_name = :alt_name, family = :family, variant = :variant,
	            manufacturer = :manufacturer, country = :country, payload_leo = :payload_leo,
	            payload_gto = :payload_gto, height = :height, diameter = :diameter, mass = :mass, stages = :stages
	          WHERE id = :id`

	return repo.execOne(query, row, fmt.Sprintf("updating rocket %s", rocket.ID))
}

// UpdateSyncedRocket fills in the details of an externally owned rocket. Values the
// source did not provide keep what is stored.
func (repo *Repository) UpdateSyncedRocket(id uuid.UUID, rocket *domain.Rocket) error {
	row := fromDomainRocket(rocket)
	row.ID = id
	query := `UPDATE rockets SET
	            family = COALESCE(:family, family),
	            variant = COALESCE(:variant, variant),
	            manufacturer = COALESCE(:manufacturer, manufacturer),
	            country = COALESCE(:country, country),
	            payload_leo = COALESCE(:payload_leo, payload_leo),
	            payload_gto = COALESCE(:payload_gto, payload_gto),
	            height = COALESCE(:height, height),
	            diameter = COALESCE(:diameter, diameter),
	            mass = COALESCE(:mass, mass),
	            stages = COALESCE(:stages, stages)
	          WHERE id = :id AND external_id IS NOT NULL`

	return repo.execOne(query, row, fmt.Sprintf("updating synced rocket %s", id))
}

// DeleteRocket removes a rocket.
func (repo *Repository) DeleteRocket(id uuid.UUID) error {
	return repo.deleteByID("rockets", id)
}
