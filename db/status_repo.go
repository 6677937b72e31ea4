package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.StatusRepository = (*Repository)(nil)

// dbStatus represents a launch status as stored in the database.
type dbStatus struct {
	ID          uuid.UUID      `db:"id"`
	Name        string         `db:"name"`
	Abbr        sql.NullString `db:"abbr"`
	Colour      sql.NullString `db:"colour"`
	Description sql.NullString `db:"description"`
}

func toDomainStatus(row *dbStatus) *domain.LaunchStatus {
	return &domain.LaunchStatus{
		ID:          row.ID,
		Name:        row.Name,
		Abbr:        row.Abbr.String,
		Colour:      row.Colour.String,
		Description: row.Description.String,
	}
}

// GetStatuses retrieves all launch statuses.
func (repo *Repository) GetStatuses() ([]*domain.LaunchStatus, error) {
	var rows []*dbStatus
	err := repo.dbConn.Select(&rows, `SELECT * FROM launch_status ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("getting statuses: %w", checkErr(err))
	}

	statuses := make([]*domain.LaunchStatus, len(rows))
	for i, row := range rows {
		statuses[i] = toDomainStatus(row)
	}
	return statuses, nil
}

// GetStatusByName retrieves a status by name.
func (repo *Repository) GetStatusByName(name string) (*domain.LaunchStatus, error) {
	var row dbStatus
	err := repo.dbConn.Get(&row, `SELECT * FROM launch_status WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("getting status %s: %w", name, checkErr(err))
	}
	return toDomainStatus(&row), nil
}
