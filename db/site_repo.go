package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.LaunchSiteRepository = (*Repository)(nil)

// dbLaunchSite represents a launch site as stored in the database.
type dbLaunchSite struct {
	ID             uuid.UUID       `db:"id"`
	Location       string          `db:"location"`
	LaunchPad      string          `db:"launch_pad"`
	Latitude       sql.NullFloat64 `db:"latitude"`
	Longitude      sql.NullFloat64 `db:"longitude"`
	Country        sql.NullString  `db:"country"`
	SiteType       string          `db:"site_type"`
	ExternalID     sql.NullString  `db:"external_id"`
	TurnaroundDays int             `db:"turnaround_days"`
}

func toDomainSite(row *dbLaunchSite) *domain.LaunchSite {
	return &domain.LaunchSite{
		ID:             row.ID,
		Location:       row.Location,
		LaunchPad:      row.LaunchPad,
		Latitude:       floatPtr(row.Latitude),
		Longitude:      floatPtr(row.Longitude),
		Country:        row.Country.String,
		SiteType:       row.SiteType,
		ExternalID:     row.ExternalID.String,
		TurnaroundDays: row.TurnaroundDays,
	}
}

func fromDomainSite(site *domain.LaunchSite) *dbLaunchSite {
	row := &dbLaunchSite{
		ID:             site.ID,
		Location:       site.Location,
		LaunchPad:      site.LaunchPad,
		Latitude:       nullFloat(site.Latitude),
		Longitude:      nullFloat(site.Longitude),
		Country:        nullString(site.Country),
		SiteType:       site.SiteType,
		ExternalID:     nullString(site.ExternalID),
		TurnaroundDays: site.TurnaroundDays,
	}
	if row.SiteType == "" {
		row.SiteType = "LAUNCH"
	}
	if row.TurnaroundDays == 0 {
		row.TurnaroundDays = 7
	}
	return row
}

// CreateSite stores a launch site. A non-empty ExternalID marks it as externally owned.
func (repo *Repository) CreateSite(site *domain.LaunchSite) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	row := fromDomainSite(site)
	row.ID = id
	query := `INSERT INTO launch_sites (id, location, launch_pad, latitude, longitude, country, site_type, external_id, turnaround_days)
	          VALUES (:id, :location, :launch_pad, :latitude, :longitude, :country, :site_type, :external_id, :turnaround_days)`

	_, err = repo.dbConn.NamedExec(query, row)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating site %s / %s: %w", site.Location, site.LaunchPad, checkErr(err))
	}
	return id, nil
}

// GetSite retrieves a launch site by ID.
func (repo *Repository) GetSite(id uuid.UUID) (*domain.LaunchSite, error) {
	var row dbLaunchSite
	err := repo.dbConn.Get(&row, `SELECT * FROM launch_sites WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting site %s: %w", id, checkErr(err))
	}
	return toDomainSite(&row), nil
}

// GetSites retrieves all launch sites.
func (repo *Repository) GetSites() ([]*domain.LaunchSite, error) {
	var rows []*dbLaunchSite
	err := repo.dbConn.Select(&rows, `SELECT * FROM launch_sites ORDER BY location, launch_pad`)
	if err != nil {
		return nil, fmt.Errorf("getting sites: %w", checkErr(err))
	}

	sites := make([]*domain.LaunchSite, len(rows))
	for i, row := range rows {
		sites[i] = toDomainSite(row)
	}
	return sites, nil
}

// FindSite retrieves the site with the given location and pad.
func (repo *Repository) FindSite(location, launchPad string) (*domain.LaunchSite, error) {
	var row dbLaunchSite
	err := repo.dbConn.Get(&row, `SELECT * FROM launch_sites WHERE location = ? AND launch_pad = ?`, location, launchPad)
	if err != nil {
		return nil, fmt.Errorf("finding site %s / %s: %w", location, launchPad, checkErr(err))
	}
	return toDomainSite(&row), nil
}

// GetSiteByExternalID retrieves the site carrying the given external ID.
func (repo *Repository) GetSiteByExternalID(externalID string) (*domain.LaunchSite, error) {
	if externalID == "" {
		return nil, fmt.Errorf("getting site by external id: %w", domain.ErrNotFound)
	}

	var row dbLaunchSite
	err := repo.dbConn.Get(&row, `SELECT * FROM launch_sites WHERE external_id = ?`, externalID)
	if err != nil {
		return nil, fmt.Errorf("getting site by external id %s: %w", externalID, checkErr(err))
	}
	return toDomainSite(&row), nil
}

// UpdateSite applies a manual edit.
func (repo *Repository) UpdateSite(site *domain.LaunchSite) error {
	row := fromDomainSite(site)
	query := `UPDATE launch_sites SET location = :location, launch_pad = :launch_pad, latitude = :latitude,
	            longitude = :longitude, country = :country, site_type = :site_type, turnaround_days = :turnaround_days
	          WHERE id = :id`

	return repo.execOne(query, row, fmt.Sprintf("updating site %s", site.ID))
}

// UpdateSyncedSite refreshes the coordinates and country of an externally owned site.
func (repo *Repository) UpdateSyncedSite(id uuid.UUID, site *domain.LaunchSite) error {
	row := fromDomainSite(site)
	row.ID = id
	query := `UPDATE launch_sites SET
	            latitude = COALESCE(:latitude, latitude),
	            longitude = COALESCE(:longitude, longitude),
	            country = COALESCE(:country, country)
	          WHERE id = :id AND external_id IS NOT NULL`

	return repo.execOne(query, row, fmt.Sprintf("updating synced site %s", id))
}

// DeleteSite removes a launch site.
func (repo *Repository) DeleteSite(id uuid.UUID) error {
	return repo.deleteByID("launch_sites", id)
}

// execOne runs a named statement that must affect exactly one row.
func (repo *Repository) execOne(query string, arg any, action string) error {
	result, err := repo.dbConn.NamedExec(query, arg)
	if err != nil {
		return fmt.Errorf("%s: %w", action, checkErr(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", action, domain.ErrNotFound)
	}
	return nil
}

// deleteByID removes the row with the given ID from table.
func (repo *Repository) deleteByID(table string, id uuid.UUID) error {
	result, err := repo.dbConn.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", table, id, checkErr(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("deleting %s %s: %w", table, id, domain.ErrNotFound)
	}
	return nil
}
