package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var (
	_ domain.ReentryRepository     = (*Repository)(nil)
	_ domain.ReentrySiteRepository = (*Repository)(nil)
)

// dbReentry represents a re-entry as stored in the database.
type dbReentry struct {
	ID               uuid.UUID      `db:"id"`
	LaunchID         sql.NullString `db:"launch_id"`
	ReentryDate      string         `db:"reentry_date"`
	ReentryTime      sql.NullString `db:"reentry_time"`
	SiteID           uuid.UUID      `db:"site_id"`
	VehicleComponent sql.NullString `db:"vehicle_component"`
	ReentryType      sql.NullString `db:"reentry_type"`
	StatusID         uuid.UUID      `db:"status_id"`
	Remarks          sql.NullString `db:"remarks"`
	DataSource       string         `db:"data_source"`
	ExternalID       sql.NullString `db:"external_id"`
}

func toDomainReentry(row *dbReentry) *domain.Reentry {
	reentry := &domain.Reentry{
		ID:               row.ID,
		ReentryDate:      row.ReentryDate,
		ReentryTime:      row.ReentryTime.String,
		SiteID:           row.SiteID,
		VehicleComponent: row.VehicleComponent.String,
		ReentryType:      row.ReentryType.String,
		StatusID:         row.StatusID,
		Remarks:          row.Remarks.String,
		DataSource:       row.DataSource,
		ExternalID:       row.ExternalID.String,
	}

	if row.LaunchID.Valid {
		if id, err := uuid.Parse(row.LaunchID.String); err == nil {
			reentry.LaunchID = &id
		}
	}
	return reentry
}

func fromDomainReentry(reentry *domain.Reentry) *dbReentry {
	row := &dbReentry{
		ID:               reentry.ID,
		ReentryDate:      reentry.ReentryDate,
		ReentryTime:      nullString(reentry.ReentryTime),
		SiteID:           reentry.SiteID,
		VehicleComponent: nullString(reentry.VehicleComponent),
		ReentryType:      nullString(reentry.ReentryType),
		StatusID:         reentry.StatusID,
		Remarks:          nullString(reentry.Remarks),
		DataSource:       reentry.DataSource,
		ExternalID:       nullString(reentry.ExternalID),
	}

	if reentry.LaunchID != nil {
		row.LaunchID = sql.NullString{String: reentry.LaunchID.String(), Valid: true}
	}
	if row.DataSource == "" {
		row.DataSource = domain.DataSourceManual
		if row.ExternalID.Valid {
			row.DataSource = domain.DataSourceSpaceDevs
		}
	}
	return row
}

// CreateReentry stores a re-entry event.
func (repo *Repository) CreateReentry(reentry *domain.Reentry) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	row := fromDomainReentry(reentry)
	row.ID = id
	query := `INSERT INTO reentries (id, launch_id, reentry_date, reentry_time, site_id, vehicle_component,
	            reentry_type, status_id, remarks, data_source, external_id)
	          VALUES (:id, :launch_id, :reentry_date, :reentry_time, :site_id, :vehicle_component,
	            :reentry_type, :status_id, :remarks, :data_source, :external_id)`

	_, err = repo.dbConn.NamedExec(query, row)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating reentry: %w", checkErr(err))
	}
	return id, nil
}

// GetReentry retrieves a re-entry by ID.
func (repo *Repository) GetReentry(id uuid.UUID) (*domain.Reentry, error) {
	var row dbReentry
	err := repo.dbConn.Get(&row, `SELECT * FROM reentries WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting reentry %s: %w", id, checkErr(err))
	}
	return toDomainReentry(&row), nil
}

// GetReentries retrieves re-entries within the optional date bounds.
func (repo *Repository) GetReentries(from, to string) ([]*domain.Reentry, error) {
	var (
		conditions []string
		args       []any
	)
	if from != "" {
		conditions = append(conditions, "reentry_date >= ?")
		args = append(args, from)
	}
	if to != "" {
		conditions = append(conditions, "reentry_date <= ?")
		args = append(args, to)
	}

	query := `SELECT * FROM reentries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY reentry_date, reentry_time"

	var rows []*dbReentry
	err := repo.dbConn.Select(&rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting reentries: %w", checkErr(err))
	}

	reentries := make([]*domain.Reentry, len(rows))
	for i, row := range rows {
		reentries[i] = toDomainReentry(row)
	}
	return reentries, nil
}

// UpdateReentry applies a manual edit.
func (repo *Repository) UpdateReentry(reentry *domain.Reentry) error {
	row := fromDomainReentry(reentry)
	query := `UPDATE reentries SET launch_id = :launch_id, reentry_date = :reentry_date, reentry_time = :reentry_time,
	            site_id = :site_id, vehicle_component = :vehicle_component, reentry_type = :reentry_type,
	            status_id = :status_id, remarks = :remarks
	          WHERE id = :id`

	return repo.execOne(query, row, fmt.Sprintf("updating reentry %s", reentry.ID))
}

// DeleteReentry removes a re-entry.
func (repo *Repository) DeleteReentry(id uuid.UUID) error {
	return repo.deleteByID("reentries", id)
}

// CountReentries returns the number of stored re-entries.
func (repo *Repository) CountReentries() (int, error) {
	var count int
	err := repo.dbConn.Get(&count, `SELECT COUNT(*) FROM reentries`)
	if err != nil {
		return 0, fmt.Errorf("getting reentry count: %w", checkErr(err))
	}
	return count, nil
}

// dbReentrySite represents a drop zone as stored in the database.
type dbReentrySite struct {
	ID             uuid.UUID       `db:"id"`
	Location       string          `db:"location"`
	DropZone       string          `db:"drop_zone"`
	Latitude       sql.NullFloat64 `db:"latitude"`
	Longitude      sql.NullFloat64 `db:"longitude"`
	Country        sql.NullString  `db:"country"`
	ZoneType       sql.NullString  `db:"zone_type"`
	ExternalID     sql.NullString  `db:"external_id"`
	TurnaroundDays int             `db:"turnaround_days"`
}

func toDomainReentrySite(row *dbReentrySite) *domain.ReentrySite {
	return &domain.ReentrySite{
		ID:             row.ID,
		Location:       row.Location,
		DropZone:       row.DropZone,
		Latitude:       floatPtr(row.Latitude),
		Longitude:      floatPtr(row.Longitude),
		Country:        row.Country.String,
		ZoneType:       row.ZoneType.String,
		ExternalID:     row.ExternalID.String,
		TurnaroundDays: row.TurnaroundDays,
	}
}

func fromDomainReentrySite(site *domain.ReentrySite) *dbReentrySite {
	row := &dbReentrySite{
		ID:             site.ID,
		Location:       site.Location,
		DropZone:       site.DropZone,
		Latitude:       nullFloat(site.Latitude),
		Longitude:      nullFloat(site.Longitude),
		Country:        nullString(site.Country),
		ZoneType:       nullString(site.ZoneType),
		ExternalID:     nullString(site.ExternalID),
		TurnaroundDays: site.TurnaroundDays,
	}
	if row.TurnaroundDays == 0 {
		row.TurnaroundDays = 7
	}
	return row
}

// CreateReentrySite stores a drop zone.
func (repo *Repository) CreateReentrySite(site *domain.ReentrySite) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	row := fromDomainReentrySite(site)
	row.ID = id
	query := `INSERT INTO reentry_sites (id, location, drop_zone, latitude, longitude, country, zone_type, external_id, turnaround_days)
	          VALUES (:id, :location, :drop_zone, :latitude, :longitude, :country, :zone_type, :external_id, :turnaround_days)`

	_, err = repo.dbConn.NamedExec(query, row)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating reentry site %s / %s: %w", site.Location, site.DropZone, checkErr(err))
	}
	return id, nil
}

// GetReentrySite retrieves a drop zone by ID.
func (repo *Repository) GetReentrySite(id uuid.UUID) (*domain.ReentrySite, error) {
	var row dbReentrySite
	err := repo.dbConn.Get(&row, `SELECT * FROM reentry_sites WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting reentry site %s: %w", id, checkErr(err))
	}
	return toDomainReentrySite(&row), nil
}

// GetReentrySites retrieves all drop zones.
func (repo *Repository) GetReentrySites() ([]*domain.ReentrySite, error) {
	var rows []*dbReentrySite
	err := repo.dbConn.Select(&rows, `SELECT * FROM reentry_sites ORDER BY location, drop_zone`)
	if err != nil {
		return nil, fmt.Errorf("getting reentry sites: %w", checkErr(err))
	}

	sites := make([]*domain.ReentrySite, len(rows))
	for i, row := range rows {
		sites[i] = toDomainReentrySite(row)
	}
	return sites, nil
}

// UpdateReentrySite applies a manual edit.
func (repo *Repository) UpdateReentrySite(site *domain.ReentrySite) error {
	row := fromDomainReentrySite(site)
	query := `UPDATE reentry_sites SET location = :location, drop_zone = :drop_zone, latitude = :latitude,
	            longitude = :longitude, country = :country, zone_type = :zone_type, turnaround_days = :turnaround_days
	          WHERE id = :id`

	return repo.execOne(query, row, fmt.Sprintf("updating reentry site %s", site.ID))
}

// DeleteReentrySite removes a drop zone.
func (repo *Repository) DeleteReentrySite(id uuid.UUID) error {
	return repo.deleteByID("reentry_sites", id)
}
