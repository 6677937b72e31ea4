package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.LaunchRepository = (*Repository)(nil)

// dbLaunch represents a launch as stored in the database.
type dbLaunch struct {
	ID             uuid.UUID       `db:"id"`
	LaunchDate     string          `db:"launch_date"`
	LaunchTime     sql.NullString  `db:"launch_time"`
	WindowStart    sql.NullTime    `db:"launch_window_start"`
	WindowEnd      sql.NullTime    `db:"launch_window_end"`
	SiteID         uuid.UUID       `db:"site_id"`
	RocketID       uuid.UUID       `db:"rocket_id"`
	StatusID       uuid.UUID       `db:"status_id"`
	MissionName    sql.NullString  `db:"mission_name"`
	PayloadName    sql.NullString  `db:"payload_name"`
	PayloadMass    sql.NullFloat64 `db:"payload_mass"`
	OrbitType      sql.NullString  `db:"orbit_type"`
	OrbitAltitude  sql.NullFloat64 `db:"orbit_altitude"`
	Inclination    sql.NullFloat64 `db:"inclination"`
	Success        sql.NullBool    `db:"success"`
	FailureReason  sql.NullString  `db:"failure_reason"`
	Remarks        sql.NullString  `db:"remarks"`
	SourceURL      sql.NullString  `db:"source_url"`
	NotamReference sql.NullString  `db:"notam_reference"`
	DataSource     string          `db:"data_source"`
	ExternalID     sql.NullString  `db:"external_id"`
	LastUpdated    sql.NullTime    `db:"last_updated"`
	LastSynced     sql.NullTime    `db:"last_synced"`
}

const launchColumns = `l.id, l.launch_date, l.launch_time, l.launch_window_start, l.launch_window_end,
	l.site_id, l.rocket_id, l.status_id, l.mission_name, l.payload_name, l.payload_mass, l.orbit_type,
	l.orbit_altitude, l.inclination, l.success, l.failure_reason, l.remarks, l.source_url,
	l.notam_reference, l.data_source, l.external_id, l.last_updated, l.last_synced`

// toDomainLaunch converts a dbLaunch to a domain.Launch.
func toDomainLaunch(dbLaunch *dbLaunch) *domain.Launch {
	return &domain.Launch{
		ID:             dbLaunch.ID,
		LaunchDate:     dbLaunch.LaunchDate,
		LaunchTime:     dbLaunch.LaunchTime.String,
		WindowStart:    timePtr(dbLaunch.WindowStart),
		WindowEnd:      timePtr(dbLaunch.WindowEnd),
		SiteID:         dbLaunch.SiteID,
		RocketID:       dbLaunch.RocketID,
		StatusID:       dbLaunch.StatusID,
		MissionName:    dbLaunch.MissionName.String,
		PayloadName:    dbLaunch.PayloadName.String,
		PayloadMass:    floatPtr(dbLaunch.PayloadMass),
		OrbitType:      dbLaunch.OrbitType.String,
		OrbitAltitude:  floatPtr(dbLaunch.OrbitAltitude),
		Inclination:    floatPtr(dbLaunch.Inclination),
		Success:        boolPtr(dbLaunch.Success),
		FailureReason:  dbLaunch.FailureReason.String,
		Remarks:        dbLaunch.Remarks.String,
		SourceURL:      dbLaunch.SourceURL.String,
		NotamReference: dbLaunch.NotamReference.String,
		DataSource:     dbLaunch.DataSource,
		ExternalID:     dbLaunch.ExternalID.String,
		LastUpdated:    timePtr(dbLaunch.LastUpdated),
		LastSynced:     timePtr(dbLaunch.LastSynced),
	}
}

// fromDomainLaunch converts a domain.Launch to a dbLaunch.
func fromDomainLaunch(launch *domain.Launch) *dbLaunch {
	return &dbLaunch{
		ID:             launch.ID,
		LaunchDate:     launch.LaunchDate,
		LaunchTime:     nullString(launch.LaunchTime),
		WindowStart:    nullTime(launch.WindowStart),
		WindowEnd:      nullTime(launch.WindowEnd),
		SiteID:         launch.SiteID,
		RocketID:       launch.RocketID,
		StatusID:       launch.StatusID,
		MissionName:    nullString(launch.MissionName),
		PayloadName:    nullString(launch.PayloadName),
		PayloadMass:    nullFloat(launch.PayloadMass),
		OrbitType:      nullString(launch.OrbitType),
		OrbitAltitude:  nullFloat(launch.OrbitAltitude),
		Inclination:    nullFloat(launch.Inclination),
		Success:        nullBool(launch.Success),
		FailureReason:  nullString(launch.FailureReason),
		Remarks:        nullString(launch.Remarks),
		SourceURL:      nullString(launch.SourceURL),
		NotamReference: nullString(launch.NotamReference),
		DataSource:     launch.DataSource,
		ExternalID:     nullString(launch.ExternalID),
		LastUpdated:    nullTime(launch.LastUpdated),
		LastSynced:     nullTime(launch.LastSynced),
	}
}

func (repo *Repository) insertLaunch(launch *dbLaunch) error {
	query := `INSERT INTO launches (id, launch_date, launch_time, launch_window_start, launch_window_end,
	            site_id, rocket_id, status_id, mission_name, payload_name, payload_mass, orbit_type,
	            orbit_altitude, inclination, success, failure_reason, remarks, source_url,
	            notam_reference, data_source, external_id, last_updated, last_synced)
	          VALUES (:id, :launch_date, :launch_time, :launch_window_start, :launch_window_end,
	            :site_id, :rocket_id, :status_id, :mission_name, :payload_name, :payload_mass, :orbit_type,
	            :orbit_altitude, :inclination, :success, :failure_reason, :remarks, :source_url,
	            :notam_reference, :data_source, :external_id, :last_updated, :last_synced)`

	_, err := repo.dbConn.NamedExec(query, launch)
	return checkErr(err)
}

// CreateLaunch stores a manually entered launch.
func (repo *Repository) CreateLaunch(launch *domain.Launch) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	now := time.Now().UTC()
	row := fromDomainLaunch(launch)
	row.ID = id
	row.DataSource = domain.DataSourceManual
	row.ExternalID = sql.NullString{}
	row.LastUpdated = sql.NullTime{Time: now, Valid: true}
	row.LastSynced = sql.NullTime{}

	if err := repo.insertLaunch(row); err != nil {
		return uuid.Nil, fmt.Errorf("creating launch %q: %w", launch.MissionName, err)
	}
	return id, nil
}

// GetLaunch retrieves a launch by ID.
func (repo *Repository) GetLaunch(id uuid.UUID) (*domain.Launch, error) {
	var row dbLaunch
	query := `SELECT ` + launchColumns + ` FROM launches l WHERE l.id = ?`

	err := repo.dbConn.Get(&row, query, id)
	if err != nil {
		return nil, fmt.Errorf("getting launch %s: %w", id, checkErr(err))
	}
	return toDomainLaunch(&row), nil
}

// GetLaunches retrieves launches matching the filter.
func (repo *Repository) GetLaunches(filter domain.LaunchFilter) ([]*domain.Launch, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.From != "" {
		conditions = append(conditions, "l.launch_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conditions = append(conditions, "l.launch_date <= ?")
		args = append(args, filter.To)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions,
			"(l.mission_name LIKE ? OR l.payload_name LIKE ? OR s.location LIKE ? OR r.name LIKE ?)")
		args = append(args, pattern, pattern, pattern, pattern)
	}

	query := `SELECT ` + launchColumns + ` FROM launches l
	          JOIN launch_sites s ON s.id = l.site_id
	          JOIN rockets r ON r.id = l.rocket_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY l.launch_date, l.launch_time, l.id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []*dbLaunch
	err := repo.dbConn.Select(&rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting launches: %w", checkErr(err))
	}

	launches := make([]*domain.Launch, len(rows))
	for i, row := range rows {
		launches[i] = toDomainLaunch(row)
	}
	return launches, nil
}

// UpdateLaunch applies a manual edit. Provenance columns are not changed.
func (repo *Repository) UpdateLaunch(launch *domain.Launch) error {
	row := fromDomainLaunch(launch)
	row.LastUpdated = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	query := `UPDATE launches SET
	            launch_date = :launch_date, launch_time = :launch_time,
	            launch_window_start = :launch_window_start, launch_window_end = :launch_window_end,
	            site_id = :site_id, rocket_id = :rocket_id, status_id = :status_id,
	            mission_name = :mission_name, payload_name = :payload_name, payload_mass = :payload_mass,
	            orbit_type = :orbit_type, orbit_altitude = :orbit_altitude, inclination = :inclination,
	            success = :success, failure_reason = :failure_reason, remarks = :remarks,
	            source_url = :source_url, notam_reference = :notam_reference, last_updated = :last_updated
	          WHERE id = :id`

	result, err := repo.dbConn.NamedExec(query, row)
	if err != nil {
		return fmt.Errorf("updating launch %s: %w", launch.ID, checkErr(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("updating launch %s: %w", launch.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteLaunch removes a launch from the database.
func (repo *Repository) DeleteLaunch(id uuid.UUID) error {
	query := `DELETE FROM launches WHERE id = ?`

	result, err := repo.dbConn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("deleting launch %s: %w", id, checkErr(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("deleting launch %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetLaunchByExternalID retrieves the launch carrying the given external ID.
// An empty ID never matches, so manual rows cannot be returned.
func (repo *Repository) GetLaunchByExternalID(externalID string) (*domain.Launch, error) {
	if externalID == "" {
		return nil, fmt.Errorf("getting launch by external id: %w", domain.ErrNotFound)
	}

	var row dbLaunch
	query := `SELECT ` + launchColumns + ` FROM launches l WHERE l.external_id = ?`

	err := repo.dbConn.Get(&row, query, externalID)
	if err != nil {
		return nil, fmt.Errorf("getting launch by external id %s: %w", externalID, checkErr(err))
	}
	return toDomainLaunch(&row), nil
}

// InsertSyncedLaunch stores an externally sourced launch.
func (repo *Repository) InsertSyncedLaunch(launch *domain.Launch) (uuid.UUID, error) {
	if launch.ExternalID == "" {
		return uuid.Nil, errors.New("inserting synced launch: missing external id")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	now := time.Now().UTC()
	row := fromDomainLaunch(launch)
	row.ID = id
	row.DataSource = domain.DataSourceSpaceDevs
	row.LastUpdated = sql.NullTime{Time: now, Valid: true}
	row.LastSynced = sql.NullTime{Time: now, Valid: true}

	if err := repo.insertLaunch(row); err != nil {
		return uuid.Nil, fmt.Errorf("inserting synced launch %s: %w", launch.ExternalID, err)
	}
	return id, nil
}

// UpdateSyncedLaunch overwrites the source-provided fields of an externally owned launch.
// Fields the source never provides (payload mass, orbit altitude, inclination, failure reason,
// NOTAM reference) keep their locally entered values. last_updated only moves when a field
// actually changes; last_synced always moves.
func (repo *Repository) UpdateSyncedLaunch(id uuid.UUID, launch *domain.Launch) error {
	row := fromDomainLaunch(launch)
	row.ID = id
	row.LastSynced = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	query := `UPDATE launches SET
	            last_updated = CASE WHEN
	                launch_date IS NOT :launch_date OR launch_time IS NOT :launch_time OR
	                launch_window_start IS NOT :launch_window_start OR launch_window_end IS NOT :launch_window_end OR
	                site_id IS NOT :site_id OR rocket_id IS NOT :rocket_id OR status_id IS NOT :status_id OR
	                mission_name IS NOT :mission_name OR payload_name IS NOT :payload_name OR
	                orbit_type IS NOT :orbit_type OR success IS NOT :success OR
	                remarks IS NOT :remarks OR source_url IS NOT :source_url
	              THEN :last_synced ELSE last_updated END,
	            launch_date = :launch_date, launch_time = :launch_time,
	            launch_window_start = :launch_window_start, launch_window_end = :launch_window_end,
	            site_id = :site_id, rocket_id = :rocket_id, status_id = :status_id,
	            mission_name = :mission_name, payload_name = :payload_name, orbit_type = :orbit_type,
	            success = :success, remarks = :remarks, source_url = :source_url,
	            data_source = 'SPACE_DEVS', last_synced = :last_synced
	          WHERE id = :id AND external_id IS NOT NULL`

	result, err := repo.dbConn.NamedExec(query, row)
	if err != nil {
		return fmt.Errorf("updating synced launch %s: %w", id, checkErr(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no synced launch with id %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountLaunches returns the number of stored launches.
func (repo *Repository) CountLaunches() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM launches`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting launch count: %w", checkErr(err))
	}
	return count, nil
}
