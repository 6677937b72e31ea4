package db

import (
	"fmt"

	"github.com/remix-astronautics/shockwave/domain"
)

var _ domain.StatsRepository = (*Repository)(nil)

// GetStats computes the launch overview.
// Launches count as pending while their outcome is unknown.
func (repo *Repository) GetStats() (*domain.Stats, error) {
	stats := &domain.Stats{}

	var totals struct {
		Total      int `db:"total"`
		Successful int `db:"successful"`
		Failed     int `db:"failed"`
		Manual     int `db:"manual"`
	}
	query := `SELECT
	            COUNT(*) AS total,
	            COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) AS successful,
	            COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) AS failed,
	            COALESCE(SUM(CASE WHEN external_id IS NULL THEN 1 ELSE 0 END), 0) AS manual
	          FROM launches`

	err := repo.dbConn.Get(&totals, query)
	if err != nil {
		return nil, fmt.Errorf("getting launch totals: %w", checkErr(err))
	}
	stats.TotalLaunches = totals.Total
	stats.Successful = totals.Successful
	stats.Failed = totals.Failed
	stats.Pending = totals.Total - totals.Successful - totals.Failed
	stats.ManualLaunches = totals.Manual
	stats.SyncedLaunches = totals.Total - totals.Manual

	stats.TotalReentries, err = repo.CountReentries()
	if err != nil {
		return nil, err
	}

	query = `SELECT r.name AS name, COUNT(*) AS count
	         FROM launches l JOIN rockets r ON r.id = l.rocket_id
	         GROUP BY r.id ORDER BY count DESC, r.name LIMIT 10`
	err = repo.dbConn.Select(&stats.ByRocket, query)
	if err != nil {
		return nil, fmt.Errorf("getting launches by rocket: %w", checkErr(err))
	}

	query = `SELECT s.location AS name, COUNT(*) AS count
	         FROM launches l JOIN launch_sites s ON s.id = l.site_id
	         GROUP BY s.location ORDER BY count DESC, s.location`
	err = repo.dbConn.Select(&stats.BySite, query)
	if err != nil {
		return nil, fmt.Errorf("getting launches by site: %w", checkErr(err))
	}

	return stats, nil
}
