package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/remix-astronautics/shockwave"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// launchRow is a launch with its site, rocket and status resolved to names.
type launchRow struct {
	ID          string   `csv:"id" json:"id" yaml:"id"`
	Date        string   `csv:"launch_date" json:"launch_date" yaml:"launch_date"`
	Time        string   `csv:"launch_time" json:"launch_time,omitempty" yaml:"launch_time,omitempty"`
	Mission     string   `csv:"mission_name" json:"mission_name" yaml:"mission_name"`
	Payload     string   `csv:"payload_name" json:"payload_name,omitempty" yaml:"payload_name,omitempty"`
	Rocket      string   `csv:"rocket" json:"rocket" yaml:"rocket"`
	Site        string   `csv:"site" json:"site" yaml:"site"`
	Pad         string   `csv:"launch_pad" json:"launch_pad,omitempty" yaml:"launch_pad,omitempty"`
	Status      string   `csv:"status" json:"status" yaml:"status"`
	Orbit       string   `csv:"orbit_type" json:"orbit_type,omitempty" yaml:"orbit_type,omitempty"`
	Success     *bool    `csv:"success" json:"success" yaml:"success"`
	PayloadMass *float64 `csv:"payload_mass" json:"payload_mass,omitempty" yaml:"payload_mass,omitempty"`
	DataSource  string   `csv:"data_source" json:"data_source" yaml:"data_source"`
	ExternalID  string   `csv:"external_id" json:"external_id,omitempty" yaml:"external_id,omitempty"`
	SourceURL   string   `csv:"source_url" json:"source_url,omitempty" yaml:"source_url,omitempty"`
	LastSynced  string   `csv:"last_synced" json:"last_synced,omitempty" yaml:"last_synced,omitempty"`
}

// resolver looks up site, rocket and status names once per id.
type resolver struct {
	repo     shockwave.Repository
	sites    map[uuid.UUID]*domain.LaunchSite
	rockets  map[uuid.UUID]*domain.Rocket
	statuses map[uuid.UUID]string
}

func newResolver(repo shockwave.Repository) (*resolver, error) {
	statuses, err := repo.GetStatuses()
	if err != nil {
		return nil, err
	}
	r := &resolver{
		repo:     repo,
		sites:    make(map[uuid.UUID]*domain.LaunchSite),
		rockets:  make(map[uuid.UUID]*domain.Rocket),
		statuses: make(map[uuid.UUID]string, len(statuses)),
	}
	for _, status := range statuses {
		r.statuses[status.ID] = status.Name
	}
	return r, nil
}

func (r *resolver) rows(launches []*domain.Launch) ([]launchRow, error) {
	rows := make([]launchRow, 0, len(launches))
	for _, launch := range launches {
		site, ok := r.sites[launch.SiteID]
		if !ok {
			var err error
			if site, err = r.repo.GetSite(launch.SiteID); err != nil {
				return nil, fmt.Errorf("getting site of %s: %w", launch.MissionName, err)
			}
			r.sites[launch.SiteID] = site
		}
		rocket, ok := r.rockets[launch.RocketID]
		if !ok {
			var err error
			if rocket, err = r.repo.GetRocket(launch.RocketID); err != nil {
				return nil, fmt.Errorf("getting rocket of %s: %w", launch.MissionName, err)
			}
			r.rockets[launch.RocketID] = rocket
		}

		row := launchRow{
			ID:          launch.ID.String(),
			Date:        launch.LaunchDate,
			Time:        launch.LaunchTime,
			Mission:     launch.MissionName,
			Payload:     launch.PayloadName,
			Rocket:      rocket.Name,
			Site:        site.Location,
			Pad:         site.LaunchPad,
			Status:      r.statuses[launch.StatusID],
			Orbit:       launch.OrbitType,
			Success:     launch.Success,
			PayloadMass: launch.PayloadMass,
			DataSource:  launch.DataSource,
			ExternalID:  launch.ExternalID,
			SourceURL:   launch.SourceURL,
		}
		if launch.LastSynced != nil {
			row.LastSynced = launch.LastSynced.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeLaunches encodes rows as csv, yaml or json.
func writeLaunches(w io.Writer, format string, rows []launchRow) error {
	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		enc := csvutil.NewEncoder(cw)
		if len(rows) == 0 {
			if err := enc.EncodeHeader(launchRow{}); err != nil {
				return fmt.Errorf("writing csv header: %w", err)
			}
		}
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("writing yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("writing json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q, expected csv, yaml or json", format)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export launches as csv, yaml or json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		switch format {
		case "csv", "yaml", "json":
		default:
			return fmt.Errorf("unknown format %q, expected csv, yaml or json", format)
		}

		filter, err := launchFilter(cmd)
		if err != nil {
			return err
		}

		planner, err := loadPlanner(true)
		if err != nil {
			return err
		}
		defer planner.Close()

		launches, err := planner.Repo.GetLaunches(filter)
		if err != nil {
			return err
		}
		r, err := newResolver(planner.Repo)
		if err != nil {
			return err
		}
		rows, err := r.rows(launches)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		if err := writeLaunches(w, format, rows); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d launches to %s\n", len(rows), output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "csv", "Output format: csv, yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	addFilterFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
