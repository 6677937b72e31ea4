package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/spf13/cobra"
)

var launchesCmd = &cobra.Command{
	Use:   "launches [search]",
	Short: "List or search stored launches",
	Long: `List launches stored in the local database, ordered by date.

The optional search text is matched against mission, payload, site and rocket names.
With --remote the search runs against Space Devs instead and nothing is stored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := launchFilter(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			filter.Search = args[0]
		}
		remote, _ := cmd.Flags().GetBool("remote")

		planner, err := loadPlanner(true)
		if err != nil {
			return err
		}
		defer planner.Close()

		out := cmd.OutOrStdout()
		if remote {
			if filter.Search == "" {
				return fmt.Errorf("--remote needs search text")
			}
			launches, err := planner.Search(cmd.Context(), filter.Search, filter.Limit)
			if err != nil {
				return err
			}
			printRemoteLaunches(out, launches)
			return nil
		}

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
		printLaunches(out, rows)
		return nil
	},
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "First launch date (YYYY-MM-DD or e.g. \"yesterday\")")
	cmd.Flags().String("to", "", "Last launch date (YYYY-MM-DD or e.g. \"in 2 weeks\")")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of launches")
}

func launchFilter(cmd *cobra.Command) (domain.LaunchFilter, error) {
	var filter domain.LaunchFilter
	now := time.Now()
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		date, err := parseDate(from, now)
		if err != nil {
			return filter, err
		}
		filter.From = date
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		date, err := parseDate(to, now)
		if err != nil {
			return filter, err
		}
		filter.To = date
	}
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	return filter, nil
}

var rowStyle = lipgloss.NewStyle().PaddingRight(2).MaxHeight(1)

func printLaunches(w io.Writer, rows []launchRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No launches found"))
		return
	}
	for _, row := range rows {
		date := row.Date
		if row.Time != "" {
			date += " " + row.Time
		}
		source := ""
		if row.ExternalID == "" {
			source = mutedStyle.Render("(manual)")
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			rowStyle.Width(21).Render(date),
			rowStyle.Width(36).Render(row.Mission),
			rowStyle.Width(24).Render(row.Rocket),
			rowStyle.Width(16).Render(row.Status),
			source,
		))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d launches", len(rows))))
}

func printRemoteLaunches(w io.Writer, launches []*domain.SyncedLaunch) {
	if len(launches) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No launches found"))
		return
	}
	for _, launch := range launches {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			rowStyle.Width(12).Render(launch.LaunchDate),
			rowStyle.Width(36).Render(launch.MissionName),
			rowStyle.Width(24).Render(launch.Rocket.Name),
			rowStyle.Width(16).Render(launch.StatusName),
			mutedStyle.Render(launch.ExternalID),
		))
	}
}

func init() {
	addFilterFlags(launchesCmd)
	launchesCmd.Flags().Bool("remote", false, "Search Space Devs instead of the local database")
	rootCmd.AddCommand(launchesCmd)
}
