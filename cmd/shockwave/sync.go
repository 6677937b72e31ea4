package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/remix-astronautics/shockwave"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync launches from Space Devs into the local database",
	Long: `Fetch launches from the Space Devs Launch Library and merge them into the local database.

Records already known by their Space Devs id are updated in place, new ones are added.
Launches entered by hand are never modified.

Examples:
  shockwave sync upcoming            # next 100 launches
  shockwave sync previous 20         # last 20 launches
  shockwave sync range 2025-01-01 2025-03-31
  shockwave sync range "3 days ago" today
  shockwave sync rockets             # refresh launcher details`,
}

var syncUpcomingCmd = &cobra.Command{
	Use:   "upcoming [limit]",
	Short: "Sync upcoming launches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := parseLimit(args)
		if err != nil {
			return err
		}
		return runSync(cmd, domain.SyncRequest{Mode: domain.SyncUpcoming, Limit: limit})
	},
}

var syncPreviousCmd = &cobra.Command{
	Use:   "previous [limit]",
	Short: "Sync past launches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := parseLimit(args)
		if err != nil {
			return err
		}
		return runSync(cmd, domain.SyncRequest{Mode: domain.SyncPrevious, Limit: limit})
	},
}

var syncRangeCmd = &cobra.Command{
	Use:   "range START END",
	Short: "Sync launches between two dates, both UTC days included",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		start, err := parseDate(args[0], now)
		if err != nil {
			return err
		}
		end, err := parseDate(args[1], now)
		if err != nil {
			return err
		}
		return runSync(cmd, domain.SyncRequest{Mode: domain.SyncRange, Start: start, End: end})
	},
}

var syncRocketsCmd = &cobra.Command{
	Use:   "rockets",
	Short: "Refresh launcher details of synced rockets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, domain.SyncRequest{Mode: domain.SyncRockets})
	},
}

// parseLimit reads the optional record count. 0 means the configured default.
func parseLimit(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive number, got %q", args[0])
	}
	return limit, nil
}

func runSync(cmd *cobra.Command, req domain.SyncRequest) error {
	out := cmd.OutOrStdout()
	planner, err := loadPlanner(true, shockwave.WithProgressHandler(func(message string) {
		fmt.Fprintln(out, mutedStyle.Render(message))
	}))
	if err != nil {
		return err
	}
	defer planner.Close()

	result, err := planner.Sync(cmd.Context(), req)
	if result != nil {
		printSyncResult(out, result)
	}
	return err
}

func printSyncResult(w io.Writer, result *domain.SyncResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Sync "+string(result.Mode))+" "+renderStatus(result.Status))
	fmt.Fprintln(w, field("Added", result.Added))
	fmt.Fprintln(w, field("Updated", result.Updated))
	fmt.Fprintln(w, field("Skipped", result.Skipped))
	fmt.Fprintln(w, field("Errors", len(result.Errors)))
	fmt.Fprintln(w, field("Processed", result.Processed))
	for _, msg := range result.Errors {
		fmt.Fprintln(w, errorStyle.Render("  ! ")+msg)
	}
}

func init() {
	syncCmd.AddCommand(syncUpcomingCmd, syncPreviousCmd, syncRangeCmd, syncRocketsCmd)
	rootCmd.AddCommand(syncCmd)
}
