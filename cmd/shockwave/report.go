package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show launch statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := loadPlanner(true)
		if err != nil {
			return err
		}
		defer planner.Close()

		stats, err := planner.Repo.GetStats()
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func printStats(w io.Writer, stats *domain.Stats) {
	fmt.Fprintln(w, titleStyle.Render("Launches"))
	fmt.Fprintln(w, field("Total", humanize.Comma(int64(stats.TotalLaunches))))
	fmt.Fprintln(w, field("Successful", humanize.Comma(int64(stats.Successful))))
	fmt.Fprintln(w, field("Failed", humanize.Comma(int64(stats.Failed))))
	fmt.Fprintln(w, field("Pending", humanize.Comma(int64(stats.Pending))))
	fmt.Fprintln(w, field("Success", fmt.Sprintf("%.1f%%", stats.SuccessRate())))
	fmt.Fprintln(w, field("Synced", humanize.Comma(int64(stats.SyncedLaunches))))
	fmt.Fprintln(w, field("Manual", humanize.Comma(int64(stats.ManualLaunches))))
	fmt.Fprintln(w, field("Re-entries", humanize.Comma(int64(stats.TotalReentries))))

	printCounts(w, "Top rockets", stats.ByRocket)
	printCounts(w, "By site", stats.BySite)
}

func printCounts(w io.Writer, title string, counts []domain.NameCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(title))
	for _, c := range counts {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			rowStyle.Width(40).Render(c.Name),
			humanize.Comma(int64(c.Count)),
		))
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync passes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		last, _ := cmd.Flags().GetString("last")

		mode := domain.SyncMode(last)
		if last != "" && !mode.Valid() {
			return fmt.Errorf("unknown sync mode %q, expected upcoming, previous, range or rockets", last)
		}

		planner, err := loadPlanner(true)
		if err != nil {
			return err
		}
		defer planner.Close()

		if last != "" {
			entry, err := planner.Repo.GetLastSync(mode.DataSource())
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No "+last+" passes recorded"))
				return nil
			}
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), []*domain.SyncLog{entry})
			return nil
		}

		entries, err := planner.Repo.GetSyncLogs(limit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

func printHistory(w io.Writer, entries []*domain.SyncLog) {
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No sync passes recorded"))
		return
	}
	for _, entry := range entries {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			rowStyle.Width(16).Render(humanize.Time(entry.SyncTime)),
			rowStyle.Width(24).Render(entry.DataSource),
			rowStyle.Width(9).Render(renderStatus(entry.Status)),
			rowStyle.Render(fmt.Sprintf("+%d ~%d -%d", entry.RecordsAdded, entry.RecordsUpdated, entry.RecordsSkipped)),
		))
		if entry.ErrorMessage != "" {
			fmt.Fprintln(w, mutedStyle.Render("    "+entry.ErrorMessage))
		}
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of passes to show, 0 for all")
	historyCmd.Flags().String("last", "", "Show only the last pass of a mode (upcoming, previous, range, rockets)")
	rootCmd.AddCommand(statsCmd, historyCmd)
}
