package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/remix-astronautics/shockwave/db"
	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Add missing columns to an outdated database",
	Long: `Bring a database written by an older version up to the current schema.

A copy of the database is taken first (shockwave.db.OLD, .OLD.1, ...). Missing
columns are added in place and pending migrations are applied. Existing rows are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := loadPlanner(false)
		if err != nil {
			return err
		}
		path := databasePath(planner)

		report, err := db.Repair(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, field("Database", path))
		fmt.Fprintln(out, field("Backup", report.Backup))
		if len(report.Added) == 0 {
			fmt.Fprintln(out, successStyle.Render("Schema is up to date"))
		} else {
			fmt.Fprintln(out, field("Added", strings.Join(report.Added, ", ")))
		}
		if len(report.Missing) > 0 {
			fmt.Fprintln(out, field("Missing", strings.Join(report.Missing, ", ")))
			fmt.Fprintln(out, warnStyle.Render("Tables are missing, run reset if commands keep failing"))
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Move the database aside and start with an empty one",
	Long: `Rename the database to a backup (shockwave.db.OLD, .OLD.1, ...) so the next
command starts with a fresh, empty database. Nothing is deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := loadPlanner(false)
		if err != nil {
			return err
		}
		path := databasePath(planner)

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirmed := false
			err := huh.NewConfirm().
				Title("Reset " + path + "?").
				Description("The current database is kept as a backup and a new empty one is used.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Reset cancelled"))
				return nil
			}
		}

		backup, err := db.Reset(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if backup == "" {
			fmt.Fprintln(out, mutedStyle.Render("No database at "+path+", nothing to reset"))
			return nil
		}
		fmt.Fprintln(out, field("Backup", backup))
		fmt.Fprintln(out, successStyle.Render("Database reset"))
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(repairCmd, resetCmd)
}
