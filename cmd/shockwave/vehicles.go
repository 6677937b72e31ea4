package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/spf13/cobra"
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "List re-entry vehicles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := loadPlanner(true)
		if err != nil {
			return err
		}
		defer planner.Close()

		vehicles, err := planner.Repo.GetReentryVehicles()
		if err != nil {
			return err
		}
		printVehicles(cmd.OutOrStdout(), vehicles)
		return nil
	},
}

var vehiclesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a re-entry vehicle by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		vehicle := &domain.ReentryVehicle{Name: args[0]}
		vehicle.Family, _ = flags.GetString("family")
		vehicle.Manufacturer, _ = flags.GetString("manufacturer")
		vehicle.Country, _ = flags.GetString("country")
		vehicle.Decelerator, _ = flags.GetString("decelerator")
		if flags.Changed("payload") {
			payload, _ := flags.GetInt("payload")
			vehicle.Payload = &payload
		}

		planner, err := loadPlanner(true)
		if err != nil {
			return err
		}
		defer planner.Close()

		if _, err := planner.Repo.CreateReentryVehicle(vehicle); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Vehicle added"))
		return nil
	},
}

func printVehicles(w io.Writer, vehicles []*domain.ReentryVehicle) {
	if len(vehicles) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No re-entry vehicles"))
		return
	}
	for _, v := range vehicles {
		payload := "-"
		if v.Payload != nil {
			payload = strconv.Itoa(*v.Payload) + " kg"
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			rowStyle.Width(24).Render(v.Name),
			rowStyle.Width(16).Render(v.Manufacturer),
			rowStyle.Width(8).Render(v.Country),
			rowStyle.Width(12).Render(v.Decelerator),
			payload,
		))
	}
}

func init() {
	vehiclesAddCmd.Flags().String("family", "", "Vehicle family")
	vehiclesAddCmd.Flags().String("manufacturer", "", "Manufacturer")
	vehiclesAddCmd.Flags().String("country", "", "Country code")
	vehiclesAddCmd.Flags().String("decelerator", "", "Parachute, retro-propulsion, wings...")
	vehiclesAddCmd.Flags().Int("payload", 0, "Return payload in kg")
	vehiclesCmd.AddCommand(vehiclesAddCmd)
	rootCmd.AddCommand(vehiclesCmd)
}
