package main

import (
	"errors"
	"fmt"

	"github.com/remix-astronautics/shockwave"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run upcoming syncs on a timer until interrupted",
	Long: `Run an upcoming sync on a cron schedule in the foreground until Ctrl+C.

The schedule comes from sync.schedule in config.yaml unless --spec is given, for
example "@every 2h" or "0 */6 * * *". Edits to config.yaml are picked up while running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		planner, err := loadPlanner(true,
			shockwave.WithProgressHandler(func(message string) {
				fmt.Fprintln(out, mutedStyle.Render(message))
			}),
			shockwave.WithSyncHandler(func(result *domain.SyncResult) error {
				printSyncResult(out, result)
				return nil
			}),
		)
		if err != nil {
			return err
		}
		defer planner.Close()

		spec, _ := cmd.Flags().GetString("spec")
		if spec == "" {
			spec = planner.Config.Sync.Schedule
		}
		if spec == "" {
			return errors.New("no schedule configured, set sync.schedule or pass --spec")
		}

		if err := planner.StartSchedule(spec); err != nil {
			return err
		}
		if err := planner.WatchConfig(); err != nil {
			return err
		}
		if now, _ := cmd.Flags().GetBool("now"); now {
			if err := planner.StartSync(cmd.Context(), domain.SyncRequest{Mode: domain.SyncUpcoming}); err != nil {
				return err
			}
		}

		fmt.Fprintln(out, titleStyle.Render("Schedule running")+" "+spec)
		fmt.Fprintln(out, mutedStyle.Render("Press Ctrl+C to stop..."))
		<-cmd.Context().Done()

		fmt.Fprintln(out, "\nStopping schedule...")
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("spec", "", "Cron spec overriding sync.schedule")
	scheduleCmd.Flags().Bool("now", false, "Run one upcoming sync immediately")
	rootCmd.AddCommand(scheduleCmd)
}
