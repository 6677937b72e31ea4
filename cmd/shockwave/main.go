// Command shockwave syncs launch schedules from Space Devs into the local database and
// reports on them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/remix-astronautics/shockwave"
	"github.com/remix-astronautics/shockwave/db"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configDir string
	dbPath    string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "shockwave",
	Short: "Launch and re-entry tracker",
	Long: `Shockwave keeps a local database of orbital launches and re-entries.

Launch schedules are pulled from the Space Devs Launch Library and merged into the
database. Rows entered by hand are never touched by a sync.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
}

func init() {
	defaultDir := "shockwave"
	if dir, err := os.UserConfigDir(); err == nil {
		defaultDir = filepath.Join(dir, "shockwave")
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", defaultDir, "Directory holding config.yaml, the database and the log file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
}

// newLogger writes text logs to a rotating file in the config dir.
func newLogger() *slog.Logger {
	var w io.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(configDir, "shockwave.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadPlanner builds a planner from the config dir. The database is opened unless
// withRepo is false, which repair and reset need.
func loadPlanner(withRepo bool, options ...func(*shockwave.Planner) error) (*shockwave.Planner, error) {
	options = append([]func(*shockwave.Planner) error{
		shockwave.WithLogger(newLogger()),
		shockwave.WithConfigDir(configDir),
	}, options...)

	planner, err := shockwave.New(options...)
	if err != nil {
		return nil, err
	}
	if !withRepo {
		return planner, nil
	}

	conn, err := db.New(databasePath(planner))
	if err != nil {
		return nil, err
	}
	if err := planner.WithOptions(shockwave.WithRepo(db.NewRepo(conn))); err != nil {
		conn.Close()
		return nil, err
	}
	return planner, nil
}

func databasePath(planner *shockwave.Planner) string {
	if dbPath != "" {
		return dbPath
	}
	return planner.Config.Database
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
