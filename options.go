package shockwave

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/remix-astronautics/shockwave/domain"
)

// WithConfigDir configures the planner to use the specified configuration directory.
// It creates the directory if it doesn't exist and loads config.yaml through Viper,
// writing the defaults on first run.
func WithConfigDir(appConfigDir string) func(*Planner) error {
	return func(planner *Planner) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
			planner.Logger.Info("creating config dir", "path", appConfigDir)
			if err := os.MkdirAll(appConfigDir, 0700); err != nil {
				return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
			}
		}
		planner.ConfigDir = appConfigDir

		cfg, err := loadConfig(appConfigDir)
		if err != nil {
			return err
		}
		planner.Config = cfg
		return nil
	}
}

// WithRepo sets the repository, closing the one previously set.
func WithRepo(repo Repository) func(*Planner) error {
	return func(planner *Planner) error {
		if repo == nil {
			return errors.New("repository is nil")
		}
		if planner.Repo != nil {
			if err := planner.Repo.Close(); err != nil {
				return err
			}
			planner.Repo = nil
		}
		planner.Repo = repo
		return nil
	}
}

// WithClient sets the external launch source. The planner then no longer builds its own
// client from the configuration.
func WithClient(client Client) func(*Planner) error {
	return func(planner *Planner) error {
		if client == nil {
			return errors.New("client is nil")
		}
		planner.Client = client
		planner.ownClient = false
		return nil
	}
}

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) func(*Planner) error {
	return func(planner *Planner) error {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		planner.Logger = logger
		return nil
	}
}

// WithProgressHandler takes a handler function that will be executed on each progress message of a sync pass
func WithProgressHandler(handler func(message string)) func(*Planner) error {
	return func(planner *Planner) error {
		if planner.OnProgress != nil {
			return errors.New("planner already has a progress handler defined")
		}
		planner.OnProgress = handler
		return nil
	}
}

// WithSyncHandler takes a handler function that will be executed when a sync pass finishes
func WithSyncHandler(handler func(result *domain.SyncResult) error) func(*Planner) error {
	return func(planner *Planner) error {
		if planner.OnSync != nil {
			return errors.New("planner already has a sync handler defined")
		}
		planner.OnSync = handler
		return nil
	}
}

// WithLogHandler takes a handler function that will be executed on each Log
func WithLogHandler(handler func(log domain.Log) error) func(*Planner) error {
	return func(planner *Planner) error {
		if planner.OnLog != nil {
			return errors.New("planner already has a log handler defined")
		}
		planner.OnLog = handler
		return nil
	}
}
