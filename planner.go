// Package shockwave is the application core of the launch and re-entry tracker.
//
// A Planner ties the local database, the Space Devs client and the sync engine together.
// It owns the configuration, the sync scope, the single background worker and the
// cron driven timer, and it is the only place that decides whether a sync pass may start.
package shockwave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/remix-astronautics/shockwave/db"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/remix-astronautics/shockwave/spacedevs"
	"github.com/remix-astronautics/shockwave/syncer"
	"github.com/robfig/cron/v3"
)

// Repository is the storage the planner works against.
type Repository interface {
	domain.LaunchRepository
	domain.LaunchSiteRepository
	domain.RocketRepository
	domain.StatusRepository
	domain.ReentryRepository
	domain.ReentrySiteRepository
	domain.ReentryVehicleRepository
	domain.SyncLogRepository
	domain.LogRepository
	domain.StatsRepository
	Close() error
}

// Client is the external launch source.
type Client interface {
	syncer.Fetcher
	Search(ctx context.Context, query string, limit int) ([]*domain.SyncedLaunch, error)
}

var (
	_ Repository = (*db.Repository)(nil)
	_ Client     = (*spacedevs.Client)(nil)
)

type Planner struct {
	ConfigDir  string                                // The configuration directory
	Config     *Config                               // Configuration loaded from ConfigDir, nil without one
	Repo       Repository                            // DB Repository Interface
	Client     Client                                // Space Devs client used by the worker
	Logger     *slog.Logger                          // Structured logger, never nil
	Scope      *Scope                                // Filter applied to fetched launches
	OnProgress func(message string)                  // Called with progress messages of the running pass
	OnSync     func(result *domain.SyncResult) error // Called when a pass finishes, including failed passes
	OnLog      func(log domain.Log) error            // Called for every log entry written through WriteLog

	ownClient bool // Client was built from Config and is rebuilt on reload

	syncing atomic.Bool
	wg      sync.WaitGroup

	mu       sync.Mutex // guards Config, Client and the schedule
	schedule *schedule
}

type schedule struct {
	cron   *cron.Cron
	spec   string
	cancel context.CancelFunc
}

// New creates a Planner and applies the options in order. Without WithClient a Space Devs
// client is built from the configuration, or from the defaults when there is none.
func New(options ...func(*Planner) error) (*Planner, error) {
	planner := &Planner{
		Logger: slog.New(slog.DiscardHandler),
		Scope:  NewScope(true),
	}
	err := planner.WithOptions(options...)
	if err != nil {
		return nil, err
	}

	if planner.Config != nil {
		scope, err := planner.Config.scope()
		if err != nil {
			return nil, fmt.Errorf("loading scope rules : %w", err)
		}
		planner.Scope = scope
	}

	if planner.Client == nil {
		client, err := spacedevs.NewClient(planner.clientOptions()...)
		if err != nil {
			return nil, fmt.Errorf("creating space devs client : %w", err)
		}
		planner.Client = client
		planner.ownClient = true
	}
	return planner, nil
}

// WithOptions applies a series of configuration functions to the planner.
func (planner *Planner) WithOptions(options ...func(*Planner) error) error {
	for _, option := range options {
		err := option(planner)
		if err != nil {
			return fmt.Errorf("applying option on planner : %w", err)
		}
	}
	return nil
}

// Search queries the external source directly. Nothing is stored.
func (planner *Planner) Search(ctx context.Context, query string, limit int) ([]*domain.SyncedLaunch, error) {
	planner.mu.Lock()
	client := planner.Client
	planner.mu.Unlock()

	launches, err := client.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching space devs for %q : %w", query, err)
	}
	return launches, nil
}

// Close stops the schedule, waits for a running pass and closes the repository.
func (planner *Planner) Close() error {
	planner.StopSchedule()
	planner.Wait()
	if planner.Repo == nil {
		return nil
	}
	return planner.Repo.Close()
}

func (planner *Planner) clientOptions() []spacedevs.Option {
	if planner.Config == nil {
		return nil
	}
	api := planner.Config.API
	options := []spacedevs.Option{
		spacedevs.WithUserAgent(api.UserAgent),
		spacedevs.WithToken(api.Token),
	}
	if api.BaseURL != "" {
		options = append(options, spacedevs.WithBaseURL(api.BaseURL))
	}
	if api.Timeout > 0 {
		options = append(options, spacedevs.WithTimeout(api.Timeout))
	}
	if api.PageSize > 0 {
		options = append(options, spacedevs.WithPageSize(api.PageSize))
	}
	return options
}
