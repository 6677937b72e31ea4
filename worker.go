package shockwave

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/remix-astronautics/shockwave/core"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/remix-astronautics/shockwave/spacedevs"
	"github.com/remix-astronautics/shockwave/syncer"
	"github.com/robfig/cron/v3"
)

// Sync runs one pass and blocks until it is done. It returns domain.ErrSyncInProgress
// when another pass is running.
func (planner *Planner) Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResult, error) {
	if !planner.syncing.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	defer planner.syncing.Store(false)
	return planner.runSync(ctx, req)
}

// StartSync runs one pass on the background worker and returns immediately. The outcome is
// delivered through the sync handler. It returns domain.ErrSyncInProgress when another pass
// is running.
func (planner *Planner) StartSync(ctx context.Context, req domain.SyncRequest) error {
	if !planner.syncing.CompareAndSwap(false, true) {
		return domain.ErrSyncInProgress
	}
	planner.wg.Add(1)
	go func() {
		defer planner.wg.Done()
		defer planner.syncing.Store(false)
		if _, err := planner.runSync(ctx, req); err != nil {
			planner.Logger.Error("background sync", "mode", req.Mode, "error", err)
		}
	}()
	return nil
}

// IsSyncing reports whether a pass is running.
func (planner *Planner) IsSyncing() bool {
	return planner.syncing.Load()
}

// Wait blocks until the pass started by StartSync has finished.
func (planner *Planner) Wait() {
	planner.wg.Wait()
}

func (planner *Planner) runSync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResult, error) {
	if planner.Repo == nil {
		return nil, errors.New("planner has no repository")
	}

	planner.mu.Lock()
	client := planner.Client
	options := []syncer.Option{
		syncer.WithLogger(planner.Logger),
		syncer.WithScope(planner.Scope.InScope),
		syncer.WithProgress(planner.progress),
		syncer.WithRecordLog(planner.recordLog),
	}
	if planner.Config != nil {
		options = append(options, syncer.WithRangeMax(planner.Config.Sync.RangeMax))
		switch {
		case req.Limit > 0:
		case req.Mode == domain.SyncUpcoming:
			req.Limit = planner.Config.Sync.UpcomingLimit
		case req.Mode == domain.SyncPrevious:
			req.Limit = planner.Config.Sync.PreviousLimit
		}
	}
	planner.mu.Unlock()

	result, err := syncer.New(client, planner.Repo, options...).Run(ctx, req)
	if result == nil {
		planner.WriteLog("ERROR", fmt.Sprintf("Sync not started: %v", err))
		return nil, err
	}

	level := "INFO"
	switch result.Status {
	case domain.SyncStatusPartial:
		level = "WARN"
	case domain.SyncStatusFailed:
		level = "ERROR"
	}
	message := fmt.Sprintf("Sync %s %s: %d added, %d updated, %d skipped, %d errors",
		result.Mode, result.Status, result.Added, result.Updated, result.Skipped, len(result.Errors))
	if logErr := planner.WriteLog(level, message,
		core.LogWithSyncID(result.SyncID),
		core.LogWithContext(map[string]any{
			"mode":      string(result.Mode),
			"processed": result.Processed,
			"errors":    result.Errors,
		}),
	); logErr != nil {
		planner.Logger.Error("writing sync log entry", "error", logErr)
	}

	if planner.OnSync != nil {
		if handlerErr := planner.OnSync(result); handlerErr != nil {
			planner.Logger.Error("sync handler", "error", handlerErr)
		}
	}
	return result, err
}

func (planner *Planner) progress(message string) {
	if planner.OnProgress != nil {
		planner.OnProgress(message)
	}
}

// StartSchedule runs an upcoming sync on the cron schedule spec, replacing a running
// schedule. Triggers that fire while a pass is running are skipped.
func (planner *Planner) StartSchedule(spec string) error {
	planner.mu.Lock()
	defer planner.mu.Unlock()
	return planner.startSchedule(spec)
}

func (planner *Planner) startSchedule(spec string) error {
	c := cron.New()
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.AddFunc(spec, func() { planner.scheduledSync(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("parsing schedule %q : %w", spec, err)
	}

	planner.stopSchedule()
	c.Start()
	planner.schedule = &schedule{cron: c, spec: spec, cancel: cancel}
	planner.Logger.Info("schedule started", "spec", spec)
	return nil
}

// StopSchedule stops the timer and waits for a scheduled pass that is still running.
func (planner *Planner) StopSchedule() {
	planner.mu.Lock()
	stopped := planner.stopSchedule()
	planner.mu.Unlock()
	<-stopped.Done()
}

// stopSchedule stops the timer. The returned context is done once a running job returns;
// callers must not wait on it while holding mu.
func (planner *Planner) stopSchedule() context.Context {
	if planner.schedule == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	planner.schedule.cancel()
	stopped := planner.schedule.cron.Stop()
	planner.Logger.Info("schedule stopped", "spec", planner.schedule.spec)
	planner.schedule = nil
	return stopped
}

// ScheduleSpec returns the cron spec of the running schedule, or "" when there is none.
func (planner *Planner) ScheduleSpec() string {
	planner.mu.Lock()
	defer planner.mu.Unlock()
	if planner.schedule == nil {
		return ""
	}
	return planner.schedule.spec
}

func (planner *Planner) scheduledSync(ctx context.Context) {
	_, err := planner.Sync(ctx, domain.SyncRequest{Mode: domain.SyncUpcoming})
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		planner.WriteLog("WARN", "Scheduled sync skipped: a sync is already in progress")
	case err != nil:
		planner.Logger.Error("scheduled sync", "error", err)
	}
}

// WatchConfig reloads the configuration whenever config.yaml changes. The scope, the client
// and a running schedule are updated from the new values.
func (planner *Planner) WatchConfig() error {
	planner.mu.Lock()
	defer planner.mu.Unlock()
	if planner.Config == nil {
		return errors.New("planner has no config dir")
	}
	planner.Config.viper.OnConfigChange(planner.onConfigChange)
	planner.Config.viper.WatchConfig()
	return nil
}

func (planner *Planner) onConfigChange(e fsnotify.Event) {
	if err := planner.reloadConfig(); err != nil {
		planner.WriteLog("ERROR", fmt.Sprintf("Reloading config %s: %v", e.Name, err))
		return
	}
	planner.WriteLog("INFO", fmt.Sprintf("Config reloaded from %s", e.Name))
}

func (planner *Planner) reloadConfig() error {
	planner.mu.Lock()
	defer planner.mu.Unlock()

	fresh, err := loadConfig(planner.Config.ConfigDir)
	if err != nil {
		return err
	}
	scope, err := fresh.scope()
	if err != nil {
		return fmt.Errorf("loading scope rules : %w", err)
	}
	*planner.Config = *fresh
	planner.Scope.replace(scope)

	if planner.ownClient {
		client, err := spacedevs.NewClient(planner.clientOptions()...)
		if err != nil {
			return fmt.Errorf("creating space devs client : %w", err)
		}
		planner.Client = client
	}

	if planner.schedule == nil {
		return nil
	}
	switch spec := planner.Config.Sync.Schedule; {
	case spec == "":
		planner.stopSchedule()
	case spec != planner.schedule.spec:
		return planner.startSchedule(spec)
	}
	return nil
}
