// Package syncer merges launch records fetched from the Space Devs API into the local database.
//
// A sync pass fetches page by page and merges every record as it arrives. A record whose
// external ID is unknown is inserted, a known one is updated in place. Rows without an
// external ID were entered by hand and are never touched. Every pass, successful or not,
// leaves exactly one row in the sync log.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/core"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/remix-astronautics/shockwave/spacedevs"
)

const (
	// DefaultUpcomingLimit is the number of upcoming launches fetched when a request has no limit.
	DefaultUpcomingLimit = 100
	// DefaultPreviousLimit is the number of past launches fetched when a request has no limit.
	DefaultPreviousLimit = 50
	// DefaultRangeMax caps the number of records a range pass follows the pagination for.
	DefaultRangeMax = 1000
	// maxLoggedErrors is the number of record errors kept in the sync log message.
	maxLoggedErrors = 5
)

// Fetcher is the part of the API client a sync pass needs.
type Fetcher interface {
	FetchUpcoming(ctx context.Context, limit int, fn spacedevs.PageFunc) error
	FetchPrevious(ctx context.Context, limit int, fn spacedevs.PageFunc) error
	FetchRange(ctx context.Context, start, end string, maxRecords int, fn spacedevs.PageFunc) error
	FetchLauncher(ctx context.Context, id string) (*domain.Rocket, error)
}

// Repository is the storage a sync pass merges into.
type Repository interface {
	domain.LaunchRepository
	domain.LaunchSiteRepository
	domain.RocketRepository
	domain.StatusRepository
	domain.SyncLogRepository
}

// ScopeFunc reports whether a fetched launch should be merged. Launches out of scope are skipped.
type ScopeFunc func(launch *domain.SyncedLaunch) bool

// ProgressFunc receives human readable progress messages.
type ProgressFunc func(message string)

// RecordLogFunc stores an application log entry about one record of a pass. ctx carries the
// pass ID.
type RecordLogFunc func(ctx context.Context, level, message string, options ...core.LogOption)

// Syncer runs sync passes. It is not safe for concurrent passes; callers serialize them.
type Syncer struct {
	fetcher   Fetcher
	repo      Repository
	logger    *slog.Logger
	inScope   ScopeFunc
	progress  ProgressFunc
	recordLog RecordLogFunc
	rangeMax  int
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScope sets the filter applied to every fetched launch.
func WithScope(fn ScopeFunc) Option {
	return func(s *Syncer) {
		if fn != nil {
			s.inScope = fn
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Syncer) {
		if fn != nil {
			s.progress = fn
		}
	}
}

// WithRecordLog sets where record level problems are reported.
func WithRecordLog(fn RecordLogFunc) Option {
	return func(s *Syncer) {
		if fn != nil {
			s.recordLog = fn
		}
	}
}

// WithRangeMax caps the number of records a range pass fetches.
func WithRangeMax(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.rangeMax = n
		}
	}
}

// New creates a Syncer merging records from fetcher into repo.
func New(fetcher Fetcher, repo Repository, opts ...Option) *Syncer {
	s := &Syncer{
		fetcher:   fetcher,
		repo:      repo,
		logger:    slog.New(slog.DiscardHandler),
		inScope:   func(*domain.SyncedLaunch) bool { return true },
		progress:  func(string) {},
		recordLog: func(context.Context, string, string, ...core.LogOption) {},
		rangeMax:  DefaultRangeMax,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pass holds the state of one running sync pass.
type pass struct {
	result   *domain.SyncResult
	statuses map[string]uuid.UUID
}

func (p *pass) fail(format string, args ...any) {
	p.result.Errors = append(p.result.Errors, fmt.Sprintf(format, args...))
}

// Run performs one sync pass and records it in the sync log.
//
// Record level problems (a malformed record, a record the database rejects) are counted and
// the pass continues. A transport error or a stale database schema stops the pass: the log
// row is still written, with status FAILED and the counts reached so far, and the error is
// returned together with the partial result.
func (s *Syncer) Run(ctx context.Context, req domain.SyncRequest) (*domain.SyncResult, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	syncID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating uuid: %w", err)
	}
	ctx = core.ContextWithSyncID(ctx, syncID)

	p := &pass{
		result:   &domain.SyncResult{SyncID: syncID, Mode: req.Mode},
		statuses: make(map[string]uuid.UUID),
	}
	logger := s.logger.With("sync_id", syncID, "mode", req.Mode)
	logger.Info("starting sync", "limit", req.Limit, "start", req.Start, "end", req.End)

	merge := func(page *spacedevs.Page) error {
		return s.mergePage(ctx, p, page)
	}

	switch req.Mode {
	case domain.SyncUpcoming:
		s.progress(fmt.Sprintf("Fetching up to %d upcoming launches from Space Devs...", req.Limit))
		err = s.fetcher.FetchUpcoming(ctx, req.Limit, merge)
	case domain.SyncPrevious:
		s.progress(fmt.Sprintf("Fetching up to %d previous launches from Space Devs...", req.Limit))
		err = s.fetcher.FetchPrevious(ctx, req.Limit, merge)
	case domain.SyncRange:
		s.progress(fmt.Sprintf("Fetching launches from %s to %s...", req.Start, req.End))
		err = s.fetcher.FetchRange(ctx, req.Start, req.End, s.rangeMax, merge)
	case domain.SyncRockets:
		s.progress("Refreshing rocket details from Space Devs...")
		err = s.refreshRockets(ctx, p)
	}

	result := p.result
	switch {
	case err != nil:
		result.Status = domain.SyncStatusFailed
		result.Errors = append([]string{err.Error()}, result.Errors...)
	case len(result.Errors) > 0:
		result.Status = domain.SyncStatusPartial
	default:
		result.Status = domain.SyncStatusSuccess
	}

	entry := &domain.SyncLog{
		ID:             syncID,
		SyncTime:       time.Now().UTC(),
		DataSource:     req.Mode.DataSource(),
		RecordsAdded:   result.Added,
		RecordsUpdated: result.Updated,
		RecordsSkipped: result.Skipped,
		Status:         result.Status,
		ErrorMessage:   joinErrors(result.Errors),
	}
	if logErr := s.repo.InsertSyncLog(entry); logErr != nil {
		logger.Error("writing sync log", "error", logErr)
		err = errors.Join(err, fmt.Errorf("writing sync log: %w", logErr))
	}

	logger.Info("sync finished", "status", result.Status, "added", result.Added, "updated", result.Updated,
		"skipped", result.Skipped, "processed", result.Processed, "errors", len(result.Errors))
	s.progress(fmt.Sprintf("Sync %s: %d added, %d updated, %d skipped, %d errors, %d processed",
		strings.ToLower(result.Status), result.Added, result.Updated, result.Skipped, len(result.Errors), result.Processed))

	if err != nil {
		return result, fmt.Errorf("sync %s: %w", req.Mode, err)
	}
	return result, nil
}

// normalize validates a request and fills in default limits.
func normalize(req domain.SyncRequest) (domain.SyncRequest, error) {
	if !req.Mode.Valid() {
		return req, fmt.Errorf("unknown sync mode %q", req.Mode)
	}

	switch req.Mode {
	case domain.SyncUpcoming:
		if req.Limit <= 0 {
			req.Limit = DefaultUpcomingLimit
		}
	case domain.SyncPrevious:
		if req.Limit <= 0 {
			req.Limit = DefaultPreviousLimit
		}
	case domain.SyncRange:
		start, err := time.Parse(time.DateOnly, req.Start)
		if err != nil {
			return req, fmt.Errorf("parsing range start %q: %w", req.Start, err)
		}
		end, err := time.Parse(time.DateOnly, req.End)
		if err != nil {
			return req, fmt.Errorf("parsing range end %q: %w", req.End, err)
		}
		if end.Before(start) {
			return req, fmt.Errorf("range end %s is before start %s", req.End, req.Start)
		}
	}
	return req, nil
}

// mergePage merges every record of a page. It only returns an error that should stop the pass.
func (s *Syncer) mergePage(ctx context.Context, p *pass, page *spacedevs.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debug("merging page", "offset", page.Offset, "records", page.Len(), "total", page.Total)

	for _, recordErr := range page.Errors {
		p.result.Processed++
		p.result.Skipped++
		p.fail("%v", recordErr)
		s.logger.Warn("skipping malformed record", "error", recordErr)
		s.recordLog(ctx, "WARN", fmt.Sprintf("Skipped malformed record: %v", recordErr))
	}

	for _, launch := range page.Launches {
		p.result.Processed++

		if !s.inScope(launch) {
			p.result.Skipped++
			s.logger.Debug("skipping launch out of scope", "external_id", launch.ExternalID, "mission", launch.MissionName)
			continue
		}

		launchID, added, err := s.mergeLaunch(p, launch)
		if err != nil {
			if errors.Is(err, domain.ErrStaleSchema) {
				return err
			}
			p.fail("%s: %v", launch.MissionName, err)
			s.logger.Error("merging launch", "external_id", launch.ExternalID, "error", err)

			options := []core.LogOption{core.LogWithContext(map[string]any{
				"external_id": launch.ExternalID,
				"launch_date": launch.LaunchDate,
			})}
			if launchID != uuid.Nil {
				options = append(options, core.LogWithLaunchID(launchID))
			}
			s.recordLog(ctx, "ERROR", fmt.Sprintf("Merging %s: %v", launch.MissionName, err), options...)
			continue
		}

		if added {
			p.result.Added++
			s.progress(fmt.Sprintf("  + Added: %s (%s)", launch.MissionName, launch.LaunchDate))
		} else {
			p.result.Updated++
			s.progress(fmt.Sprintf("  * Updated: %s (%s)", launch.MissionName, launch.LaunchDate))
		}
	}

	if page.Total > 0 {
		s.progress(fmt.Sprintf("Processed %d of %d", p.result.Processed, page.Total))
	}
	return nil
}

// mergeLaunch inserts or updates one launch. It returns the local ID once known and reports
// whether the launch was inserted.
func (s *Syncer) mergeLaunch(p *pass, synced *domain.SyncedLaunch) (uuid.UUID, bool, error) {
	siteID, err := s.resolveSite(&synced.Site)
	if err != nil {
		return uuid.Nil, false, err
	}

	rocketID, err := s.resolveRocket(&synced.Rocket)
	if err != nil {
		return uuid.Nil, false, err
	}

	statusID, err := s.resolveStatus(p, synced.StatusName)
	if err != nil {
		return uuid.Nil, false, err
	}

	launch := &domain.Launch{
		LaunchDate:  synced.LaunchDate,
		LaunchTime:  synced.LaunchTime,
		WindowStart: synced.WindowStart,
		WindowEnd:   synced.WindowEnd,
		SiteID:      siteID,
		RocketID:    rocketID,
		StatusID:    statusID,
		MissionName: synced.MissionName,
		PayloadName: synced.PayloadName,
		OrbitType:   synced.OrbitType,
		Success:     synced.Success,
		Remarks:     synced.Remarks,
		SourceURL:   synced.SourceURL,
		DataSource:  domain.DataSourceSpaceDevs,
		ExternalID:  synced.ExternalID,
	}

	existing, err := s.repo.GetLaunchByExternalID(synced.ExternalID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		id, err := s.repo.InsertSyncedLaunch(launch)
		if err != nil {
			return uuid.Nil, false, err
		}
		return id, true, nil
	case err != nil:
		return uuid.Nil, false, err
	}

	if err := s.repo.UpdateSyncedLaunch(existing.ID, launch); err != nil {
		return existing.ID, false, err
	}
	return existing.ID, false, nil
}

// resolveSite finds the local site for a fetched pad, by external ID first and then by location
// and pad name, and creates it when neither matches. Only externally owned sites are refreshed.
func (s *Syncer) resolveSite(site *domain.LaunchSite) (uuid.UUID, error) {
	existing, err := s.repo.GetSiteByExternalID(site.ExternalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, err
	}

	if existing == nil {
		existing, err = s.repo.FindSite(site.Location, site.LaunchPad)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, err
		}
	}

	if existing == nil {
		id, err := s.repo.CreateSite(site)
		if err != nil {
			return uuid.Nil, err
		}
		s.logger.Info("created launch site", "location", site.Location, "pad", site.LaunchPad, "external_id", site.ExternalID)
		return id, nil
	}

	if existing.ExternalID != "" {
		if err := s.repo.UpdateSyncedSite(existing.ID, site); err != nil {
			return uuid.Nil, err
		}
	}
	return existing.ID, nil
}

// resolveRocket finds the local rocket for a fetched configuration, by external ID first and
// then by name, and creates it when neither matches. Only externally owned rockets are refreshed.
func (s *Syncer) resolveRocket(rocket *domain.Rocket) (uuid.UUID, error) {
	existing, err := s.repo.GetRocketByExternalID(rocket.ExternalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, err
	}

	if existing == nil {
		existing, err = s.repo.GetRocketByName(rocket.Name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, err
		}
	}

	if existing == nil {
		id, err := s.repo.CreateRocket(rocket)
		if err != nil {
			return uuid.Nil, err
		}
		s.logger.Info("created rocket", "name", rocket.Name, "external_id", rocket.ExternalID)
		return id, nil
	}

	if existing.ExternalID != "" {
		if err := s.repo.UpdateSyncedRocket(existing.ID, rocket); err != nil {
			return uuid.Nil, err
		}
	}
	return existing.ID, nil
}

// resolveStatus returns the ID of the named status, falling back to Scheduled.
func (s *Syncer) resolveStatus(p *pass, name string) (uuid.UUID, error) {
	if id, ok := p.statuses[name]; ok {
		return id, nil
	}

	status, err := s.repo.GetStatusByName(name)
	if errors.Is(err, domain.ErrNotFound) && name != domain.StatusScheduled {
		s.logger.Warn("unknown status, using Scheduled", "status", name)
		id, err := s.resolveStatus(p, domain.StatusScheduled)
		if err != nil {
			return uuid.Nil, err
		}
		p.statuses[name] = id
		return id, nil
	}
	if err != nil {
		return uuid.Nil, err
	}

	p.statuses[name] = status.ID
	return status.ID, nil
}

// refreshRockets fetches the launcher details of every externally owned rocket.
func (s *Syncer) refreshRockets(ctx context.Context, p *pass) error {
	rockets, err := s.repo.GetSyncedRockets()
	if err != nil {
		return err
	}

	for i, rocket := range rockets {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.result.Processed++

		details, err := s.fetcher.FetchLauncher(ctx, rocket.ExternalID)
		if err != nil {
			if errors.Is(err, spacedevs.ErrTransport) || errors.Is(err, spacedevs.ErrMalformedResponse) {
				return err
			}
			p.result.Skipped++
			p.fail("%s: %v", rocket.Name, err)
			continue
		}

		if err := s.repo.UpdateSyncedRocket(rocket.ID, details); err != nil {
			if errors.Is(err, domain.ErrStaleSchema) {
				return err
			}
			p.result.Skipped++
			p.fail("%s: %v", rocket.Name, err)
			continue
		}

		p.result.Updated++
		s.progress(fmt.Sprintf("  * Updated: %s (%d of %d)", rocket.Name, i+1, len(rockets)))
	}
	return nil
}

// joinErrors joins the first few error messages for the sync log.
func joinErrors(errs []string) string {
	if len(errs) > maxLoggedErrors {
		errs = errs[:maxLoggedErrors]
	}
	return strings.Join(errs, "; ")
}
