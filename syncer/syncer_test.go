package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/core"
	"github.com/remix-astronautics/shockwave/db"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/remix-astronautics/shockwave/spacedevs"
)

// fakeFetcher serves fixed pages and launcher details.
type fakeFetcher struct {
	pages     []*spacedevs.Page
	err       error // returned after the pages were delivered
	launchers map[string]*domain.Rocket
	calls     []string
}

func (f *fakeFetcher) serve(fn spacedevs.PageFunc) error {
	for _, page := range f.pages {
		if err := fn(page); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeFetcher) FetchUpcoming(ctx context.Context, limit int, fn spacedevs.PageFunc) error {
	f.calls = append(f.calls, fmt.Sprintf("upcoming %d", limit))
	return f.serve(fn)
}

func (f *fakeFetcher) FetchPrevious(ctx context.Context, limit int, fn spacedevs.PageFunc) error {
	f.calls = append(f.calls, fmt.Sprintf("previous %d", limit))
	return f.serve(fn)
}

func (f *fakeFetcher) FetchRange(ctx context.Context, start, end string, maxRecords int, fn spacedevs.PageFunc) error {
	f.calls = append(f.calls, fmt.Sprintf("range %s %s %d", start, end, maxRecords))
	return f.serve(fn)
}

func (f *fakeFetcher) FetchLauncher(ctx context.Context, id string) (*domain.Rocket, error) {
	f.calls = append(f.calls, "launcher "+id)
	rocket, ok := f.launchers[id]
	if !ok {
		return nil, fmt.Errorf("%w: launcher %s returned 404 Not Found", spacedevs.ErrTransport, id)
	}
	return rocket, nil
}

// failingRepo rejects every update of synced rows.
type failingRepo struct {
	*db.Repository
	err error
}

func (r *failingRepo) UpdateSyncedLaunch(id uuid.UUID, launch *domain.Launch) error {
	return r.err
}

func (r *failingRepo) UpdateSyncedRocket(id uuid.UUID, rocket *domain.Rocket) error {
	return r.err
}

func setupTestRepo(t *testing.T) (*db.Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := db.New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := db.NewRepo(dbConn)
	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}
	return repo, teardown
}

func syncedLaunch(id, mission string) *domain.SyncedLaunch {
	lat, long := 28.56, -80.57
	return &domain.SyncedLaunch{
		ExternalID:  id,
		LaunchDate:  "2026-02-01",
		LaunchTime:  "12:00:00",
		MissionName: mission,
		PayloadName: mission + " payload",
		OrbitType:   "LEO",
		StatusName:  domain.StatusGo,
		SourceURL:   "https://ll.thespacedevs.com/2.2.0/launch/" + id + "/",
		Site: domain.LaunchSite{
			Location:   "Cape Canaveral, FL, USA",
			LaunchPad:  "Space Launch Complex 40",
			Latitude:   &lat,
			Longitude:  &long,
			Country:    "USA",
			ExternalID: "80",
		},
		Rocket: domain.Rocket{
			Name:       "Falcon 9 Block 5",
			Family:     "Falcon",
			Variant:    "Block 5",
			ExternalID: "164",
		},
	}
}

func page(launches ...*domain.SyncedLaunch) *spacedevs.Page {
	return &spacedevs.Page{Total: len(launches), Launches: launches}
}

func runSync(t *testing.T, s *Syncer, req domain.SyncRequest) *domain.SyncResult {
	t.Helper()

	result, err := s.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	return result
}

func TestSyncer_Run(t *testing.T) {
	t.Run("should insert a record with a new external id exactly once", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"), syncedLaunch("b", "Bravo"))}}
		result := runSync(t, New(fetcher, repo), domain.SyncRequest{Mode: domain.SyncUpcoming})

		if result.Added != 2 || result.Updated != 0 || result.Status != domain.SyncStatusSuccess {
			t.Fatalf("\nwanted:\n2 added, SUCCESS\ngot:\n%+v", result)
		}

		count, err := repo.CountLaunches()
		if err != nil {
			t.Fatalf("counting launches: %v", err)
		}
		if count != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", count)
		}

		launch, err := repo.GetLaunchByExternalID("a")
		if err != nil {
			t.Fatalf("getting launch: %v", err)
		}
		if launch.DataSource != domain.DataSourceSpaceDevs || launch.MissionName != "Alpha" {
			t.Fatalf("\nwanted:\nAlpha from SPACE_DEVS\ngot:\n%+v", launch)
		}

		sites, err := repo.GetSites()
		if err != nil {
			t.Fatalf("getting sites: %v", err)
		}
		if len(sites) != 1 || sites[0].ExternalID != "80" {
			t.Fatalf("\nwanted:\none site with external id 80\ngot:\n%v", sites)
		}
	})

	t.Run("should update a known external id in place", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"))}}
		s := New(fetcher, repo)
		runSync(t, s, domain.SyncRequest{Mode: domain.SyncUpcoming})

		before, err := repo.GetLaunchByExternalID("a")
		if err != nil {
			t.Fatalf("getting launch: %v", err)
		}

		changed := syncedLaunch("a", "Alpha")
		changed.LaunchDate = "2026-02-03"
		changed.StatusName = domain.StatusSuccess
		success := true
		changed.Success = &success
		fetcher.pages = []*spacedevs.Page{page(changed)}

		result := runSync(t, s, domain.SyncRequest{Mode: domain.SyncUpcoming})
		if result.Added != 0 || result.Updated != 1 {
			t.Fatalf("\nwanted:\n0 added, 1 updated\ngot:\n%+v", result)
		}

		after, err := repo.GetLaunchByExternalID("a")
		if err != nil {
			t.Fatalf("getting launch: %v", err)
		}
		if after.ID != before.ID || after.LaunchDate != "2026-02-03" || after.Success == nil || !*after.Success {
			t.Fatalf("\nwanted:\nsame row moved to 2026-02-03 with success\ngot:\n%+v", after)
		}

		count, err := repo.CountLaunches()
		if err != nil {
			t.Fatalf("counting launches: %v", err)
		}
		if count != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", count)
		}
	})

	t.Run("should never modify a manual launch", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		siteID, err := repo.CreateSite(&domain.LaunchSite{Location: "Cape Canaveral, FL, USA", LaunchPad: "Space Launch Complex 40", Country: "US"})
		if err != nil {
			t.Fatalf("creating site: %v", err)
		}
		rocketID, err := repo.CreateRocket(&domain.Rocket{Name: "Falcon 9 Block 5", Family: "Hand entered"})
		if err != nil {
			t.Fatalf("creating rocket: %v", err)
		}
		status, err := repo.GetStatusByName(domain.StatusScheduled)
		if err != nil {
			t.Fatalf("getting status: %v", err)
		}
		manual := &domain.Launch{
			LaunchDate:  "2026-02-01",
			LaunchTime:  "12:00:00",
			SiteID:      siteID,
			RocketID:    rocketID,
			StatusID:    status.ID,
			MissionName: "Alpha",
			Remarks:     "entered by hand",
		}
		manualID, err := repo.CreateLaunch(manual)
		if err != nil {
			t.Fatalf("creating launch: %v", err)
		}

		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"))}}
		result := runSync(t, New(fetcher, repo), domain.SyncRequest{Mode: domain.SyncUpcoming})
		if result.Added != 1 {
			t.Fatalf("\nwanted:\n1 added\ngot:\n%+v", result)
		}

		got, err := repo.GetLaunch(manualID)
		if err != nil {
			t.Fatalf("getting launch: %v", err)
		}
		if got.Remarks != "entered by hand" || got.ExternalID != "" || got.StatusID != status.ID ||
			got.DataSource != domain.DataSourceManual || got.LastSynced != nil {
			t.Fatalf("\nwanted:\nuntouched manual launch\ngot:\n%+v", got)
		}

		site, err := repo.GetSite(siteID)
		if err != nil {
			t.Fatalf("getting site: %v", err)
		}
		if site.Country != "US" || site.Latitude != nil || site.ExternalID != "" {
			t.Fatalf("\nwanted:\nuntouched manual site\ngot:\n%+v", site)
		}

		rocket, err := repo.GetRocket(rocketID)
		if err != nil {
			t.Fatalf("getting rocket: %v", err)
		}
		if rocket.Family != "Hand entered" || rocket.ExternalID != "" {
			t.Fatalf("\nwanted:\nuntouched manual rocket\ngot:\n%+v", rocket)
		}

		synced, err := repo.GetLaunchByExternalID("a")
		if err != nil {
			t.Fatalf("getting synced launch: %v", err)
		}
		if synced.SiteID != siteID || synced.RocketID != rocketID {
			t.Fatalf("\nwanted:\nsynced launch referencing the manual site and rocket\ngot:\n%+v", synced)
		}
	})

	t.Run("should be idempotent for identical input", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"), syncedLaunch("b", "Bravo"))}}
		s := New(fetcher, repo)
		runSync(t, s, domain.SyncRequest{Mode: domain.SyncUpcoming})

		first, err := repo.GetLaunches(domain.LaunchFilter{})
		if err != nil {
			t.Fatalf("getting launches: %v", err)
		}

		runSync(t, s, domain.SyncRequest{Mode: domain.SyncUpcoming})

		second, err := repo.GetLaunches(domain.LaunchFilter{})
		if err != nil {
			t.Fatalf("getting launches: %v", err)
		}

		if len(first) != len(second) {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", len(first), len(second))
		}
		for i := range first {
			a, b := *first[i], *second[i]
			if !a.LastUpdated.Equal(*b.LastUpdated) {
				t.Fatalf("\nwanted:\nlast_updated %v\ngot:\n%v", a.LastUpdated, b.LastUpdated)
			}
			a.LastUpdated, b.LastUpdated = nil, nil
			a.LastSynced, b.LastSynced = nil, nil
			a.WindowStart, b.WindowStart = nil, nil
			a.WindowEnd, b.WindowEnd = nil, nil
			if fmt.Sprintf("%+v", a) != fmt.Sprintf("%+v", b) {
				t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", a, b)
			}
		}

		sites, err := repo.GetSites()
		if err != nil {
			t.Fatalf("getting sites: %v", err)
		}
		rockets, err := repo.GetRockets()
		if err != nil {
			t.Fatalf("getting rockets: %v", err)
		}
		if len(sites) != 1 || len(rockets) != 1 {
			t.Fatalf("\nwanted:\n1 site and 1 rocket\ngot:\n%d sites and %d rockets", len(sites), len(rockets))
		}
	})

	t.Run("should write one sync log row per pass with matching counts", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{pages: []*spacedevs.Page{
			page(syncedLaunch("a", "Alpha")),
			page(syncedLaunch("b", "Bravo"), syncedLaunch("c", "Charlie")),
		}}
		s := New(fetcher, repo)
		first := runSync(t, s, domain.SyncRequest{Mode: domain.SyncUpcoming})

		fetcher.pages = append(fetcher.pages, page(syncedLaunch("d", "Delta")))
		second := runSync(t, s, domain.SyncRequest{Mode: domain.SyncPrevious, Limit: 10})

		logs, err := repo.GetSyncLogs(0)
		if err != nil {
			t.Fatalf("getting sync logs: %v", err)
		}
		if len(logs) != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", len(logs))
		}

		if logs[0].ID != second.SyncID || logs[0].DataSource != "SPACE_DEVS_PREVIOUS" ||
			logs[0].RecordsAdded != 1 || logs[0].RecordsUpdated != 3 || logs[0].Status != domain.SyncStatusSuccess {
			t.Fatalf("\nwanted:\nprevious pass with 1 added and 3 updated\ngot:\n%+v", logs[0])
		}
		if logs[1].ID != first.SyncID || logs[1].DataSource != "SPACE_DEVS_UPCOMING" ||
			logs[1].RecordsAdded != 3 || logs[1].RecordsUpdated != 0 {
			t.Fatalf("\nwanted:\nupcoming pass with 3 added\ngot:\n%+v", logs[1])
		}
	})

	t.Run("should skip malformed records and finish as partial", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		broken := page(syncedLaunch("a", "Alpha"))
		for i := 0; i < 7; i++ {
			broken.Errors = append(broken.Errors, fmt.Errorf("%w: record %d", spacedevs.ErrMalformedRecord, i))
		}
		fetcher := &fakeFetcher{pages: []*spacedevs.Page{broken}}

		result := runSync(t, New(fetcher, repo), domain.SyncRequest{Mode: domain.SyncUpcoming})
		if result.Added != 1 || result.Skipped != 7 || result.Processed != 8 || result.Status != domain.SyncStatusPartial {
			t.Fatalf("\nwanted:\n1 added, 7 skipped, 8 processed, PARTIAL\ngot:\n%+v", result)
		}

		entry, err := repo.GetLastSync("SPACE_DEVS_UPCOMING")
		if err != nil {
			t.Fatalf("getting sync log: %v", err)
		}
		if strings.Count(entry.ErrorMessage, "; ") != 4 || entry.RecordsSkipped != 7 {
			t.Fatalf("\nwanted:\nfive joined errors and 7 skipped\ngot:\n%+v", entry)
		}
	})

	t.Run("should skip launches out of scope", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"), syncedLaunch("b", "Bravo"))}}
		scope := func(launch *domain.SyncedLaunch) bool { return launch.MissionName != "Bravo" }

		result := runSync(t, New(fetcher, repo, WithScope(scope)), domain.SyncRequest{Mode: domain.SyncUpcoming})
		if result.Added != 1 || result.Skipped != 1 || result.Status != domain.SyncStatusSuccess {
			t.Fatalf("\nwanted:\n1 added, 1 skipped, SUCCESS\ngot:\n%+v", result)
		}
		if _, err := repo.GetLaunchByExternalID("b"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrNotFound, err)
		}
	})

	t.Run("should stop on a transport error and still log the pass", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{
			pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"))},
			err:   fmt.Errorf("%w: 503 Service Unavailable", spacedevs.ErrTransport),
		}

		result, err := New(fetcher, repo).Run(context.Background(), domain.SyncRequest{Mode: domain.SyncUpcoming})
		if !errors.Is(err, spacedevs.ErrTransport) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", spacedevs.ErrTransport, err)
		}
		if result == nil || result.Added != 1 || result.Status != domain.SyncStatusFailed {
			t.Fatalf("\nwanted:\n1 added, FAILED\ngot:\n%+v", result)
		}

		entry, err := repo.GetLastSync("SPACE_DEVS_UPCOMING")
		if err != nil {
			t.Fatalf("getting sync log: %v", err)
		}
		if entry.Status != domain.SyncStatusFailed || entry.RecordsAdded != 1 || !strings.Contains(entry.ErrorMessage, "503") {
			t.Fatalf("\nwanted:\nFAILED row with 1 added naming 503\ngot:\n%+v", entry)
		}
	})

	t.Run("should fall back to Scheduled for an unknown status", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		launch := syncedLaunch("a", "Alpha")
		launch.StatusName = "Payload Deployed"
		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(launch)}}
		runSync(t, New(fetcher, repo), domain.SyncRequest{Mode: domain.SyncUpcoming})

		got, err := repo.GetLaunchByExternalID("a")
		if err != nil {
			t.Fatalf("getting launch: %v", err)
		}
		scheduled, err := repo.GetStatusByName(domain.StatusScheduled)
		if err != nil {
			t.Fatalf("getting status: %v", err)
		}
		if got.StatusID != scheduled.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", scheduled.ID, got.StatusID)
		}
	})

	t.Run("should pass limits and ranges to the fetcher", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{}
		s := New(fetcher, repo, WithRangeMax(300))
		runSync(t, s, domain.SyncRequest{Mode: domain.SyncUpcoming})
		runSync(t, s, domain.SyncRequest{Mode: domain.SyncPrevious})
		runSync(t, s, domain.SyncRequest{Mode: domain.SyncRange, Start: "2025-01-01", End: "2025-12-31"})

		want := "[upcoming 100 previous 50 range 2025-01-01 2025-12-31 300]"
		if got := fmt.Sprint(fetcher.calls); got != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
		}
	})

	t.Run("should reject invalid requests without logging a pass", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		s := New(&fakeFetcher{}, repo)
		requests := []domain.SyncRequest{
			{Mode: "sideways"},
			{Mode: domain.SyncRange, Start: "2025-13-01", End: "2025-12-31"},
			{Mode: domain.SyncRange, Start: "2025-12-31", End: "2025-01-01"},
		}
		for _, req := range requests {
			if _, err := s.Run(context.Background(), req); err == nil {
				t.Fatalf("\nwanted:\nerror for %+v\ngot:\nnil", req)
			}
		}

		logs, err := repo.GetSyncLogs(0)
		if err != nil {
			t.Fatalf("getting sync logs: %v", err)
		}
		if len(logs) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(logs))
		}
	})

	t.Run("should report progress", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		var messages []string
		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"))}}
		s := New(fetcher, repo, WithProgress(func(message string) { messages = append(messages, message) }))
		runSync(t, s, domain.SyncRequest{Mode: domain.SyncUpcoming, Limit: 5})

		joined := strings.Join(messages, "\n")
		for _, want := range []string{"Fetching up to 5 upcoming launches", "+ Added: Alpha (2026-02-01)", "1 added"} {
			if !strings.Contains(joined, want) {
				t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, joined)
			}
		}
	})
}

func TestSyncer_Rockets(t *testing.T) {
	t.Run("should refresh externally owned rockets only", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		syncedID, err := repo.CreateRocket(&domain.Rocket{Name: "Falcon 9 Block 5", ExternalID: "164"})
		if err != nil {
			t.Fatalf("creating rocket: %v", err)
		}
		if _, err := repo.CreateRocket(&domain.Rocket{Name: "Homemade"}); err != nil {
			t.Fatalf("creating rocket: %v", err)
		}

		height, stages := 70.0, 2
		fetcher := &fakeFetcher{launchers: map[string]*domain.Rocket{
			"164": {Name: "Falcon 9 Block 5", Manufacturer: "SpaceX", Country: "USA", Height: &height, Stages: &stages},
		}}

		result := runSync(t, New(fetcher, repo), domain.SyncRequest{Mode: domain.SyncRockets})
		if result.Updated != 1 || result.Processed != 1 || result.Status != domain.SyncStatusSuccess {
			t.Fatalf("\nwanted:\n1 updated, SUCCESS\ngot:\n%+v", result)
		}
		if fmt.Sprint(fetcher.calls) != "[launcher 164]" {
			t.Fatalf("\nwanted:\n[launcher 164]\ngot:\n%v", fetcher.calls)
		}

		got, err := repo.GetRocket(syncedID)
		if err != nil {
			t.Fatalf("getting rocket: %v", err)
		}
		if got.Manufacturer != "SpaceX" || got.Height == nil || *got.Height != 70 || got.Stages == nil || *got.Stages != 2 {
			t.Fatalf("\nwanted:\nSpaceX details\ngot:\n%+v", got)
		}

		entry, err := repo.GetLastSync("SPACE_DEVS_ROCKETS")
		if err != nil {
			t.Fatalf("getting sync log: %v", err)
		}
		if entry.RecordsUpdated != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", entry.RecordsUpdated)
		}
	})

	t.Run("should count a rocket the database rejects as skipped", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		if _, err := repo.CreateRocket(&domain.Rocket{Name: "Falcon 9 Block 5", ExternalID: "164"}); err != nil {
			t.Fatalf("creating rocket: %v", err)
		}
		fetcher := &fakeFetcher{launchers: map[string]*domain.Rocket{
			"164": {Name: "Falcon 9 Block 5", Manufacturer: "SpaceX"},
		}}

		failing := &failingRepo{Repository: repo, err: errors.New("disk full")}
		result := runSync(t, New(fetcher, failing), domain.SyncRequest{Mode: domain.SyncRockets})
		if result.Skipped != 1 || result.Updated != 0 || result.Status != domain.SyncStatusPartial {
			t.Fatalf("\nwanted:\n1 skipped, PARTIAL\ngot:\n%+v", result)
		}
		if result.Processed != result.Added+result.Updated+result.Skipped {
			t.Fatalf("\nwanted:\nprocessed = added + updated + skipped\ngot:\n%+v", result)
		}
	})
}

func TestSyncer_RecordLog(t *testing.T) {
	type entry struct {
		level   string
		message string
		log     domain.Log
		syncID  uuid.UUID
	}

	collect := func(entries *[]entry) RecordLogFunc {
		return func(ctx context.Context, level, message string, options ...core.LogOption) {
			var log domain.Log
			for _, option := range options {
				option(&log)
			}
			id, _ := core.SyncIDFromContext(ctx)
			*entries = append(*entries, entry{level: level, message: message, log: log, syncID: id})
		}
	}

	t.Run("should report a rejected update with the launch and pass ids", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		fetcher := &fakeFetcher{pages: []*spacedevs.Page{page(syncedLaunch("a", "Alpha"))}}
		runSync(t, New(fetcher, repo), domain.SyncRequest{Mode: domain.SyncUpcoming})
		existing, err := repo.GetLaunchByExternalID("a")
		if err != nil {
			t.Fatalf("getting launch: %v", err)
		}

		var entries []entry
		failing := &failingRepo{Repository: repo, err: errors.New("disk full")}
		result := runSync(t, New(fetcher, failing, WithRecordLog(collect(&entries))), domain.SyncRequest{Mode: domain.SyncUpcoming})

		if result.Status != domain.SyncStatusPartial || len(entries) != 1 {
			t.Fatalf("\nwanted:\nPARTIAL, 1 entry\ngot:\n%s, %+v", result.Status, entries)
		}
		got := entries[0]
		if got.level != "ERROR" || !strings.Contains(got.message, "disk full") {
			t.Fatalf("\nwanted:\nERROR about disk full\ngot:\n%s %s", got.level, got.message)
		}
		if got.log.LaunchID == nil || *got.log.LaunchID != existing.ID {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", existing.ID, got.log.LaunchID)
		}
		if got.syncID != result.SyncID {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", result.SyncID, got.syncID)
		}
	})

	t.Run("should report malformed records", func(t *testing.T) {
		repo, teardown := setupTestRepo(t)
		defer teardown()

		var entries []entry
		fetcher := &fakeFetcher{pages: []*spacedevs.Page{{Total: 1, Errors: []error{errors.New("record 0: missing id")}}}}
		runSync(t, New(fetcher, repo, WithRecordLog(collect(&entries))), domain.SyncRequest{Mode: domain.SyncUpcoming})

		if len(entries) != 1 || entries[0].level != "WARN" || entries[0].log.LaunchID != nil {
			t.Fatalf("\nwanted:\none WARN entry without launch\ngot:\n%+v", entries)
		}
	})
}
