package shockwave

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/remix-astronautics/shockwave/domain"
	"github.com/remix-astronautics/shockwave/spacedevs"
)

func TestPlanner_Sync(t *testing.T) {
	t.Run("should merge a pass and report it to the handlers", func(t *testing.T) {
		var (
			results  []*domain.SyncResult
			messages []string
		)
		client := &fakeClient{launches: []*domain.SyncedLaunch{
			syncedLaunch("a", "Alpha", "Falcon 9"),
			syncedLaunch("b", "Bravo", "Falcon 9"),
		}}
		planner := setupTestPlanner(t, client,
			WithSyncHandler(func(result *domain.SyncResult) error {
				results = append(results, result)
				return nil
			}),
			WithProgressHandler(func(message string) {
				messages = append(messages, message)
			}),
		)

		result, err := planner.Sync(context.Background(), domain.SyncRequest{Mode: domain.SyncUpcoming, Limit: 2})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Added != 2 || result.Status != domain.SyncStatusSuccess {
			t.Fatalf("\nwanted:\n2 added, SUCCESS\ngot:\n%+v", result)
		}
		if len(results) != 1 || results[0] != result {
			t.Fatalf("\nwanted:\n[%v]\ngot:\n%v", result, results)
		}
		if len(messages) == 0 {
			t.Fatalf("\nwanted:\nprogress messages\ngot:\nnone")
		}
		if planner.IsSyncing() {
			t.Fatalf("\nwanted:\nnot syncing\ngot:\nsyncing")
		}

		logs, err := planner.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		last := logs[len(logs)-1]
		if last.Level != "INFO" || last.SyncID == nil || *last.SyncID != result.SyncID {
			t.Fatalf("\nwanted:\nINFO entry for sync %s\ngot:\n%+v", result.SyncID, last)
		}
	})

	t.Run("should skip launches outside the scope", func(t *testing.T) {
		client := &fakeClient{launches: []*domain.SyncedLaunch{
			syncedLaunch("a", "Alpha", "Falcon 9"),
			syncedLaunch("b", "Bravo", "Electron"),
		}}
		planner := setupTestPlanner(t, client)
		if err := planner.AddScopeRule("Electron", MatchRocket, true); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		result, err := planner.Sync(context.Background(), domain.SyncRequest{Mode: domain.SyncUpcoming})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Added != 1 || result.Skipped != 1 {
			t.Fatalf("\nwanted:\n1 added, 1 skipped\ngot:\n%+v", result)
		}
	})

	t.Run("should report a failed pass", func(t *testing.T) {
		var results []*domain.SyncResult
		client := &fakeClient{err: spacedevs.ErrTransport}
		planner := setupTestPlanner(t, client, WithSyncHandler(func(result *domain.SyncResult) error {
			results = append(results, result)
			return nil
		}))

		result, err := planner.Sync(context.Background(), domain.SyncRequest{Mode: domain.SyncPrevious})
		if !errors.Is(err, spacedevs.ErrTransport) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", spacedevs.ErrTransport, err)
		}
		if result == nil || result.Status != domain.SyncStatusFailed || len(results) != 1 {
			t.Fatalf("\nwanted:\nFAILED result delivered once\ngot:\n%+v %v", result, results)
		}

		logs, err := planner.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if last := logs[len(logs)-1]; last.Level != "ERROR" {
			t.Fatalf("\nwanted:\nERROR\ngot:\n%s", last.Level)
		}
	})

	t.Run("should log malformed records under the pass", func(t *testing.T) {
		client := &fakeClient{malformed: []error{errors.New("record 0: missing id")}}
		planner := setupTestPlanner(t, client)

		result, err := planner.Sync(context.Background(), domain.SyncRequest{Mode: domain.SyncUpcoming})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		logs, err := planner.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		var found bool
		for _, log := range logs {
			if strings.Contains(log.Message, "missing id") {
				found = log.Level == "WARN" && log.SyncID != nil && *log.SyncID == result.SyncID
			}
		}
		if !found {
			t.Fatalf("\nwanted:\nWARN entry for sync %s\ngot:\n%v", result.SyncID, logs)
		}
	})

	t.Run("should log a request that could not start", func(t *testing.T) {
		planner := setupTestPlanner(t, &fakeClient{})

		result, err := planner.Sync(context.Background(), domain.SyncRequest{Mode: domain.SyncRange, Start: "2025-12-31", End: "2025-01-01"})
		if err == nil || result != nil {
			t.Fatalf("\nwanted:\nnil result and error\ngot:\n%v %v", result, err)
		}

		logs, err := planner.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(logs) != 1 || !strings.HasPrefix(logs[0].Message, "Sync not started") {
			t.Fatalf("\nwanted:\none 'Sync not started' entry\ngot:\n%v", logs)
		}

		entries, err := planner.Repo.GetSyncLogs(0)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("\nwanted:\nno sync log rows\ngot:\n%v", entries)
		}
	})

	t.Run("should fail without a repository", func(t *testing.T) {
		planner, err := New(WithClient(&fakeClient{}))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := planner.Sync(context.Background(), domain.SyncRequest{Mode: domain.SyncUpcoming}); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestPlanner_StartSync(t *testing.T) {
	t.Run("should refuse a second pass while one is running", func(t *testing.T) {
		client := &fakeClient{
			launches: []*domain.SyncedLaunch{syncedLaunch("a", "Alpha", "Falcon 9")},
			block:    make(chan struct{}),
			started:  make(chan struct{}, 1),
		}
		var (
			mu      sync.Mutex
			results []*domain.SyncResult
		)
		planner := setupTestPlanner(t, client, WithSyncHandler(func(result *domain.SyncResult) error {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, result)
			return nil
		}))

		if err := planner.StartSync(context.Background(), domain.SyncRequest{Mode: domain.SyncUpcoming}); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		<-client.started

		if !planner.IsSyncing() {
			t.Fatalf("\nwanted:\nsyncing\ngot:\nnot syncing")
		}
		if err := planner.StartSync(context.Background(), domain.SyncRequest{Mode: domain.SyncPrevious}); !errors.Is(err, domain.ErrSyncInProgress) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrSyncInProgress, err)
		}
		if _, err := planner.Sync(context.Background(), domain.SyncRequest{Mode: domain.SyncPrevious}); !errors.Is(err, domain.ErrSyncInProgress) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrSyncInProgress, err)
		}

		close(client.block)
		planner.Wait()

		if planner.IsSyncing() {
			t.Fatalf("\nwanted:\nnot syncing\ngot:\nsyncing")
		}
		mu.Lock()
		defer mu.Unlock()
		if len(results) != 1 || results[0].Added != 1 {
			t.Fatalf("\nwanted:\none result with 1 added\ngot:\n%v", results)
		}
		if calls := client.Calls(); !reflect.DeepEqual(calls, []string{"upcoming 100"}) {
			t.Fatalf("\nwanted:\n[upcoming 100]\ngot:\n%v", calls)
		}
	})
}

func TestPlanner_Schedule(t *testing.T) {
	t.Run("should reject an invalid spec", func(t *testing.T) {
		planner := setupTestPlanner(t, &fakeClient{})

		if err := planner.StartSchedule("every now and then"); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
		if got := planner.ScheduleSpec(); got != "" {
			t.Fatalf("\nwanted:\nno schedule\ngot:\n%s", got)
		}
	})

	t.Run("should replace and stop a schedule", func(t *testing.T) {
		planner := setupTestPlanner(t, &fakeClient{})

		for _, spec := range []string{"@every 6h", "0 */2 * * *"} {
			if err := planner.StartSchedule(spec); err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if got := planner.ScheduleSpec(); got != spec {
				t.Fatalf("\nwanted:\n%s\ngot:\n%s", spec, got)
			}
		}

		planner.StopSchedule()
		if got := planner.ScheduleSpec(); got != "" {
			t.Fatalf("\nwanted:\nno schedule\ngot:\n%s", got)
		}
	})

	t.Run("should skip a trigger while a pass is running", func(t *testing.T) {
		client := &fakeClient{block: make(chan struct{}), started: make(chan struct{}, 1)}
		planner := setupTestPlanner(t, client)

		if err := planner.StartSync(context.Background(), domain.SyncRequest{Mode: domain.SyncPrevious}); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		<-client.started

		planner.scheduledSync(context.Background())

		close(client.block)
		planner.Wait()

		logs, err := planner.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		var skipped int
		for _, log := range logs {
			if log.Level == "WARN" && strings.HasPrefix(log.Message, "Scheduled sync skipped") {
				skipped++
			}
		}
		if skipped != 1 {
			t.Fatalf("\nwanted:\none skipped trigger\ngot:\n%v", logs)
		}
		if calls := client.Calls(); !reflect.DeepEqual(calls, []string{"previous 50"}) {
			t.Fatalf("\nwanted:\n[previous 50]\ngot:\n%v", calls)
		}
	})

	t.Run("should run an upcoming pass on trigger", func(t *testing.T) {
		client := &fakeClient{launches: []*domain.SyncedLaunch{syncedLaunch("a", "Alpha", "Falcon 9")}}
		planner := setupTestPlanner(t, client)

		planner.scheduledSync(context.Background())

		count, err := planner.Repo.CountLaunches()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if count != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", count)
		}
	})
}
