package shockwave

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/remix-astronautics/shockwave/db"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/remix-astronautics/shockwave/spacedevs"
)

// fakeClient serves one page of launches. When block is set, fetches wait for it to be
// closed after signalling started.
type fakeClient struct {
	mu        sync.Mutex
	launches  []*domain.SyncedLaunch
	malformed []error
	err       error
	block     chan struct{}
	started   chan struct{}
	calls     []string
}

func (f *fakeClient) fetch(call string, fn spacedevs.PageFunc) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	if len(f.launches) > 0 || len(f.malformed) > 0 {
		page := &spacedevs.Page{Total: len(f.launches) + len(f.malformed), Launches: f.launches, Errors: f.malformed}
		if err := fn(page); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeClient) FetchUpcoming(ctx context.Context, limit int, fn spacedevs.PageFunc) error {
	return f.fetch(fmt.Sprintf("upcoming %d", limit), fn)
}

func (f *fakeClient) FetchPrevious(ctx context.Context, limit int, fn spacedevs.PageFunc) error {
	return f.fetch(fmt.Sprintf("previous %d", limit), fn)
}

func (f *fakeClient) FetchRange(ctx context.Context, start, end string, maxRecords int, fn spacedevs.PageFunc) error {
	return f.fetch(fmt.Sprintf("range %s %s %d", start, end, maxRecords), fn)
}

func (f *fakeClient) FetchLauncher(ctx context.Context, id string) (*domain.Rocket, error) {
	return nil, fmt.Errorf("%w: launcher %s returned 404 Not Found", spacedevs.ErrTransport, id)
}

func (f *fakeClient) Search(ctx context.Context, query string, limit int) ([]*domain.SyncedLaunch, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("search %s %d", query, limit))
	f.mu.Unlock()
	return f.launches, f.err
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func setupTestRepo(t *testing.T) *db.Repository {
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
	return db.NewRepo(dbConn)
}

// setupTestPlanner returns a planner over a fresh database and the given client.
func setupTestPlanner(t *testing.T, client *fakeClient, options ...func(*Planner) error) *Planner {
	t.Helper()

	options = append([]func(*Planner) error{WithRepo(setupTestRepo(t)), WithClient(client)}, options...)
	planner, err := New(options...)
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	t.Cleanup(func() { planner.Close() })
	return planner
}

func syncedLaunch(id, mission, rocket string) *domain.SyncedLaunch {
	return &domain.SyncedLaunch{
		ExternalID:  id,
		LaunchDate:  "2026-02-01",
		LaunchTime:  "12:00:00",
		MissionName: mission,
		PayloadName: mission + " payload",
		OrbitType:   "LEO",
		StatusName:  domain.StatusGo,
		Site: domain.LaunchSite{
			Location:   "Cape Canaveral, FL, USA",
			LaunchPad:  "Space Launch Complex 40",
			Country:    "USA",
			ExternalID: "80",
		},
		Rocket: domain.Rocket{
			Name:       rocket,
			ExternalID: rocket,
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("should build a space devs client when none is given", func(t *testing.T) {
		planner, err := New()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, ok := planner.Client.(*spacedevs.Client); !ok {
			t.Fatalf("\nwanted:\n*spacedevs.Client\ngot:\n%T", planner.Client)
		}
		if !planner.Scope.DefaultAllow {
			t.Fatalf("\nwanted:\ndefault allow scope\ngot:\n%+v", planner.Scope)
		}
	})

	t.Run("should keep the given client", func(t *testing.T) {
		client := &fakeClient{}
		planner := setupTestPlanner(t, client)
		if planner.Client != Client(client) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", client, planner.Client)
		}
	})
}

func TestPlanner_Search(t *testing.T) {
	t.Run("should query the client without storing anything", func(t *testing.T) {
		client := &fakeClient{launches: []*domain.SyncedLaunch{syncedLaunch("a", "Starlink Group 6-1", "Falcon 9")}}
		planner := setupTestPlanner(t, client)

		launches, err := planner.Search(context.Background(), "starlink", 5)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(launches) != 1 || launches[0].MissionName != "Starlink Group 6-1" {
			t.Fatalf("\nwanted:\n[Starlink Group 6-1]\ngot:\n%v", launches)
		}

		count, err := planner.Repo.CountLaunches()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if count != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", count)
		}
	})
}
