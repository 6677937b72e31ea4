package db

import (
	"errors"
	"testing"
	"time"

	"github.com/remix-astronautics/shockwave/domain"
)

func TestSyncLogRepo(t *testing.T) {
	t.Run("should fill in the id and time of a new entry", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		entry := &domain.SyncLog{
			DataSource:   domain.SyncUpcoming.DataSource(),
			RecordsAdded: 3,
			Status:       domain.SyncStatusSuccess,
		}
		if err := repo.InsertSyncLog(entry); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if entry.SyncTime.IsZero() {
			t.Fatalf("\nwanted:\nsync time\ngot:\nzero time")
		}

		got, err := repo.GetLastSync(domain.SyncUpcoming.DataSource())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.ID != entry.ID || got.RecordsAdded != 3 || got.Status != domain.SyncStatusSuccess {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", entry, got)
		}
	})

	t.Run("should return entries newest first", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		base := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
		entries := []*domain.SyncLog{
			{SyncTime: base, DataSource: "SPACE_DEVS_UPCOMING", Status: domain.SyncStatusSuccess},
			{SyncTime: base.Add(time.Hour), DataSource: "SPACE_DEVS_PREVIOUS", Status: domain.SyncStatusPartial, ErrorMessage: "bad record"},
			{SyncTime: base.Add(2 * time.Hour), DataSource: "SPACE_DEVS_UPCOMING", Status: domain.SyncStatusFailed},
		}
		for _, entry := range entries {
			if err := repo.InsertSyncLog(entry); err != nil {
				t.Fatalf("inserting sync log: %v", err)
			}
		}

		got, err := repo.GetSyncLogs(2)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 2 || got[0].ID != entries[2].ID || got[1].ID != entries[1].ID {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", entries[1:], got)
		}
		if got[1].ErrorMessage != "bad record" || !got[1].SyncTime.Equal(entries[1].SyncTime) {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", entries[1], got[1])
		}

		last, err := repo.GetLastSync("SPACE_DEVS_PREVIOUS")
		if err != nil {
			t.Fatalf("getting last sync: %v", err)
		}
		if last.ID != entries[1].ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", entries[1].ID, last.ID)
		}
	})

	t.Run("should return ErrNotFound when a source never synced", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		_, err := repo.GetLastSync("SPACE_DEVS_ROCKETS")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrNotFound, err)
		}
	})
}
