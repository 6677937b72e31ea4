package db

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remix-astronautics/shockwave/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func testSite(t *testing.T, repo *Repository, location, pad, externalID string) uuid.UUID {
	t.Helper()

	id, err := repo.CreateSite(&domain.LaunchSite{
		Location:   location,
		LaunchPad:  pad,
		Country:    "USA",
		ExternalID: externalID,
	})
	if err != nil {
		t.Fatalf("creating site: %v", err)
	}
	return id
}

func testRocket(t *testing.T, repo *Repository, name, externalID string) uuid.UUID {
	t.Helper()

	id, err := repo.CreateRocket(&domain.Rocket{
		Name:       name,
		Family:     "Falcon",
		ExternalID: externalID,
	})
	if err != nil {
		t.Fatalf("creating rocket: %v", err)
	}
	return id
}

func testStatus(t *testing.T, repo *Repository, name string) uuid.UUID {
	t.Helper()

	status, err := repo.GetStatusByName(name)
	if err != nil {
		t.Fatalf("getting status %q: %v", name, err)
	}
	return status.ID
}

// testLaunch builds a launch on a fresh site and rocket. It is not stored.
func testLaunch(t *testing.T, repo *Repository, mission string) *domain.Launch {
	t.Helper()

	start := time.Date(2025, 3, 14, 14, 30, 0, 0, time.UTC)
	return &domain.Launch{
		LaunchDate:  "2025-03-14",
		LaunchTime:  "14:30:00",
		WindowStart: &start,
		SiteID:      testSite(t, repo, "Cape Canaveral "+mission, "SLC-40", ""),
		RocketID:    testRocket(t, repo, "Falcon 9 "+mission, ""),
		StatusID:    testStatus(t, repo, domain.StatusScheduled),
		MissionName: mission,
		OrbitType:   "LEO",
	}
}

func float(f float64) *float64 {
	return &f
}
