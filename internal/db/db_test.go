package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestNewCreatesSchema(t *testing.T) {
	database := testDB(t)

	for _, table := range []string{"window_snapshots", "fleet_snapshots"} {
		var name string
		err := database.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestInsertWindowSnapshot(t *testing.T) {
	database := testDB(t)

	snap := &models.WindowSnapshot{
		AccountID:     "acct-1",
		Label:         "5h",
		Ratio:         0.42,
		Limit:         100,
		Used:          58,
		Remaining:     42,
		WindowMinutes: 300,
		ResetAt:       "2024-06-01T05:00:00Z",
		HealthState:   "healthy",
	}
	if err := database.InsertWindowSnapshot(snap); err != nil {
		t.Fatalf("InsertWindowSnapshot() failed: %v", err)
	}
	if snap.ID == 0 {
		t.Error("ID was not assigned")
	}
}

func TestGetAccountHistory(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	for i, ratio := range []float64{0.9, 0.6, 0.3} {
		snap := &models.WindowSnapshot{
			AccountID:   "acct-1",
			Label:       "5h",
			Ratio:       ratio,
			HealthState: "healthy",
			Timestamp:   now.Add(time.Duration(i-3) * time.Hour),
		}
		if err := database.InsertWindowSnapshot(snap); err != nil {
			t.Fatalf("InsertWindowSnapshot() failed: %v", err)
		}
	}

	// A different account must not leak into the series.
	other := &models.WindowSnapshot{AccountID: "acct-2", Label: "5h", Ratio: 1, HealthState: "healthy", Timestamp: now}
	if err := database.InsertWindowSnapshot(other); err != nil {
		t.Fatalf("InsertWindowSnapshot() failed: %v", err)
	}

	series, err := database.GetAccountHistory("acct-1", models.Range24h)
	if err != nil {
		t.Fatalf("GetAccountHistory() failed: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("len(series) = %d, want 1", len(series))
	}
	if series[0].Label != "5h" {
		t.Errorf("Label = %q, want %q", series[0].Label, "5h")
	}
	if len(series[0].Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(series[0].Points))
	}
	if series[0].Points[0].Percent != 90 {
		t.Errorf("Points[0].Percent = %v, want 90", series[0].Points[0].Percent)
	}
	for i := 1; i < len(series[0].Points); i++ {
		if series[0].Points[i].Timestamp.Before(series[0].Points[i-1].Timestamp) {
			t.Error("points not in ascending time order")
		}
	}
}

func TestGetFleetHistory(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	for _, snap := range []*models.FleetSnapshot{
		{Signature: "300|300|5h", Label: "5h", RemainingPercent: 70, AccountCount: 2, Timestamp: now.Add(-time.Hour)},
		{Signature: "10080|10080|7d", Label: "7d", RemainingPercent: 90, AccountCount: 2, Timestamp: now.Add(-time.Hour)},
		{Signature: "300|300|5h", Label: "5h", RemainingPercent: 65, AccountCount: 2, Timestamp: now},
	} {
		if err := database.InsertFleetSnapshot(snap); err != nil {
			t.Fatalf("InsertFleetSnapshot() failed: %v", err)
		}
	}

	series, err := database.GetFleetHistory(models.Range24h)
	if err != nil {
		t.Fatalf("GetFleetHistory() failed: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(series))
	}
	if series[0].Label != "5h" || len(series[0].Points) != 2 {
		t.Errorf("series[0] = %q with %d points, want 5h with 2", series[0].Label, len(series[0].Points))
	}
}

func TestPruneBefore(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	old := &models.WindowSnapshot{AccountID: "a", Label: "5h", HealthState: "healthy", Timestamp: now.Add(-48 * time.Hour)}
	recent := &models.WindowSnapshot{AccountID: "a", Label: "5h", HealthState: "healthy", Timestamp: now}
	for _, s := range []*models.WindowSnapshot{old, recent} {
		if err := database.InsertWindowSnapshot(s); err != nil {
			t.Fatalf("InsertWindowSnapshot() failed: %v", err)
		}
	}

	n, err := database.PruneBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}

	series, err := database.GetAccountHistory("a", models.Range7d)
	if err != nil {
		t.Fatalf("GetAccountHistory() failed: %v", err)
	}
	if len(series) != 1 || len(series[0].Points) != 1 {
		t.Errorf("unexpected history after prune: %v", series)
	}
}
