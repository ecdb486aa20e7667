package engine

import (
	"math"
	"testing"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

func acctWith(id string, fiveHour, weekly *models.RawWindow) models.Account {
	return models.Account{
		ID:              id,
		QuotaSyncStatus: models.SyncStatusLive,
		QuotaSyncedAt:   "2024-06-01T00:00:00Z",
		Quota:           &models.RawQuota{FiveHour: fiveHour, Weekly: weekly},
	}
}

func TestAggregateLimitWeighted(t *testing.T) {
	e := New(nil)
	accounts := []models.Account{
		acctWith("a", &models.RawWindow{
			WindowMinutes: models.Number(300),
			Limit:         models.Number(100),
			Remaining:     models.Number(100),
		}, nil),
		acctWith("b", &models.RawWindow{
			WindowMinutes: models.Number(300),
			Limit:         models.Number(50),
			Remaining:     models.Number(0),
		}, nil),
	}

	got := e.Aggregate(accounts)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := 100.0 * 100 / 150
	if math.Abs(got[0].RemainingPercent-want) > 1e-9 {
		t.Errorf("RemainingPercent = %v, want %v", got[0].RemainingPercent, want)
	}
	if math.Abs(got[0].UsedPercent-(100-want)) > 1e-9 {
		t.Errorf("UsedPercent = %v, want %v", got[0].UsedPercent, 100-want)
	}
	if got[0].AccountCount != 2 {
		t.Errorf("AccountCount = %d, want 2", got[0].AccountCount)
	}
}

func TestAggregateConservation(t *testing.T) {
	e := New(nil)
	accounts := []models.Account{
		acctWith("a", &models.RawWindow{
			WindowMinutes: models.Number(300),
			Limit:         models.Number(80),
			Remaining:     models.Number(20),
		}, nil),
		acctWith("b", &models.RawWindow{
			WindowMinutes: models.Number(300),
			Limit:         models.Number(120),
			Remaining:     models.Number(90),
		}, nil),
		acctWith("c", &models.RawWindow{
			WindowMinutes: models.Number(300),
			Limit:         models.Number(40),
			Remaining:     models.Number(200), // clamped to limit
		}, nil),
	}

	got := e.Aggregate(accounts)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := 100.0 * (20 + 90 + 40) / (80 + 120 + 40)
	if math.Abs(got[0].RemainingPercent-want) > 1e-9 {
		t.Errorf("RemainingPercent = %v, want %v", got[0].RemainingPercent, want)
	}
}

func TestAggregateRatioFallback(t *testing.T) {
	e := New(nil)
	accounts := []models.Account{
		acctWith("a", &models.RawWindow{
			WindowMinutes:  models.Number(300),
			RemainingRatio: models.Number(1.0),
		}, nil),
		acctWith("b", &models.RawWindow{
			WindowMinutes:  models.Number(300),
			RemainingRatio: models.Number(0.5),
		}, nil),
	}

	got := e.Aggregate(accounts)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if math.Abs(got[0].RemainingPercent-75) > 1e-9 {
		t.Errorf("RemainingPercent = %v, want 75", got[0].RemainingPercent)
	}
}

func TestAggregateSortsShortestFirst(t *testing.T) {
	e := New(nil)
	accounts := []models.Account{
		acctWith("a", &models.RawWindow{
			WindowMinutes: models.Number(300),
			Limit:         models.Number(100),
			Remaining:     models.Number(50),
		}, &models.RawWindow{
			WindowMinutes: models.Number(10080),
			Limit:         models.Number(1000),
			Remaining:     models.Number(900),
		}),
	}

	got := e.Aggregate(accounts)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "5h" || got[1].Label != "7d" {
		t.Errorf("labels = %q, %q, want 5h, 7d", got[0].Label, got[1].Label)
	}
}

func TestAggregateMajorityLabel(t *testing.T) {
	e := New(nil)
	accounts := []models.Account{
		acctWith("a", &models.RawWindow{
			Label:         "Session",
			WindowMinutes: models.Number(300),
			Limit:         models.Number(100),
			Remaining:     models.Number(50),
		}, nil),
		acctWith("b", &models.RawWindow{
			Label:         "Session",
			WindowMinutes: models.Number(300),
			Limit:         models.Number(100),
			Remaining:     models.Number(60),
		}, nil),
	}

	got := e.Aggregate(accounts)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Label != "Session" {
		t.Errorf("Label = %q, want %q", got[0].Label, "Session")
	}
}

func TestDeriveFleetPrimarySecondary(t *testing.T) {
	e := New(nil)
	accounts := []models.Account{
		acctWith("a", &models.RawWindow{
			WindowMinutes: models.Number(300),
			Limit:         models.Number(100),
			Remaining:     models.Number(50),
		}, &models.RawWindow{
			WindowMinutes: models.Number(10080),
			Limit:         models.Number(1000),
			Remaining:     models.Number(100),
		}),
	}

	view := e.DeriveFleet(accounts, time.Now())
	if view.Primary == nil || view.Primary.Label != "5h" {
		t.Fatalf("Primary = %v, want 5h bucket", view.Primary)
	}
	if view.Secondary == nil || view.Secondary.Label != "7d" {
		t.Fatalf("Secondary = %v, want 7d bucket", view.Secondary)
	}
	if len(view.Accounts) != 1 {
		t.Fatalf("len(Accounts) = %d, want 1", len(view.Accounts))
	}
	if view.Accounts[0].Health.State != models.HealthHealthy {
		t.Errorf("Health.State = %v, want %v", view.Accounts[0].Health.State, models.HealthHealthy)
	}
	if len(view.Accounts[0].Windows) != 2 {
		t.Errorf("len(Windows) = %d, want 2", len(view.Accounts[0].Windows))
	}
}

func TestDeriveFleetEmpty(t *testing.T) {
	e := New(nil)
	view := e.DeriveFleet(nil, time.Now())
	if view.Primary != nil || view.Secondary != nil {
		t.Errorf("Primary/Secondary = %v/%v, want nil/nil", view.Primary, view.Secondary)
	}
	if len(view.Buckets) != 0 {
		t.Errorf("len(Buckets) = %d, want 0", len(view.Buckets))
	}
}
