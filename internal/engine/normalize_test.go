package engine

import (
	"math"
	"testing"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

func TestNormalizeUsage(t *testing.T) {
	e := New(nil)
	raw := &models.RawWindow{
		Limit:    models.Number(100),
		Used:     models.Number(80),
		ResetsAt: "2024-01-01T00:00:00Z",
	}

	got := e.Normalize(raw, "", "Session")
	if got.Ratio != 0.2 {
		t.Errorf("Ratio = %v, want 0.2", got.Ratio)
	}
	if got.Value != "20%" {
		t.Errorf("Value = %q, want %q", got.Value, "20%")
	}
	if got.Detail != "80% used / 100% capacity" {
		t.Errorf("Detail = %q, want %q", got.Detail, "80% used / 100% capacity")
	}
	if got.Remaining != 20 {
		t.Errorf("Remaining = %v, want 20", got.Remaining)
	}
	if got.ResetAt != "2024-01-01T00:00:00Z" {
		t.Errorf("ResetAt = %q, want %q", got.ResetAt, "2024-01-01T00:00:00Z")
	}
}

func TestNormalizeRatioAlwaysFinite(t *testing.T) {
	e := New(nil)
	tests := []struct {
		name string
		raw  *models.RawWindow
	}{
		{"Nil", nil},
		{"Empty", &models.RawWindow{}},
		{"ZeroLimit", &models.RawWindow{Limit: models.Number(0), Used: models.Number(10)}},
		{"NegativeLimit", &models.RawWindow{Limit: models.Number(-5)}},
		{"NegativeUsed", &models.RawWindow{Limit: models.Number(100), Used: models.Number(-50)}},
		{"UsedOverLimit", &models.RawWindow{Limit: models.Number(100), Used: models.Number(500)}},
		{"RatioOverOne", &models.RawWindow{RemainingRatio: models.Number(3.5)}},
		{"RatioNegative", &models.RawWindow{RemainingRatio: models.Number(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Normalize(tt.raw, "", "")
			if math.IsNaN(got.Ratio) || got.Ratio < 0 || got.Ratio > 1 {
				t.Errorf("Ratio = %v, want value in [0, 1]", got.Ratio)
			}
		})
	}
}

func TestNormalizeUnavailable(t *testing.T) {
	e := New(nil)
	got := e.Normalize(&models.RawWindow{Label: "requests"}, "", "")
	if got.Ratio != 0 {
		t.Errorf("Ratio = %v, want 0", got.Ratio)
	}
	if got.Detail != UnavailableLabel {
		t.Errorf("Detail = %q, want %q", got.Detail, UnavailableLabel)
	}
}

func TestNormalizeLabelPrecedence(t *testing.T) {
	e := New(nil)
	tests := []struct {
		name     string
		raw      *models.RawWindow
		fallback string
		want     string
	}{
		{"ProviderLabelWins", &models.RawWindow{Label: "Opus usage", WindowMinutes: models.Number(300)}, "Session", "Opus usage"},
		{"PlaceholderDiscarded", &models.RawWindow{Label: "requests", WindowMinutes: models.Number(300)}, "Session", "5h"},
		{"PlaceholderCaseInsensitive", &models.RawWindow{Label: " Tokens ", WindowMinutes: models.Number(10080)}, "Weekly", "7d"},
		{"PlaceholderPunctuation", &models.RawWindow{Label: " Calls! ", WindowMinutes: models.Number(60)}, "", "1h"},
		{"ExplicitMinutes", &models.RawWindow{WindowMinutes: models.Number(300)}, "Session", "5h"},
		{"WeeklyMinutes", &models.RawWindow{WindowMinutes: models.Number(10080)}, "Weekly", "7d"},
		{"InferredSchedule", &models.RawWindow{
			WindowStartedAt: "2024-06-01T00:00:00Z",
			ResetsAt:        "2024-06-01T05:00:00Z",
		}, "Session", "5h"},
		{"Fallback", &models.RawWindow{Label: "calls"}, "Session", "Session"},
		{"FallbackTrimmed", &models.RawWindow{}, "  Weekly  ", "Weekly"},
		{"NothingLeft", &models.RawWindow{}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Normalize(tt.raw, "2024-06-02T00:00:00Z", tt.fallback)
			if got.Label != tt.want {
				t.Errorf("Label = %q, want %q", got.Label, tt.want)
			}
		})
	}
}

func TestNormalizeCustomPlaceholders(t *testing.T) {
	e := New([]string{"usage"})
	got := e.Normalize(&models.RawWindow{Label: "Usage", WindowMinutes: models.Number(300)}, "", "")
	if got.Label != "5h" {
		t.Errorf("Label = %q, want %q", got.Label, "5h")
	}
	// "requests" is no longer filtered once the list is overridden.
	got = e.Normalize(&models.RawWindow{Label: "requests", WindowMinutes: models.Number(300)}, "", "")
	if got.Label != "requests" {
		t.Errorf("Label = %q, want %q", got.Label, "requests")
	}
}

func TestNormalizeScheduleInference(t *testing.T) {
	e := New(nil)
	tests := []struct {
		name     string
		raw      *models.RawWindow
		syncedAt string
		want     *time.Duration
	}{
		{"ExplicitMinutes", &models.RawWindow{WindowMinutes: models.Number(300)}, "", durPtr(5 * time.Hour)},
		{"InferredFromPair", &models.RawWindow{
			WindowStartedAt: "2024-06-01T00:00:00Z",
			ResetsAt:        "2024-06-08T00:00:00Z",
		}, "2024-06-03T00:00:00Z", durPtr(7 * 24 * time.Hour)},
		{"SyntheticStartSuppressed", &models.RawWindow{
			WindowStartedAt: "2024-06-01T00:00:00Z",
			ResetsAt:        "2024-06-01T05:00:00Z",
		}, "2024-06-01T00:00:00Z", nil},
		{"SyntheticWithinTolerance", &models.RawWindow{
			WindowStartedAt: "2024-06-01T00:09:00Z",
			ResetsAt:        "2024-06-01T05:00:00Z",
		}, "2024-06-01T00:00:00Z", nil},
		{"JustOutsideTolerance", &models.RawWindow{
			WindowStartedAt: "2024-06-01T00:11:00Z",
			ResetsAt:        "2024-06-01T05:11:00Z",
		}, "2024-06-01T00:00:00Z", durPtr(5 * time.Hour)},
		{"ResetBeforeStart", &models.RawWindow{
			WindowStartedAt: "2024-06-01T05:00:00Z",
			ResetsAt:        "2024-06-01T00:00:00Z",
		}, "", nil},
		{"StartOnly", &models.RawWindow{WindowStartedAt: "2024-06-01T00:00:00Z"}, "", nil},
		{"NoSignal", &models.RawWindow{}, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Normalize(tt.raw, tt.syncedAt, "")
			if (got.ScheduleDuration == nil) != (tt.want == nil) {
				t.Fatalf("ScheduleDuration = %v, want %v", got.ScheduleDuration, tt.want)
			}
			if tt.want != nil && *got.ScheduleDuration != *tt.want {
				t.Errorf("ScheduleDuration = %v, want %v", *got.ScheduleDuration, *tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	e := New(nil)
	first := e.Normalize(&models.RawWindow{
		Limit:         models.Number(100),
		Used:          models.Number(37),
		WindowMinutes: models.Number(300),
		ResetsAt:      "2024-06-01T05:00:00Z",
		Label:         "requests",
	}, "2024-06-01T00:00:00Z", "Session")

	reRaw := &models.RawWindow{
		Limit:         models.Number(first.Limit),
		Used:          models.Number(first.Used),
		Remaining:     models.Number(first.Remaining),
		WindowMinutes: models.Number(*first.WindowMinutes),
		ResetsAt:      first.ResetAt,
		Label:         first.Label,
	}
	second := e.Normalize(reRaw, "2024-06-01T00:00:00Z", "Session")

	if second.Ratio != first.Ratio {
		t.Errorf("Ratio = %v, want %v", second.Ratio, first.Ratio)
	}
	if second.Label != first.Label {
		t.Errorf("Label = %q, want %q", second.Label, first.Label)
	}
	if *second.ScheduleDuration != *first.ScheduleDuration {
		t.Errorf("ScheduleDuration = %v, want %v", *second.ScheduleDuration, *first.ScheduleDuration)
	}
}

func durPtr(d time.Duration) *time.Duration {
	return &d
}
