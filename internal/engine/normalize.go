package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// UnavailableLabel is reported when a window carries no usable limit or
// ratio data at all.
const UnavailableLabel = "Live usage unavailable"

// syntheticStartTolerance is how close a window's start timestamp may be to
// the account's sync timestamp before the start is considered an artifact
// of first observation rather than a real window boundary.
const syntheticStartTolerance = 10 * time.Minute

// DefaultPlaceholders are provider labels that carry no cadence information
// and are discarded during label resolution. The list is configuration;
// deployments extend it as new upstream quirks appear.
func DefaultPlaceholders() []string {
	return []string{"requests", "tokens", "calls"}
}

// Engine holds the normalization configuration. The zero value is not
// usable; construct with New.
type Engine struct {
	placeholders map[string]struct{}
}

// New returns an Engine that filters the given placeholder labels. An empty
// list falls back to DefaultPlaceholders.
func New(placeholders []string) *Engine {
	if len(placeholders) == 0 {
		placeholders = DefaultPlaceholders()
	}
	set := make(map[string]struct{}, len(placeholders))
	for _, p := range placeholders {
		if key := foldLabel(p); key != "" {
			set[key] = struct{}{}
		}
	}
	return &Engine{placeholders: set}
}

// foldLabel lowercases a label and strips whitespace and punctuation so
// placeholder matching is insensitive to provider formatting.
func foldLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (e *Engine) isPlaceholder(label string) bool {
	_, ok := e.placeholders[foldLabel(label)]
	return ok
}

func parseTime(s string) time.Time {
	return models.ParseTimestamp(s)
}

// Normalize turns one raw window record into its canonical view. It never
// fails: every numeric and temporal field is defensively parsed and falls
// back to a safe default, and the returned ratio is always finite and
// clamped to [0, 1]. accountSyncedAt is the account's quotaSyncedAt value,
// used to detect synthetic window starts; fallback is the label of last
// resort when neither the provider label nor any cadence signal survives.
func (e *Engine) Normalize(raw *models.RawWindow, accountSyncedAt, fallback string) models.NormalizedWindow {
	if raw == nil {
		raw = &models.RawWindow{}
	}

	out := models.NormalizedWindow{
		ResetLabel: "—",
	}

	var windowMinutes float64
	if raw.WindowMinutes.Valid && raw.WindowMinutes.Value > 0 {
		windowMinutes = raw.WindowMinutes.Value
		out.WindowMinutes = &windowMinutes
	}

	out.ScheduleDuration = e.inferSchedule(raw, windowMinutes, accountSyncedAt)

	if reset := parseTime(raw.ResetsAt); !reset.IsZero() {
		out.ResetAt = reset.UTC().Format(time.RFC3339)
		out.ResetLabel = reset.UTC().Format("Jan 2 15:04 MST")
	}

	e.resolveUsage(raw, &out)
	out.Label = e.resolveLabel(raw, &out, fallback)

	return out
}

// inferSchedule derives the best-known window duration. An explicit
// windowMinutes is authoritative; otherwise the start/reset pair is used,
// unless the start is synthetic (within syntheticStartTolerance of the
// account's sync time, meaning it records first observation, not a real
// boundary). Nil means the duration is unknown.
func (e *Engine) inferSchedule(raw *models.RawWindow, windowMinutes float64, accountSyncedAt string) *time.Duration {
	if windowMinutes > 0 {
		d := time.Duration(windowMinutes * float64(time.Minute))
		return &d
	}

	start := parseTime(raw.WindowStartedAt)
	if start.IsZero() {
		return nil
	}

	if synced := parseTime(accountSyncedAt); !synced.IsZero() {
		delta := start.Sub(synced)
		if delta < 0 {
			delta = -delta
		}
		if delta <= syntheticStartTolerance {
			return nil
		}
	}

	reset := parseTime(raw.ResetsAt)
	if reset.IsZero() || !reset.After(start) {
		return nil
	}

	d := reset.Sub(start)
	return &d
}

// resolveUsage fills limit/used/remaining/ratio and the precomputed
// percentage strings.
func (e *Engine) resolveUsage(raw *models.RawWindow, out *models.NormalizedWindow) {
	if raw.Limit.Valid && raw.Limit.Value > 0 {
		limit := raw.Limit.Value
		used := nonNegative(raw.Used)
		var remaining float64
		if raw.Remaining.Valid {
			remaining = math.Max(raw.Remaining.Value, 0)
		} else {
			remaining = math.Max(limit-used, 0)
		}
		if !raw.Used.Valid {
			used = math.Max(limit-remaining, 0)
		}

		ratio := remaining / limit
		if raw.RemainingRatio.Valid {
			ratio = raw.RemainingRatio.Value
		}

		out.Limit = limit
		out.Used = used
		out.Remaining = remaining
		out.Ratio = clamp01(ratio)
		setPercentStrings(out)
		return
	}

	if raw.RemainingRatio.Valid {
		out.Ratio = clamp01(raw.RemainingRatio.Value)
		setPercentStrings(out)
		return
	}

	// No usable limit or ratio: degraded but well-defined.
	out.Ratio = 0
	out.Value = "0%"
	out.Detail = UnavailableLabel
}

func setPercentStrings(out *models.NormalizedWindow) {
	remainingPct := int(math.Round(out.Ratio * 100))
	out.Value = fmt.Sprintf("%d%%", remainingPct)
	out.Detail = fmt.Sprintf("%d%% used / 100%% capacity", 100-remainingPct)
}

// resolveLabel applies the label precedence: provider label (unless it is a
// generic placeholder), explicit cadence, inferred cadence, caller
// fallback, empty.
func (e *Engine) resolveLabel(raw *models.RawWindow, out *models.NormalizedWindow, fallback string) string {
	if label := strings.TrimSpace(raw.Label); label != "" && !e.isPlaceholder(label) {
		return label
	}

	if out.WindowMinutes != nil {
		if label := CadenceLabel(*out.WindowMinutes); label != "" {
			return label
		}
	} else if out.ScheduleDuration != nil {
		if label := CadenceLabel(math.Round(out.ScheduleDuration.Minutes())); label != "" {
			return label
		}
	}

	return strings.TrimSpace(fallback)
}

func nonNegative(f models.FlexNumber) float64 {
	if !f.Valid || f.Value < 0 {
		return 0
	}
	return f.Value
}
