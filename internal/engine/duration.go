// Package engine normalizes raw quota windows into canonical views,
// deduplicates them, classifies per-account health, and aggregates windows
// across the fleet into dashboard buckets. Every function is pure and total:
// independent snapshots can be processed concurrently without coordination,
// and malformed input degrades to documented defaults instead of an error.
package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
	minutesPerWeek = 7 * minutesPerDay
)

// CadenceLabel renders a window length in minutes as a compact cadence
// label: whole days as "{n}d", whole hours as "{n}h", anything else as
// "{n}m". Non-positive or non-finite input yields "".
func CadenceLabel(minutes float64) string {
	if !(minutes > 0) || math.IsInf(minutes, 0) {
		return ""
	}

	m := int(math.Round(minutes))
	if m < 1 {
		m = 1
	}

	switch {
	case m%minutesPerDay == 0:
		return fmt.Sprintf("%dd", m/minutesPerDay)
	case m%minutesPerHour == 0:
		return fmt.Sprintf("%dh", m/minutesPerHour)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// ApproxDuration rounds a duration to a human granularity and renders it
// compactly. Sub-hour durations round to the nearest 5 minutes, sub-2-day
// durations to the nearest hour, sub-5-week durations to the nearest day,
// and everything longer to the nearest week. The count never drops below 1.
func ApproxDuration(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}

	minutes := d.Minutes()

	switch {
	case minutes < minutesPerHour:
		n := int(math.Round(minutes/5)) * 5
		if n < 1 {
			n = 1
		}
		return fmt.Sprintf("%dm", n)
	case minutes < 2*minutesPerDay:
		n := int(math.Round(minutes / minutesPerHour))
		if n < 1 {
			n = 1
		}
		return fmt.Sprintf("%dh", n)
	case minutes < 5*minutesPerWeek:
		n := int(math.Round(minutes / minutesPerDay))
		if n < 1 {
			n = 1
		}
		return fmt.Sprintf("%dd", n)
	default:
		n := int(math.Round(minutes / minutesPerWeek))
		if n < 1 {
			n = 1
		}
		return fmt.Sprintf("%dw", n)
	}
}

// FormatReset renders a reset timestamp relative to now ("resets in ~2h",
// "resets soon" once due). Unparseable input yields "".
func FormatReset(resetAt string, now time.Time) string {
	t := parseTime(resetAt)
	if t.IsZero() {
		return ""
	}
	until := t.Sub(now)
	if until <= 0 {
		return "resets soon"
	}
	return "resets in ~" + ApproxDuration(until)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
