package models

import "time"

// WindowSnapshot is one persisted point-in-time reading of a normalized
// window (DB model).
type WindowSnapshot struct {
	ID            int64
	AccountID     string
	Label         string
	Ratio         float64
	Limit         float64
	Used          float64
	Remaining     float64
	WindowMinutes float64 // 0 when unknown
	ResetAt       string
	HealthState   string
	Timestamp     time.Time
}

// FleetSnapshot is one persisted fleet-bucket reading (DB model).
type FleetSnapshot struct {
	ID               int64
	Signature        string
	Label            string
	RemainingPercent float64
	AccountCount     int
	Timestamp        time.Time
}

// TimeRange selects how far back history queries reach.
type TimeRange int

const (
	// Range24h covers the last day.
	Range24h TimeRange = iota
	// Range7d covers the last week.
	Range7d
	// Range30d covers the last month.
	Range30d
)

// String returns the label shown in the history tab header.
func (r TimeRange) String() string {
	switch r {
	case Range24h:
		return "24h"
	case Range7d:
		return "7d"
	case Range30d:
		return "30d"
	default:
		return "24h"
	}
}

// Duration returns the range length.
func (r TimeRange) Duration() time.Duration {
	switch r {
	case Range7d:
		return 7 * 24 * time.Hour
	case Range30d:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Next cycles to the following range, wrapping around.
func (r TimeRange) Next() TimeRange {
	switch r {
	case Range24h:
		return Range7d
	case Range7d:
		return Range30d
	default:
		return Range24h
	}
}

// HistoryPoint is one charted sample: a timestamp and a remaining percent.
type HistoryPoint struct {
	Timestamp time.Time
	Percent   float64
}

// HistorySeries is a charted series for one bucket or account window.
type HistorySeries struct {
	Label  string
	Points []HistoryPoint
}
