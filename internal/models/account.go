// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// SyncStatusLive is the quotaSyncStatus value reported when the last
// upstream usage read succeeded. Anything else is treated as offline.
const SyncStatusLive = "live"

// FlexNumber is a defensively parsed numeric field. Upstream providers
// send numbers, numeric strings, null, empty strings, or garbage for the
// same field; anything that is not a finite number is treated as absent.
type FlexNumber struct {
	Value float64
	Valid bool
}

// UnmarshalJSON accepts a JSON number, a numeric string, or anything else
// (which leaves the field unset). It never returns an error.
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	f.Value = 0
	f.Valid = false

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.set(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		if num, err := strconv.ParseFloat(str, 64); err == nil {
			f.set(num)
		}
	}

	return nil
}

// MarshalJSON renders the number, or null when the field is unset.
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *FlexNumber) set(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	f.Value = v
	f.Valid = true
}

// Number returns a set FlexNumber, mostly for tests and fixtures.
func Number(v float64) FlexNumber {
	var f FlexNumber
	f.set(v)
	return f
}

// RawWindow is one rolling rate-limit window exactly as a provider reported
// it. Every field is optional and untrusted.
type RawWindow struct {
	Limit           FlexNumber `json:"limit"`
	Used            FlexNumber `json:"used"`
	Remaining       FlexNumber `json:"remaining"`
	RemainingRatio  FlexNumber `json:"remainingRatio"`
	WindowMinutes   FlexNumber `json:"windowMinutes"`
	ResetsAt        string     `json:"resetsAt"`
	WindowStartedAt string     `json:"windowStartedAt"`
	Label           string     `json:"label"`
}

// RawQuota carries the windows a provider reports for one account. The
// conventional shape is a short-cadence and a long-cadence window, but
// nothing downstream may assume exactly two or assume which is longer.
type RawQuota struct {
	FiveHour *RawWindow `json:"fiveHour,omitempty"`
	Weekly   *RawWindow `json:"weekly,omitempty"`
}

// NamedWindow pairs a raw window with the fallback display label derived
// from its position in the payload.
type NamedWindow struct {
	Fallback string
	Raw      *RawWindow
}

// Windows returns the present windows in payload order with their
// conventional fallback labels.
func (q *RawQuota) Windows() []NamedWindow {
	if q == nil {
		return nil
	}
	var out []NamedWindow
	if q.FiveHour != nil {
		out = append(out, NamedWindow{Fallback: "Session", Raw: q.FiveHour})
	}
	if q.Weekly != nil {
		out = append(out, NamedWindow{Fallback: "Weekly", Raw: q.Weekly})
	}
	return out
}

// Account is one linked upstream account as delivered by the usage feed.
type Account struct {
	ID                        string     `json:"id"`
	DisplayName               string     `json:"displayName,omitempty"`
	Provider                  string     `json:"provider,omitempty"`
	AuthMethod                string     `json:"authMethod,omitempty"`
	QuotaSyncStatus           string     `json:"quotaSyncStatus,omitempty"`
	QuotaSyncedAt             string     `json:"quotaSyncedAt,omitempty"`
	QuotaSyncError            string     `json:"quotaSyncError,omitempty"`
	QuotaSyncIssue            string     `json:"quotaSyncIssue,omitempty"`
	EstimatedUsageSampleCount FlexNumber `json:"estimatedUsageSampleCount,omitzero"`
	Quota                     *RawQuota  `json:"quota"`
}

// Name returns the account's display name, falling back to its ID.
func (a *Account) Name() string {
	if name := strings.TrimSpace(a.DisplayName); name != "" {
		return name
	}
	return a.ID
}

// IsLive reports whether the last usage sync for this account succeeded.
func (a *Account) IsLive() bool {
	return a.QuotaSyncStatus == SyncStatusLive
}

// AccountsPayload is the top-level shape of the usage feed.
type AccountsPayload struct {
	Accounts []Account `json:"accounts"`
	Version  int       `json:"version,omitempty"`
}

// ParseTimestamp parses an upstream timestamp defensively. Providers emit
// RFC3339 strings with varying precision, and occasionally unix epochs as a
// bare number string. A zero time means "unparseable".
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	if num, err := strconv.ParseFloat(s, 64); err == nil && num > 0 {
		if num > 1e12 {
			return time.UnixMilli(int64(num)).UTC()
		}
		return time.Unix(int64(num), 0).UTC()
	}

	return time.Time{}
}
