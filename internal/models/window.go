package models

import "time"

// NormalizedWindow is the canonical view of one rate-limit window. It is
// built once per refresh pass and never mutated afterwards. All fields are
// plain data; rendering beyond the precomputed strings is the UI's job.
type NormalizedWindow struct {
	// Label is the resolved display label ("5h", "7d", a provider label,
	// or a caller fallback). Empty only when nothing usable existed.
	Label string `json:"label"`

	// WindowMinutes is the provider-declared cadence, when one was given.
	WindowMinutes *float64 `json:"windowMinutes,omitempty"`

	// ScheduleDuration is the best-known length of the window, explicit or
	// inferred from its start/reset pair. Nil means unknown; unknown
	// windows sort after every window with a known duration.
	ScheduleDuration *time.Duration `json:"scheduleDurationMs,omitempty"`

	Limit     float64 `json:"limit"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`

	// Ratio is the remaining-capacity fraction, always defined and clamped
	// to [0, 1]. A window with no usable limit or ratio reports 0.
	Ratio float64 `json:"ratio"`

	ResetAt    string `json:"resetAt,omitempty"`
	ResetLabel string `json:"resetLabel"`

	// Value and Detail are precomputed percentage strings: percent
	// remaining, and a "X% used / 100% capacity" breakdown.
	Value  string `json:"value"`
	Detail string `json:"detail"`
}

// EffectiveMinutes returns the window's duration in minutes for ordering
// purposes: the explicit cadence when present, the inferred schedule
// otherwise, and +Inf for windows with no duration signal at all.
func (w *NormalizedWindow) EffectiveMinutes() float64 {
	if w.WindowMinutes != nil && *w.WindowMinutes > 0 {
		return *w.WindowMinutes
	}
	if w.ScheduleDuration != nil && *w.ScheduleDuration > 0 {
		return w.ScheduleDuration.Minutes()
	}
	return unknownDurationMinutes
}

// HasDuration reports whether the window carries any duration signal.
func (w *NormalizedWindow) HasDuration() bool {
	return w.EffectiveMinutes() < unknownDurationMinutes
}

// unknownDurationMinutes sorts unknown-cadence windows after all others.
const unknownDurationMinutes = float64(1 << 52)

// HealthState is the three-state account health indicator.
type HealthState int

const (
	// HealthHealthy means no window is exhausted (or there is nothing to
	// complain about).
	HealthHealthy HealthState = iota
	// HealthExhausted means the account cannot serve traffic: its sync is
	// broken or its longest window is spent.
	HealthExhausted
	// HealthRecharging means a shorter window is spent but the dominant
	// window still has capacity.
	HealthRecharging
)

// String returns the state name used in logs and persistence.
func (s HealthState) String() string {
	switch s {
	case HealthHealthy:
		return "healthy"
	case HealthExhausted:
		return "exhausted"
	case HealthRecharging:
		return "recharging"
	default:
		return "unknown"
	}
}

// Health is the derived per-account health indicator.
type Health struct {
	State  HealthState `json:"state"`
	Label  string      `json:"label"`
	Detail string      `json:"detail,omitempty"`
}

// DashboardBucket is one fleet-wide cadence grouping, rebuilt from scratch
// on every aggregation pass.
type DashboardBucket struct {
	// Signature identifies the cadence group
	// ("windowMinutes|scheduleMinutes|label").
	Signature string `json:"signature"`

	// Label is the majority-vote display label across contributors.
	Label string `json:"label"`

	WindowMinutes    *float64       `json:"windowMinutes,omitempty"`
	ScheduleDuration *time.Duration `json:"scheduleDurationMs,omitempty"`

	TotalLimit     float64 `json:"totalLimit"`
	TotalRemaining float64 `json:"totalRemaining"`

	// AccountCount is the number of windows that contributed.
	AccountCount int `json:"accountCount"`

	RemainingPercent float64 `json:"remainingPercent"`
	UsedPercent      float64 `json:"usedPercent"`
}

// EffectiveMinutes mirrors NormalizedWindow ordering for buckets.
func (b *DashboardBucket) EffectiveMinutes() float64 {
	if b.WindowMinutes != nil && *b.WindowMinutes > 0 {
		return *b.WindowMinutes
	}
	if b.ScheduleDuration != nil && *b.ScheduleDuration > 0 {
		return b.ScheduleDuration.Minutes()
	}
	return unknownDurationMinutes
}

// AccountView is one account's derived state: its deduplicated windows and
// health indicator.
type AccountView struct {
	Account Account            `json:"account"`
	Windows []NormalizedWindow `json:"windows"`
	Health  Health             `json:"health"`
}

// FleetView is the full derived snapshot the presentation layer consumes.
type FleetView struct {
	Accounts []AccountView     `json:"accounts"`
	Buckets  []DashboardBucket `json:"buckets"`

	// Primary and Secondary point into Buckets: the two shortest-cadence
	// groups, shown first because shorter windows are the more urgent
	// signal. Nil when fewer buckets exist.
	Primary   *DashboardBucket `json:"primary,omitempty"`
	Secondary *DashboardBucket `json:"secondary,omitempty"`

	GeneratedAt time.Time `json:"generatedAt"`
}
