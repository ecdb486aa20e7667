package engine

import (
	"fmt"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// Classify derives the three-state health indicator for one account from
// its sync status and deduplicated windows. It is a pure recomputation; no
// transition state is carried between calls.
//
// A failed sync dominates everything else: stale usage numbers are never
// presented as health. With live data, the account is exhausted only when
// its longest window is dry, because shorter windows re-exhaust on their
// own schedule while the dominant one still has capacity.
func Classify(account *models.Account, windows []models.NormalizedWindow, now time.Time) models.Health {
	if account == nil || !account.IsLive() {
		return models.Health{State: models.HealthExhausted, Label: "Offline"}
	}
	if len(windows) == 0 {
		return models.Health{State: models.HealthHealthy, Label: "Online"}
	}

	var exhausted []models.NormalizedWindow
	for _, w := range windows {
		if w.Ratio <= 0 {
			exhausted = append(exhausted, w)
		}
	}
	if len(exhausted) == 0 {
		return models.Health{State: models.HealthHealthy, Label: "Online"}
	}

	longest := windows[0]
	for _, w := range windows[1:] {
		if w.EffectiveMinutes() > longest.EffectiveMinutes() {
			longest = w
		}
	}
	if longest.Ratio <= 0 {
		return models.Health{
			State:  models.HealthExhausted,
			Label:  fmt.Sprintf("%s exhausted", longest.Label),
			Detail: FormatReset(longest.ResetAt, now),
		}
	}

	// A shorter window is throttled but the dominant one still has
	// capacity; the account recovers when the shortest dry window resets.
	shortest := exhausted[0]
	for _, w := range exhausted[1:] {
		if w.EffectiveMinutes() < shortest.EffectiveMinutes() {
			shortest = w
		}
	}
	return models.Health{
		State:  models.HealthRecharging,
		Label:  fmt.Sprintf("Recharging %s", shortest.Label),
		Detail: FormatReset(shortest.ResetAt, now),
	}
}
