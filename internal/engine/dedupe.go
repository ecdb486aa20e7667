package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// Dedupe collapses windows that describe the same underlying rate limit and
// returns the survivors sorted ascending by effective duration. Providers
// sometimes report one rolling window twice under different field
// combinations; two windows with the same signature are exact duplicates,
// while genuinely distinct cadences (a 5h and a 7d window) always keep
// distinct signatures. First occurrence wins, so the pass is stable and
// idempotent.
func Dedupe(windows []models.NormalizedWindow) []models.NormalizedWindow {
	seen := make(map[string]struct{}, len(windows))
	out := make([]models.NormalizedWindow, 0, len(windows))
	for _, w := range windows {
		sig := Signature(&w)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveMinutes() < out[j].EffectiveMinutes()
	})
	return out
}

// Signature derives the duplicate-detection key for a window. Minutes are
// rounded to whole values and the float fields to three decimals so that
// jitter from independent float derivations does not defeat matching.
func Signature(w *models.NormalizedWindow) string {
	wm := int64(-1)
	if w.WindowMinutes != nil {
		wm = int64(math.Round(*w.WindowMinutes))
	}
	sm := int64(-1)
	if w.ScheduleDuration != nil {
		sm = int64(math.Round(w.ScheduleDuration.Minutes()))
	}
	return fmt.Sprintf("%d|%d|%s|%s|%d|%d|%d",
		wm, sm, w.Label, w.ResetAt,
		int64(math.Round(w.Ratio*1000)),
		int64(math.Round(w.Limit*1000)),
		int64(math.Round(w.Used*1000)))
}
