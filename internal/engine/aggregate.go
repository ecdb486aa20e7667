package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

type bucketAccum struct {
	windowMinutes    *float64
	scheduleDuration *time.Duration
	labelVotes       map[string]int
	labelOrder       []string
	totalLimit       float64
	totalRemaining   float64
	ratioSum         float64
	ratioCount       int
	accountCount     int
}

// Aggregate groups every account's deduplicated windows into cadence
// buckets and computes a remaining-capacity percentage per bucket. Windows
// with real limits contribute limit-weighted sums; windows that only carry
// a ratio fall back to a plain ratio average for their bucket. The result
// is sorted ascending by effective duration so callers can take the first
// two buckets as the primary and secondary dashboard metrics.
func (e *Engine) Aggregate(accounts []models.Account) []models.DashboardBucket {
	accums := make(map[string]*bucketAccum)
	var order []string

	for i := range accounts {
		acct := &accounts[i]
		if acct.Quota == nil {
			continue
		}
		windows := e.AccountWindows(acct)
		for _, w := range windows {
			key := bucketKey(&w)
			b, ok := accums[key]
			if !ok {
				b = &bucketAccum{
					windowMinutes:    w.WindowMinutes,
					scheduleDuration: w.ScheduleDuration,
					labelVotes:       make(map[string]int),
				}
				accums[key] = b
				order = append(order, key)
			}
			if _, voted := b.labelVotes[w.Label]; !voted {
				b.labelOrder = append(b.labelOrder, w.Label)
			}
			b.labelVotes[w.Label]++
			b.accountCount++
			if w.Limit > 0 {
				b.totalLimit += w.Limit
				b.totalRemaining += math.Min(math.Max(w.Remaining, 0), w.Limit)
			} else {
				b.ratioSum += w.Ratio
				b.ratioCount++
			}
		}
	}

	buckets := make([]models.DashboardBucket, 0, len(order))
	for _, key := range order {
		b := accums[key]
		remaining := 0.0
		switch {
		case b.totalLimit > 0:
			remaining = 100 * b.totalRemaining / b.totalLimit
		case b.ratioCount > 0:
			remaining = 100 * b.ratioSum / float64(b.ratioCount)
		}
		remaining = clampPercent(remaining)

		buckets = append(buckets, models.DashboardBucket{
			Signature:        key,
			Label:            majorityLabel(b),
			WindowMinutes:    b.windowMinutes,
			ScheduleDuration: b.scheduleDuration,
			TotalLimit:       b.totalLimit,
			TotalRemaining:   b.totalRemaining,
			AccountCount:     b.accountCount,
			RemainingPercent: remaining,
			UsedPercent:      100 - remaining,
		})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].EffectiveMinutes() < buckets[j].EffectiveMinutes()
	})
	return buckets
}

func bucketKey(w *models.NormalizedWindow) string {
	wm := int64(-1)
	if w.WindowMinutes != nil {
		wm = int64(math.Round(*w.WindowMinutes))
	}
	sm := int64(-1)
	if w.ScheduleDuration != nil {
		sm = int64(math.Round(w.ScheduleDuration.Minutes()))
	}
	return fmt.Sprintf("%d|%d|%s", wm, sm, w.Label)
}

// majorityLabel picks the most frequent contributor label, breaking ties by
// first appearance so the result is deterministic across passes.
func majorityLabel(b *bucketAccum) string {
	best := ""
	bestVotes := -1
	for _, label := range b.labelOrder {
		if v := b.labelVotes[label]; v > bestVotes {
			best = label
			bestVotes = v
		}
	}
	return best
}
