package engine

import (
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// AccountWindows normalizes and deduplicates one account's raw windows.
// The result is sorted ascending by effective duration with
// unknown-duration windows last.
func (e *Engine) AccountWindows(account *models.Account) []models.NormalizedWindow {
	if account == nil || account.Quota == nil {
		return nil
	}
	named := account.Quota.Windows()
	normalized := make([]models.NormalizedWindow, 0, len(named))
	for _, nw := range named {
		normalized = append(normalized, e.Normalize(nw.Raw, account.QuotaSyncedAt, nw.Fallback))
	}
	return Dedupe(normalized)
}

// DeriveFleet rebuilds the complete derived view from an account snapshot:
// per-account windows and health, the fleet buckets, and the two shortest
// buckets as primary and secondary metrics. It is a pure function of its
// inputs and safe to call concurrently on independent snapshots.
func (e *Engine) DeriveFleet(accounts []models.Account, now time.Time) models.FleetView {
	view := models.FleetView{
		Accounts:    make([]models.AccountView, 0, len(accounts)),
		GeneratedAt: now,
	}

	for i := range accounts {
		acct := accounts[i]
		windows := e.AccountWindows(&acct)
		view.Accounts = append(view.Accounts, models.AccountView{
			Account: acct,
			Windows: windows,
			Health:  Classify(&acct, windows, now),
		})
	}

	view.Buckets = e.Aggregate(accounts)
	if len(view.Buckets) > 0 {
		view.Primary = &view.Buckets[0]
	}
	if len(view.Buckets) > 1 {
		view.Secondary = &view.Buckets[1]
	}
	return view
}
