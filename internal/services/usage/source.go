// Package usage fetches account usage snapshots from a configured source
// and drives the polling refresh loop.
package usage

import (
	"context"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// Source produces account usage snapshots. Implementations own their
// transport; fetch timeouts belong to them, not to the service.
type Source interface {
	// Name identifies the source in logs and the info tab.
	Name() string
	// Fetch returns the current accounts payload.
	Fetch(ctx context.Context) (*models.AccountsPayload, error)
	// Close releases transport resources.
	Close() error
}

// Notifier is implemented by sources that can push change notifications,
// letting the service refresh ahead of the next poll tick.
type Notifier interface {
	Changes() <-chan struct{}
}
