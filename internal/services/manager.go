// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/quotafleet/quotafleet-tui/internal/config"
	"github.com/quotafleet/quotafleet-tui/internal/db"
	"github.com/quotafleet/quotafleet-tui/internal/engine"
	"github.com/quotafleet/quotafleet-tui/internal/logger"
	"github.com/quotafleet/quotafleet-tui/internal/models"
	"github.com/quotafleet/quotafleet-tui/internal/services/usage"
)

type (
	// FleetUpdatedEvent is emitted when a new derived fleet view is ready.
	FleetUpdatedEvent struct {
		RunID string
		View  *models.FleetView
	}

	// RefreshingEvent is emitted when a usage refresh starts.
	RefreshingEvent struct{}

	// PollingDisabledEvent is emitted when a refresh failed and polling
	// stopped. Polling stays off until explicitly resumed.
	PollingDisabledEvent struct {
		Error error
	}

	// PollingResumedEvent is emitted when polling is re-enabled.
	PollingResumedEvent struct{}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (FleetUpdatedEvent) isServiceEvent()    {}
func (RefreshingEvent) isServiceEvent()      {}
func (PollingDisabledEvent) isServiceEvent() {}
func (PollingResumedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()           {}

// Manager orchestrates the usage source, the derivation engine, and
// persistence, and routes events to TUI subscribers.
type Manager struct {
	mu          sync.RWMutex
	usage       *usage.Service
	engine      *engine.Engine
	database    *db.DB
	notify      bool
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	lastView    *models.FleetView
	prevHealth  map[string]models.HealthState
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		engine:     engine.New(cfg.PlaceholderLabels),
		notify:     cfg.Notifications,
		eventChan:  make(chan ServiceEvent, 100),
		stopChan:   make(chan struct{}),
		prevHealth: make(map[string]models.HealthState),
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var source usage.Source
	if cfg.UsageURL != "" {
		source = usage.NewHTTPSource(cfg.UsageURL)
	} else {
		source, err = usage.NewFileSource(cfg.SnapshotPath)
		if err != nil {
			_ = m.database.Close()
			return nil, fmt.Errorf("failed to open snapshot source: %w", err)
		}
	}

	m.usage = usage.New(source, cfg.RefreshInterval)

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from the usage service to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.usage.Events():
			m.handleUsageEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleUsageEvent(event usage.Event) {
	switch event.Type {
	case usage.EventSnapshot:
		if event.Payload == nil {
			return
		}
		m.deriveAndBroadcast(event.Payload)

	case usage.EventRefreshing:
		m.broadcast(RefreshingEvent{})

	case usage.EventPollingDisabled:
		m.broadcast(PollingDisabledEvent{Error: event.Error})

	case usage.EventPollingResumed:
		m.broadcast(PollingResumedEvent{})
	}
}

// deriveAndBroadcast runs the engine over a fresh snapshot, persists the
// result, and publishes the derived view.
func (m *Manager) deriveAndBroadcast(payload *models.AccountsPayload) {
	view := m.engine.DeriveFleet(payload.Accounts, time.Now())

	m.mu.Lock()
	m.lastView = &view
	m.mu.Unlock()

	m.checkNotifications(&view)

	go m.persistView(&view)

	m.broadcast(FleetUpdatedEvent{
		RunID: uuid.NewString(),
		View:  &view,
	})
}

// checkNotifications raises a desktop notification when an account's health
// state changes. Only transitions notify, never steady state.
func (m *Manager) checkNotifications(view *models.FleetView) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, av := range view.Accounts {
		prev, seen := m.prevHealth[av.Account.ID]
		m.prevHealth[av.Account.ID] = av.Health.State

		if !seen || prev == av.Health.State {
			continue
		}
		if !m.notify {
			continue
		}

		switch av.Health.State {
		case models.HealthExhausted:
			title := fmt.Sprintf("Account exhausted: %s", av.Account.Name())
			_ = beeep.Notify(title, av.Health.Label, "")
		case models.HealthRecharging:
			title := fmt.Sprintf("Account throttled: %s", av.Account.Name())
			_ = beeep.Notify(title, av.Health.Label, "")
		case models.HealthHealthy:
			if prev == models.HealthExhausted {
				title := fmt.Sprintf("Account recovered: %s", av.Account.Name())
				_ = beeep.Notify(title, "Quota available again", "")
			}
		}
	}
}

// persistView records window and bucket snapshots for the history tab.
func (m *Manager) persistView(view *models.FleetView) {
	for _, av := range view.Accounts {
		for _, w := range av.Windows {
			var minutes float64
			if w.WindowMinutes != nil {
				minutes = *w.WindowMinutes
			} else if w.ScheduleDuration != nil {
				minutes = w.ScheduleDuration.Minutes()
			}

			snap := &models.WindowSnapshot{
				AccountID:     av.Account.ID,
				Label:         w.Label,
				Ratio:         w.Ratio,
				Limit:         w.Limit,
				Used:          w.Used,
				Remaining:     w.Remaining,
				WindowMinutes: minutes,
				ResetAt:       w.ResetAt,
				HealthState:   av.Health.State.String(),
				Timestamp:     view.GeneratedAt,
			}
			if err := m.database.InsertWindowSnapshot(snap); err != nil {
				logger.Error("failed to persist window snapshot", "account", av.Account.ID, "error", err)
			}
		}
	}

	for _, b := range view.Buckets {
		snap := &models.FleetSnapshot{
			Signature:        b.Signature,
			Label:            b.Label,
			RemainingPercent: b.RemainingPercent,
			AccountCount:     b.AccountCount,
			Timestamp:        view.GeneratedAt,
		}
		if err := m.database.InsertFleetSnapshot(snap); err != nil {
			logger.Error("failed to persist fleet snapshot", "bucket", b.Signature, "error", err)
		}
	}

	// Keep only what the widest history range can chart.
	cutoff := view.GeneratedAt.Add(-models.Range30d.Duration())
	if _, err := m.database.PruneBefore(cutoff); err != nil {
		logger.Error("failed to prune old snapshots", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// FleetView returns the most recent derived view, or nil before the first
// successful refresh.
func (m *Manager) FleetView() *models.FleetView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastView
}

// RefreshNow triggers an immediate usage refresh.
func (m *Manager) RefreshNow() {
	m.usage.Refresh()
}

// ResumePolling re-enables the polling loop after a failure.
func (m *Manager) ResumePolling() {
	m.usage.Resume()
}

// Paused reports whether polling is disabled.
func (m *Manager) Paused() bool {
	return m.usage.Paused()
}

// LastSync returns when the last successful refresh completed.
func (m *Manager) LastSync() time.Time {
	return m.usage.LastSync()
}

// SourceName identifies the configured usage source.
func (m *Manager) SourceName() string {
	return m.usage.SourceName()
}

// GetAccountHistory retrieves charted window history for one account.
func (m *Manager) GetAccountHistory(accountID string, r models.TimeRange) ([]models.HistorySeries, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return m.database.GetAccountHistory(accountID, r)
}

// GetFleetHistory retrieves charted bucket history across the fleet.
func (m *Manager) GetFleetHistory(r models.TimeRange) ([]models.HistorySeries, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return m.database.GetFleetHistory(r)
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.usage.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
