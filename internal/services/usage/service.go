package usage

import (
	"context"
	"sync"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/logger"
	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// Event represents a usage service event.
type Event struct {
	Error   error
	Payload *models.AccountsPayload
	Type    EventType
}

// EventType defines the type of usage event.
type EventType int

const (
	// EventSnapshot indicates a fresh accounts payload is available.
	EventSnapshot EventType = iota
	// EventRefreshing indicates a refresh is in progress.
	EventRefreshing
	// EventPollingDisabled indicates a refresh failed and polling stopped.
	EventPollingDisabled
	// EventPollingResumed indicates polling was explicitly re-enabled.
	EventPollingResumed
)

// Service polls a Source on a fixed interval and publishes snapshots.
//
// Refreshes are single-flight: a tick that lands while one is running is a
// no-op. A failed refresh disables the polling loop instead of retrying;
// Resume re-enables it explicitly.
type Service struct {
	source   Source
	interval time.Duration

	eventChan chan Event
	stopChan  chan struct{}

	mu         sync.RWMutex
	refreshing bool
	disabled   bool
	snapshot   *models.AccountsPayload
	lastErr    error
	lastSync   time.Time
}

// New creates a usage service and starts polling.
func New(source Source, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	s := &Service{
		source:    source,
		interval:  interval,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	go s.pollLoop()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Snapshot returns the most recent payload, or nil before the first
// successful refresh.
func (s *Service) Snapshot() *models.AccountsPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// LastSync returns when the last successful refresh completed.
func (s *Service) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// LastError returns the error that disabled polling, if any.
func (s *Service) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Paused reports whether polling is disabled after a failure.
func (s *Service) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disabled
}

// SourceName identifies the configured source.
func (s *Service) SourceName() string {
	return s.source.Name()
}

// Refresh triggers an immediate refresh. It is a no-op when one is already
// in flight.
func (s *Service) Refresh() {
	go s.refresh()
}

// Resume re-enables polling after a failure and refreshes immediately.
func (s *Service) Resume() {
	s.mu.Lock()
	if !s.disabled {
		s.mu.Unlock()
		return
	}
	s.disabled = false
	s.lastErr = nil
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventPollingResumed})
	go s.refresh()
}

// pollLoop runs the background polling goroutine.
func (s *Service) pollLoop() {
	s.refresh()

	var changes <-chan struct{}
	if n, ok := s.source.(Notifier); ok {
		changes = n.Changes()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.Paused() {
				continue
			}
			go s.refresh()
		case <-changes:
			if s.Paused() {
				continue
			}
			go s.refresh()
		case <-s.stopChan:
			return
		}
	}
}

// refresh performs one fetch. The guard makes concurrent calls no-ops
// rather than queueing.
func (s *Service) refresh() {
	s.mu.Lock()
	if s.refreshing || s.disabled {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	s.sendEvent(Event{Type: EventRefreshing})

	payload, err := s.source.Fetch(context.Background())
	if err != nil {
		logger.Error("usage refresh failed, polling disabled", "source", s.source.Name(), "error", err)
		s.mu.Lock()
		s.disabled = true
		s.lastErr = err
		s.mu.Unlock()
		s.sendEvent(Event{Type: EventPollingDisabled, Error: err})
		return
	}

	s.mu.Lock()
	s.snapshot = payload
	s.lastErr = nil
	s.lastSync = time.Now()
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventSnapshot, Payload: payload})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the polling loop and the source.
func (s *Service) Close() error {
	close(s.stopChan)
	return s.source.Close()
}
