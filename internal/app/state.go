// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State holds the shared application state consumed by all tabs.
type State struct {
	mu sync.RWMutex

	view          *models.FleetView
	paused        bool
	pauseReason   string
	lastUpdated   time.Time
	lastRunID     string
	selectedIndex int

	initialLoading bool
	refreshing     bool

	notifications   []Notification
	notificationSeq int
}

// NewState creates a new empty application state.
func NewState() *State {
	return &State{
		initialLoading: true,
		notifications:  make([]Notification, 0),
	}
}

// SetFleetView replaces the current fleet view.
func (s *State) SetFleetView(view *models.FleetView, runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = view
	s.lastRunID = runID
	s.lastUpdated = time.Now()
	s.initialLoading = false
	s.refreshing = false

	if view != nil && s.selectedIndex >= len(view.Accounts) {
		s.selectedIndex = 0
	}
}

// GetFleetView returns the current fleet view, which may be nil.
func (s *State) GetFleetView() *models.FleetView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// GetAccounts returns the per-account views from the current fleet view.
func (s *State) GetAccounts() []models.AccountView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.view == nil {
		return nil
	}
	accounts := make([]models.AccountView, len(s.view.Accounts))
	copy(accounts, s.view.Accounts)
	return accounts
}

// GetAccountCount returns the number of accounts in the fleet.
func (s *State) GetAccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.view == nil {
		return 0
	}
	return len(s.view.Accounts)
}

// GetBuckets returns the aggregated dashboard buckets.
func (s *State) GetBuckets() []models.DashboardBucket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.view == nil {
		return nil
	}
	buckets := make([]models.DashboardBucket, len(s.view.Buckets))
	copy(buckets, s.view.Buckets)
	return buckets
}

// LastRunID returns the run identifier of the latest derivation.
func (s *State) LastRunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRunID
}

// SetPaused records whether background polling is paused.
func (s *State) SetPaused(paused bool, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
	s.pauseReason = reason
}

// IsPaused returns true when background polling is paused.
func (s *State) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// PauseReason returns the reason polling was paused, if any.
func (s *State) PauseReason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pauseReason
}

// SetRefreshing marks a refresh as in flight.
func (s *State) SetRefreshing(refreshing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = refreshing
}

// IsRefreshing returns true when a refresh is in flight.
func (s *State) IsRefreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// IsInitialLoading returns true until the first fleet view arrives.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialLoading
}

// GetLastUpdated returns the last time the fleet view was replaced.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// TimeSinceUpdate returns the duration since the last fleet update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.lastUpdated)
}

// GetSelectedAccountIndex returns the currently selected account index.
func (s *State) GetSelectedAccountIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedIndex
}

// SetSelectedAccountIndex updates the selected account index.
func (s *State) SetSelectedAccountIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedIndex = idx
}

// SelectedAccount returns the account view at the selected index, or nil.
func (s *State) SelectedAccount() *models.AccountView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.view == nil || s.selectedIndex < 0 || s.selectedIndex >= len(s.view.Accounts) {
		return nil
	}
	acc := s.view.Accounts[s.selectedIndex]
	return &acc
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns the active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets or updates the loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}
