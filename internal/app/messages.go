package app

import (
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
	"github.com/quotafleet/quotafleet-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// FleetLoadedMsg contains a freshly derived fleet view.
type FleetLoadedMsg struct {
	RunID string
	View  *models.FleetView
}

// RefreshMsg requests a manual usage refresh.
type RefreshMsg struct{}

// ResumePollingMsg requests that disabled polling be resumed.
type ResumePollingMsg struct{}

// PollingStateChangedMsg signals that polling was paused or resumed.
type PollingStateChangedMsg struct {
	Paused bool
	Reason string
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SelectedAccountChangedMsg signals that the selected account in the UI changed.
type SelectedAccountChangedMsg struct {
	Index     int
	AccountID string
}
