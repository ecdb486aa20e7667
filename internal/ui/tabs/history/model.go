// Package history provides the history tab for charting persisted snapshots.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotafleet/quotafleet-tui/internal/app"
	"github.com/quotafleet/quotafleet-tui/internal/models"
	"github.com/quotafleet/quotafleet-tui/internal/services"
)

// scope selects which history is charted.
type scope int

const (
	scopeFleet scope = iota
	scopeAccount
)

func (s scope) String() string {
	if s == scopeAccount {
		return "Account"
	}
	return "Fleet"
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	ToggleScope key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		ToggleScope: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "fleet/account scope"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	series    []models.HistorySeries
	scope     scope
	accountID string
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	// Current view state
	timeRange   models.TimeRange
	scope       scope
	series      []models.HistorySeries
	accountID   string
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.Range24h,
		scope:     scopeFleet,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.loadHistoryCmd()
}

// loadHistoryCmd creates a command to load history data for the current
// scope and range.
func (m *Model) loadHistoryCmd() tea.Cmd {
	svc := m.services
	sc := m.scope
	rng := m.timeRange
	state := m.state

	return func() tea.Msg {
		if svc == nil {
			return historyErrorMsg{err: "Services not initialized"}
		}

		if sc == scopeFleet {
			series, err := svc.GetFleetHistory(rng)
			if err != nil {
				return historyErrorMsg{err: err.Error()}
			}
			return historyLoadedMsg{series: series, scope: sc}
		}

		acc := state.SelectedAccount()
		if acc == nil {
			return historyErrorMsg{err: "No account selected"}
		}

		series, err := svc.GetAccountHistory(acc.Account.ID, rng)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		return historyLoadedMsg{series: series, scope: sc, accountID: acc.Account.ID}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.series = msg.series
		m.accountID = msg.accountID
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.FleetLoadedMsg:
		return m.handleFleetLoaded()

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			return m.handleFleetLoaded()
		}

	case app.SelectedAccountChangedMsg:
		// Selection moved on the dashboard; reload when charting an account.
		if m.scope == scopeAccount && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleFleetLoaded() (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	// A new derivation pass landed; refresh the chart if we have nothing
	// yet or the selected account changed underneath us.
	if m.series == nil && !m.loading {
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())
		return m, tea.Batch(cmds...)
	}

	if m.scope == scopeAccount && !m.loading {
		if acc := m.state.SelectedAccount(); acc != nil && acc.Account.ID != m.accountID {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.ToggleScope):
		if m.scope == scopeFleet {
			m.scope = scopeAccount
		} else {
			m.scope = scopeFleet
		}
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.ToggleScope,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.ToggleScope, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
