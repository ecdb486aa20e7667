// Package dashboard provides the main dashboard tab for the QuotaFleet TUI.
package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotafleet/quotafleet-tui/internal/app"
	"github.com/quotafleet/quotafleet-tui/internal/models"
	"github.com/quotafleet/quotafleet-tui/internal/ui/components"
)

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	NextAccount  key.Binding
	PrevAccount  key.Binding
	FirstAccount key.Binding
	LastAccount  key.Binding
	Refresh      key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextAccount: key.NewBinding(
			key.WithKeys("n", "j", "down"),
			key.WithHelp("j/n", "next account"),
		),
		PrevAccount: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "prev account"),
		),
		FirstAccount: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first account"),
		),
		LastAccount: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last account"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// AnimationState tracks the state of one bar animation.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the dashboard tab state.
type Model struct {
	state          *app.State
	animations     map[string]*AnimationState
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	bucketBar      components.QuotaBar
	width          int
	height         int
	animationFrame int
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	return &Model{
		state:      state,
		spinner:    components.NewSpinner("Loading fleet..."),
		bucketBar:  components.NewQuotaBar(),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		animations: make(map[string]*AnimationState),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.FleetLoadedMsg:
		m.syncAnimationTargets(time.Now())
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	animating := m.syncAnimationTargets(now)
	m.stepAnimations(now)

	if animating || m.state.IsInitialLoading() || m.state.IsRefreshing() {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	accounts := m.state.GetAccounts()
	accountCount := len(accounts)
	selected := m.state.GetSelectedAccountIndex()

	switch {
	case key.Matches(msg, m.keys.NextAccount):
		if accountCount > 0 {
			return m.selectAccount((selected+1)%accountCount, accounts)
		}
	case key.Matches(msg, m.keys.PrevAccount):
		if accountCount > 0 {
			return m.selectAccount((selected-1+accountCount)%accountCount, accounts)
		}
	case key.Matches(msg, m.keys.FirstAccount):
		if accountCount > 0 {
			return m.selectAccount(0, accounts)
		}
	case key.Matches(msg, m.keys.LastAccount):
		if accountCount > 0 {
			return m.selectAccount(accountCount-1, accounts)
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// selectAccount updates the shared selection so the history tab follows.
func (m *Model) selectAccount(idx int, accounts []models.AccountView) tea.Cmd {
	m.state.SetSelectedAccountIndex(idx)
	accountID := accounts[idx].Account.ID
	return func() tea.Msg {
		return app.SelectedAccountChangedMsg{Index: idx, AccountID: accountID}
	}
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) syncAnimationTargets(now time.Time) (animating bool) {
	view := m.state.GetFleetView()
	if view == nil {
		return false
	}

	for i := range view.Buckets {
		b := &view.Buckets[i]
		if m.updateAnimationState("bucket|"+b.Signature, b.RemainingPercent, now) {
			animating = true
		}
	}

	for i := range view.Accounts {
		acc := &view.Accounts[i]
		for j := range acc.Windows {
			w := &acc.Windows[j]
			animKey := windowAnimKey(acc.Account.ID, j)
			if m.updateAnimationState(animKey, w.Ratio*100, now) {
				animating = true
			}
		}
	}

	return animating
}

func windowAnimKey(accountID string, windowIndex int) string {
	return fmt.Sprintf("%s|%d", accountID, windowIndex)
}

func (m *Model) updateAnimationState(animKey string, target float64, now time.Time) bool {
	state, exists := m.animations[animKey]
	if !exists {
		state = &AnimationState{StartTime: now}
		m.animations[animKey] = state
	}

	if target != state.TargetPercent {
		state.StartPercent = state.CurrentPercent
		state.TargetPercent = target
		state.StartTime = now
	}

	return state.CurrentPercent != state.TargetPercent
}

func (m *Model) stepAnimations(now time.Time) {
	for _, state := range m.animations {
		if state.CurrentPercent != state.TargetPercent {
			elapsed := now.Sub(state.StartTime).Seconds()
			duration := 1.5

			if elapsed >= duration {
				state.CurrentPercent = state.TargetPercent
			} else {
				progress := elapsed / duration
				ease := 1.0 - (1.0-progress)*(1.0-progress)
				state.CurrentPercent = state.StartPercent + (state.TargetPercent-state.StartPercent)*ease
			}
		}
	}
}

// displayPercent returns the animated percentage for a key, or the target
// when no animation is tracked yet.
func (m *Model) displayPercent(animKey string, target float64) float64 {
	if state, ok := m.animations[animKey]; ok {
		return state.CurrentPercent
	}
	return target
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextAccount,
		m.keys.PrevAccount,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextAccount, m.keys.PrevAccount},
		{m.keys.FirstAccount, m.keys.LastAccount},
		{m.keys.Refresh},
	}
}
