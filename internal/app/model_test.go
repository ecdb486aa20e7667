package app

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotafleet/quotafleet-tui/internal/services"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabDashboard {
		t.Error("Default tab should be Dashboard")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tab placeholders, got %d", len(model.tabs))
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	msg := tea.WindowSizeMsg{Width: 100, Height: 50}

	newModel, _ := model.Update(msg)

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.width != 100 {
		t.Errorf("Width = %d, want 100", m.width)
	}
	if m.height != 50 {
		t.Errorf("Height = %d, want 50", m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_Update_TabSwitch(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 100
	model.height = 50

	msg := TabSwitchMsg{Tab: TabHistory}
	newModel, _ := model.Update(msg)
	m := newModel.(*Model)

	if m.activeTab != TabHistory {
		t.Errorf("ActiveTab = %v, want History", m.activeTab)
	}
}

func TestModel_TabKeys(t *testing.T) {
	model := NewModel(nil)

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if model.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v, want Info", model.activeTab)
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyTab})
	if model.activeTab != TabDashboard {
		t.Errorf("ActiveTab = %v, want Dashboard after wrap", model.activeTab)
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v, want Info after prev", model.activeTab)
	}
}

func TestModel_RefreshKey(t *testing.T) {
	model := NewModel(nil)

	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("refresh key should return a command")
	}
	if _, ok := cmd().(RefreshMsg); !ok {
		t.Error("refresh key should emit RefreshMsg")
	}
}

func TestModel_ResumeKey(t *testing.T) {
	model := NewModel(nil)

	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd == nil {
		t.Fatal("resume key should return a command")
	}
	if _, ok := cmd().(ResumePollingMsg); !ok {
		t.Error("resume key should emit ResumePollingMsg")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	model := NewModel(nil)

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !model.showHelp {
		t.Error("help should be shown after ?")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("help should be hidden after esc")
	}
}

func TestModel_HandleServiceEvent_FleetUpdated(t *testing.T) {
	model := NewModel(nil)

	view := testFleetView()
	cmd := model.handleServiceEvent(services.FleetUpdatedEvent{RunID: "run-9", View: view})
	if cmd == nil {
		t.Fatal("FleetUpdatedEvent should return a command")
	}

	if model.state.GetFleetView() != view {
		t.Error("fleet view should be stored in state")
	}
	if model.state.LastRunID() != "run-9" {
		t.Errorf("LastRunID = %q, want run-9", model.state.LastRunID())
	}

	msg, ok := cmd().(FleetLoadedMsg)
	if !ok {
		t.Fatal("command should emit FleetLoadedMsg")
	}
	if msg.RunID != "run-9" {
		t.Errorf("FleetLoadedMsg.RunID = %q, want run-9", msg.RunID)
	}
}

func TestModel_HandleServiceEvent_PollingDisabled(t *testing.T) {
	model := NewModel(nil)

	cmd := model.handleServiceEvent(services.PollingDisabledEvent{Error: errors.New("boom")})
	if cmd == nil {
		t.Error("PollingDisabledEvent should return a command")
	}
	if !model.state.IsPaused() {
		t.Error("state should be paused")
	}
	if model.state.PauseReason() != "boom" {
		t.Errorf("PauseReason = %q, want boom", model.state.PauseReason())
	}
}

func TestModel_HandleServiceEvent_PollingResumed(t *testing.T) {
	model := NewModel(nil)
	model.state.SetPaused(true, "boom")

	cmd := model.handleServiceEvent(services.PollingResumedEvent{})
	if cmd == nil {
		t.Error("PollingResumedEvent should return a command")
	}
	if model.state.IsPaused() {
		t.Error("state should no longer be paused")
	}
}

func TestModel_AddNotification(t *testing.T) {
	model := NewModel(nil)

	cmds := model.handleAddNotification(AddNotificationMsg{
		Type:     NotificationSuccess,
		Message:  "done",
		Duration: DefaultNotificationDuration,
	})
	if len(cmds) != 1 {
		t.Errorf("expected a clear command, got %d", len(cmds))
	}
	if len(model.state.GetNotifications()) != 1 {
		t.Error("notification should be stored")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)
	view := model.View()
	if view == "" {
		t.Error("View returned empty string")
	}
	if !strings.Contains(view, "Loading") {
		t.Error("pre-ready view should show loading")
	}

	model.ready = true
	model.width = 100
	model.height = 40
	view = model.View()
	if view == "" {
		t.Error("View returned empty string after ready")
	}
	if !strings.Contains(view, "Dashboard") {
		t.Error("navbar should list the Dashboard tab")
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		name string
		tab  TabID
		want string
	}{
		{"Dashboard", TabDashboard, "Dashboard"},
		{"History", TabHistory, "History"},
		{"Info", TabInfo, "Info"},
		{"Unknown", TabID(9), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tab.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
