package info

import (
	"strings"
	"testing"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/app"
	"github.com/quotafleet/quotafleet-tui/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		DatabasePath:      "/tmp/quotafleet.db",
		SnapshotPath:      "/tmp/accounts.json",
		RefreshInterval:   30 * time.Second,
		PlaceholderLabels: []string{"Session", "Weekly"},
		Notifications:     true,
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), testConfig(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil, the tab is static")
	}
}

func TestModel_View(t *testing.T) {
	m := New(app.NewState(), testConfig(), nil)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Usage Source") {
		t.Error("view should include the source card")
	}
	if !strings.Contains(view, "Services not initialized") {
		t.Error("view without services should say so")
	}
	if !strings.Contains(view, "Snapshot File") {
		t.Error("file-backed config should show the snapshot path")
	}
	if !strings.Contains(view, "About QuotaFleet TUI") {
		t.Error("view should include the about card")
	}
}

func TestModel_View_HTTPSource(t *testing.T) {
	cfg := testConfig()
	cfg.UsageURL = "http://localhost:9000/usage"
	m := New(app.NewState(), cfg, nil)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Usage URL") {
		t.Error("URL-backed config should show the usage URL")
	}
	if strings.Contains(view, "Snapshot File") {
		t.Error("URL-backed config should not show the snapshot path")
	}
}

func TestModel_View_Paused(t *testing.T) {
	state := app.NewState()
	state.SetPaused(true, "connection refused")
	m := New(state, testConfig(), nil)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "resume polling") {
		t.Error("paused view should hint at the resume key")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), testConfig(), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}
