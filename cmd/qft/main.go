// Package main is the entry point for the QuotaFleet TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotafleet/quotafleet-tui/internal/app"
	"github.com/quotafleet/quotafleet-tui/internal/config"
	"github.com/quotafleet/quotafleet-tui/internal/logger"
	"github.com/quotafleet/quotafleet-tui/internal/services"
	"github.com/quotafleet/quotafleet-tui/internal/ui/tabs/dashboard"
	"github.com/quotafleet/quotafleet-tui/internal/ui/tabs/history"
	"github.com/quotafleet/quotafleet-tui/internal/ui/tabs/info"
	"github.com/quotafleet/quotafleet-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Route logs to a file so they don't corrupt the TUI output
	if cfg.LogPath != "" {
		closeLog, logErr := logger.UseFile(cfg.LogPath)
		if logErr != nil {
			return fmt.Errorf("failed to open log file: %w", logErr)
		}
		defer func() {
			_ = closeLog()
		}()
	}

	// 2. Initialize the service manager
	// This starts the usage polling loop and the derivation pipeline
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state),             // Tab 0: Dashboard - fleet buckets and accounts
		history.New(state, svcManager),   // Tab 1: History - persisted snapshots
		info.New(state, cfg, svcManager), // Tab 2: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 7. Run the TUI program; blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`QuotaFleet TUI - fleet-wide quota window monitor

Usage:
  qft [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  r               Refresh usage data
  p               Resume paused polling
  t               Toggle history time range
  a               Toggle history scope (fleet/account)
  ?               Toggle help
  q               Quit`)
}
