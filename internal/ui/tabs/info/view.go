package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotafleet/quotafleet-tui/internal/ui/styles"
	"github.com/quotafleet/quotafleet-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderSourceCard())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	w := m.width - 6
	if w < 50 {
		w = 50
	}
	if w > 80 {
		w = 80
	}
	return w
}

// renderSourceCard renders the usage source and polling status.
func (m *Model) renderSourceCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Usage Source"))
	rows = append(rows, "")

	if m.services != nil {
		rows = append(rows, m.renderRow("Source", m.services.SourceName()))

		lastSync := "never"
		if t := m.services.LastSync(); !t.IsZero() {
			lastSync = t.Format("Jan 2 15:04:05")
		}
		rows = append(rows, m.renderRow("Last Sync", lastSync))

		status := styles.SuccessTextStyle.Render("polling")
		if m.state.IsPaused() {
			status = styles.PausedBadgeStyle.Render("paused")
			if reason := m.state.PauseReason(); reason != "" {
				status += " " + styles.HelpStyle.Render(reason)
			}
		}
		rows = append(rows, m.renderRow("Status", status))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Services not initialized"))
	}

	if m.state.IsPaused() {
		rows = append(rows, "")
		rows = append(rows, styles.HelpStyle.Render("Press 'p' to resume polling"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		if m.config.UsageURL != "" {
			rows = append(rows, m.renderRow("Usage URL", m.config.UsageURL))
		} else {
			rows = append(rows, m.renderRow("Snapshot File", m.config.SnapshotPath))
		}
		rows = append(rows, m.renderRow("Database", m.config.DatabasePath))
		rows = append(rows, m.renderRow("Refresh Interval", m.config.RefreshInterval.String()))
		rows = append(rows, m.renderRow("Placeholders", strings.Join(m.config.PlaceholderLabels, ", ")))
		if m.config.LogPath != "" {
			rows = append(rows, m.renderRow("Log File", m.config.LogPath))
		}
		notifications := "off"
		if m.config.Notifications {
			notifications = "on"
		}
		rows = append(rows, m.renderRow("Notifications", notifications))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderRow renders a key-value row.
func (m *Model) renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About QuotaFleet TUI"))
	rows = append(rows, "")

	rows = append(rows, m.renderRow("Build", version.Info()))
	rows = append(rows, m.renderRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	accountCount := m.state.GetAccountCount()
	rows = append(rows, fmt.Sprintf("Accounts: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", accountCount))))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
