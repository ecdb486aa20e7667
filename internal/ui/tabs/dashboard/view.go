package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotafleet/quotafleet-tui/internal/engine"
	"github.com/quotafleet/quotafleet-tui/internal/models"
	"github.com/quotafleet/quotafleet-tui/internal/ui/components"
	"github.com/quotafleet/quotafleet-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderBucketCard())
	sections = append(sections, m.renderAccountList())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("QuotaFleet")
	subtitle := styles.HelpStyle.Render("Fleet-wide quota windows across accounts")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderBucketCard renders the aggregated cadence buckets.
func (m *Model) renderBucketCard() string {
	view := m.state.GetFleetView()
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Fleet Buckets")))

	if view == nil || len(view.Buckets) == 0 {
		rows = append(rows, "")
		rows = append(rows, styles.HelpStyle.Render("  No quota windows reported yet"))
		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	contentWidth := max(cardWidth-6, 30)

	if view.Primary != nil {
		rows = append(rows, "")
		rows = append(rows, m.renderFeaturedBucket("Primary", view.Primary, contentWidth)...)
	}
	if view.Secondary != nil {
		rows = append(rows, "")
		rows = append(rows, m.renderFeaturedBucket("Secondary", view.Secondary, contentWidth)...)
	}

	// Any remaining buckets get a compact single line each.
	if len(view.Buckets) > 2 {
		rows = append(rows, "")
		for i := 2; i < len(view.Buckets); i++ {
			b := &view.Buckets[i]
			percent := m.displayPercent("bucket|"+b.Signature, b.RemainingPercent)
			rows = append(rows, "  "+components.SimpleQuotaBar(percent, bucketTitle(b), contentWidth-2))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderFeaturedBucket(role string, b *models.DashboardBucket, width int) []string {
	var lines []string

	roleStr := lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true).Render(role)
	countStr := styles.HelpStyle.Render(fmt.Sprintf("(%d windows)", b.AccountCount))
	lines = append(lines, fmt.Sprintf("  %s %s %s",
		roleStr,
		lipgloss.NewStyle().Bold(true).Render(bucketTitle(b)),
		countStr,
	))

	percent := m.displayPercent("bucket|"+b.Signature, b.RemainingPercent)
	lines = append(lines, "  "+m.bucketBar.ViewCompact(percent, width-2))

	if b.TotalLimit > 0 {
		lines = append(lines, "  "+styles.HelpStyle.Render(
			fmt.Sprintf("%.0f of %.0f remaining", b.TotalRemaining, b.TotalLimit),
		))
	}

	return lines
}

func bucketTitle(b *models.DashboardBucket) string {
	if b.Label != "" {
		return b.Label
	}
	return "unscheduled"
}

// renderAccountList renders the per-account window breakdown.
func (m *Model) renderAccountList() string {
	accounts := m.state.GetAccounts()
	selected := m.state.GetSelectedAccountIndex()

	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Accounts")))

	if len(accounts) == 0 {
		rows = append(rows, "")
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No accounts in snapshot")))
		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	dividerWidth := max(cardWidth-8, 20)
	divider := lipgloss.NewStyle().Foreground(styles.Subtle).Render(
		"  ├" + strings.Repeat("─", dividerWidth) + "┤",
	)

	rows = append(rows, "")

	for i := range accounts {
		rows = append(rows, m.renderAccountRow(&accounts[i], i == selected, cardWidth-4))
		if i < len(accounts)-1 {
			rows = append(rows, "", divider, "")
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderAccountRow(acc *models.AccountView, selected bool, width int) string {
	var lines []string

	lines = append(lines, m.renderAccountHeader(acc, selected))
	lines = append(lines, "")

	contentWidth := max(width-4, 20)

	if len(acc.Windows) == 0 {
		lines = append(lines, "    "+styles.HelpStyle.Render("No quota windows"))
	} else {
		for j := range acc.Windows {
			lines = append(lines, m.renderWindow(acc.Account.ID, j, &acc.Windows[j], contentWidth)...)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderAccountHeader(acc *models.AccountView, selected bool) string {
	selectionPrefix := "  "
	if selected {
		selectionPrefix = styles.FocusedStyle.Render("▸ ")
	}

	healthStyle := styles.GetHealthStyle(acc.Health.State)
	icon := healthStyle.Render(styles.HealthIcon(acc.Health.State))

	name := acc.Account.Name()
	if len(name) > 35 {
		name = name[:32] + "..."
	}

	badge := healthStyle.Render(acc.Health.Label)
	if acc.Health.Detail != "" {
		badge += " " + styles.HelpStyle.Render(acc.Health.Detail)
	}

	return fmt.Sprintf("%s%s %s  %s",
		selectionPrefix,
		icon,
		lipgloss.NewStyle().Bold(true).Render(name),
		badge,
	)
}

func (m *Model) renderWindow(accountID string, index int, w *models.NormalizedWindow, width int) []string {
	var lines []string

	if w.Detail == engine.UnavailableLabel {
		label := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(windowTitle(w))
		lines = append(lines, fmt.Sprintf("    %s %s",
			label,
			styles.WarningTextStyle.Render(engine.UnavailableLabel),
		))
		return lines
	}

	percent := m.displayPercent(windowAnimKey(accountID, index), w.Ratio*100)
	lines = append(lines, "    "+components.SimpleQuotaBar(percent, windowTitle(w), width-4))

	if w.ResetLabel != "" && w.ResetLabel != "—" {
		lines = append(lines, "      "+styles.HelpStyle.Render(w.ResetLabel))
	}

	return lines
}

func windowTitle(w *models.NormalizedWindow) string {
	if w.Label != "" {
		return w.Label
	}
	return "window"
}
