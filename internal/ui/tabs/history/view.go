package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quotafleet/quotafleet-tui/internal/models"
	"github.com/quotafleet/quotafleet-tui/internal/ui/components"
	"github.com/quotafleet/quotafleet-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !m.hasData() {
		return m.renderEmpty()
	}

	var sections []string

	sections = append(sections,
		m.renderHeader(),
		m.renderChart(),
		m.renderLatest(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) hasData() bool {
	for _, s := range m.series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No historical data recorded yet."),
		styles.HelpStyle.Render("Charts appear as snapshots are persisted on each refresh."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History: " + m.scopeTitle())

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	scopeStyle := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Secondary)

	scopeIndicator := scopeStyle.Render(fmt.Sprintf("[a] %s", m.scope.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator, " ", scopeIndicator)

	var subtitle string
	if !m.lastRefresh.IsZero() {
		subtitle = styles.HelpStyle.Render("Loaded " + m.lastRefresh.Format("15:04:05"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) scopeTitle() string {
	if m.scope == scopeAccount {
		if acc := m.state.SelectedAccount(); acc != nil {
			name := acc.Account.Name()
			if len(name) > 40 {
				name = name[:37] + "..."
			}
			return name
		}
		return "Account"
	}
	return "Fleet"
}

func (m *Model) renderChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Remaining Capacity")), "")

	data := make([][]float64, 0, len(m.series))
	var legend []components.LegendItem
	for i, s := range m.series {
		if len(s.Points) == 0 {
			continue
		}
		values := make([]float64, len(s.Points))
		for j, p := range s.Points {
			values[j] = p.Percent
		}
		data = append(data, values)
		legend = append(legend, components.LegendItem{
			Label: seriesLabel(s),
			Color: components.SeriesColor(i),
		})
	}

	if len(data) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No samples in this range"))
	} else {
		chartWidth := max(cardWidth-12, 30)
		chartHeight := 8

		chart := components.RenderMultiLineChart(data, chartWidth, chartHeight,
			fmt.Sprintf("%% remaining, last %s", m.timeRange.String()))

		for _, line := range strings.Split(chart, "\n") {
			rows = append(rows, "  "+line)
		}

		rows = append(rows, "")
		rows = append(rows, "  "+components.RenderLegend(legend))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderLatest shows the most recent sample per series with a sparkline.
func (m *Model) renderLatest() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Latest Samples")), "")

	sparkWidth := max(cardWidth-36, 10)

	for _, s := range m.series {
		if len(s.Points) == 0 {
			continue
		}

		values := make([]float64, len(s.Points))
		for j, p := range s.Points {
			values[j] = p.Percent
		}
		latest := s.Points[len(s.Points)-1]

		label := lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(14).
			Render(seriesLabel(s))

		percentStr := styles.GetQuotaStyle(latest.Percent).
			Width(6).
			Align(lipgloss.Right).
			Render(fmt.Sprintf("%.0f%%", latest.Percent))

		spark := components.RenderSparkline(values, sparkWidth)

		rows = append(rows, fmt.Sprintf("  %s %s %s  %s",
			label,
			spark,
			percentStr,
			styles.HelpStyle.Render(latest.Timestamp.Format("Jan 2 15:04")),
		))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func seriesLabel(s models.HistorySeries) string {
	if s.Label != "" {
		return s.Label
	}
	return "unlabeled"
}
