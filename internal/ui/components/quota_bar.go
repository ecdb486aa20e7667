// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quotafleet/quotafleet-tui/internal/logger"
	"github.com/quotafleet/quotafleet-tui/internal/ui/styles"
)

const (
	gradientLow  = "#ff6b6b"
	gradientHigh = "#51cf66"
)

// QuotaBar renders a remaining-quota gauge with label and percentage.
type QuotaBar struct {
	progress progress.Model
}

// NewQuotaBar creates a new quota bar with gradient colors.
func NewQuotaBar() QuotaBar {
	p := progress.New(
		progress.WithScaledGradient(gradientLow, gradientHigh),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return QuotaBar{progress: p}
}

// Init initializes the progress bar model.
func (q QuotaBar) Init() tea.Cmd {
	return nil
}

// Update handles progress bar messages.
func (q QuotaBar) Update(msg tea.Msg) (QuotaBar, tea.Cmd) {
	model, cmd := q.progress.Update(msg)
	q.progress = model.(progress.Model)
	return q, cmd
}

// SetWidth sets the progress bar width.
func (q *QuotaBar) SetWidth(width int) {
	q.progress.Width = width
}

// View renders the quota bar with label and percentage.
func (q QuotaBar) View(percent float64, label string, width int) string {
	barWidth := width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	q.progress.Width = barWidth

	bar := q.progress.ViewAs(percent / 100)

	percentStr := styles.GetQuotaStyle(percent).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewCompact renders a compact version without label.
func (q QuotaBar) ViewCompact(percent float64, width int) string {
	barWidth := width - 8
	if barWidth < 5 {
		barWidth = 5
	}
	q.progress.Width = barWidth

	bar := q.progress.ViewAs(percent / 100)
	percentStr := styles.GetQuotaStyle(percent).Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// ViewExhausted renders a spent window with an empty bar.
func (q QuotaBar) ViewExhausted(label string, width int) string {
	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	barWidth := width - 30
	if barWidth < 10 {
		barWidth = 10
	}

	emptyBar := lipgloss.NewStyle().
		Foreground(styles.Error).
		Render(strings.Repeat("░", barWidth))

	statusStr := styles.ExhaustedStyle.
		Width(11).
		Align(lipgloss.Right).
		Render("EXHAUSTED")

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, emptyBar, " ", statusStr)
}

// RenderGradientBar renders just the bar characters with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gradientLow, gradientHigh, t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleQuotaBar renders a labeled gradient bar in a single line.
func SimpleQuotaBar(percent float64, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 6
	barWidth := width - labelWidth - percentWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetQuotaStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
