// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// Color definitions for the QuotaFleet theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("45")  // Cyan
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedStyle is used for focused elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// BlurredStyle is used for unfocused elements.
var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// HealthyStyle styles accounts with healthy quota.
var HealthyStyle = lipgloss.NewStyle().
	Foreground(Success).
	Bold(true)

// ExhaustedStyle styles accounts whose longest window is spent.
var ExhaustedStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// RechargingStyle styles accounts waiting on a short window reset.
var RechargingStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true)

// QuotaHighStyle for high remaining percentages (>50%).
var QuotaHighStyle = lipgloss.NewStyle().
	Foreground(Success)

// QuotaMediumStyle for medium remaining percentages (20-50%).
var QuotaMediumStyle = lipgloss.NewStyle().
	Foreground(Warning)

// QuotaLowStyle for low remaining percentages (<20%).
var QuotaLowStyle = lipgloss.NewStyle().
	Foreground(Error)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// PausedBadgeStyle marks the paused polling indicator.
var PausedBadgeStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true).
	Italic(true)

// GetQuotaStyle returns the appropriate style for a remaining percentage.
func GetQuotaStyle(percent float64) lipgloss.Style {
	switch {
	case percent > 50:
		return QuotaHighStyle
	case percent > 20:
		return QuotaMediumStyle
	default:
		return QuotaLowStyle
	}
}

// GetHealthStyle returns the appropriate style for a health state.
func GetHealthStyle(state models.HealthState) lipgloss.Style {
	switch state {
	case models.HealthHealthy:
		return HealthyStyle
	case models.HealthExhausted:
		return ExhaustedStyle
	case models.HealthRecharging:
		return RechargingStyle
	default:
		return BlurredStyle
	}
}

// HealthIcon returns the indicator glyph for a health state.
func HealthIcon(state models.HealthState) string {
	switch state {
	case models.HealthHealthy:
		return "●"
	case models.HealthExhausted:
		return "✕"
	case models.HealthRecharging:
		return "◌"
	default:
		return "○"
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
