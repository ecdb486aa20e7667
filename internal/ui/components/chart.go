package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/quotafleet/quotafleet-tui/internal/ui/styles"
)

// seriesPalette assigns chart colors to series in display order.
var seriesPalette = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Red,
}

// legendColors mirrors seriesPalette for lipgloss rendering.
var legendColors = []lipgloss.Color{
	lipgloss.Color("51"),
	lipgloss.Color("201"),
	lipgloss.Color("226"),
	lipgloss.Color("46"),
	lipgloss.Color("21"),
	lipgloss.Color("196"),
}

// SeriesColor returns the legend color for the series at the given index.
func SeriesColor(index int) lipgloss.Color {
	return legendColors[index%len(legendColors)]
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderMultiLineChart creates a chart with one line per series.
func RenderMultiLineChart(series [][]float64, width, height int, caption string) string {
	if len(series) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// Pad all series to the same length so the x axis lines up.
	maxLen := 0
	for _, s := range series {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	padded := make([][]float64, len(series))
	colors := make([]asciigraph.AnsiColor, len(series))
	for i, s := range series {
		padded[i] = make([]float64, maxLen)
		copy(padded[i], s)
		colors[i] = seriesPalette[i%len(seriesPalette)]
	}

	return asciigraph.PlotMany(padded,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		idx := int(float64(i) * step)
		normalized := int((values[idx] / maxVal) * float64(len(sparkChars)-1))
		if normalized >= len(sparkChars) {
			normalized = len(sparkChars) - 1
		}
		if normalized < 0 {
			normalized = 0
		}
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}
