package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by the table views.
var (
	primaryColor = lipgloss.AdaptiveColor{
		Light: "#5A56E0",
		Dark:  "#7C3AED",
	}
	secondaryColor = lipgloss.AdaptiveColor{
		Light: "#EE6FF8",
		Dark:  "#06B6D4",
	}
	mutedColor = lipgloss.AdaptiveColor{
		Light: "#9B9B9B",
		Dark:  "#94A3B8",
	}
	fgColor = lipgloss.AdaptiveColor{
		Light: "#1E1E2E",
		Dark:  "#CDD6F4",
	}
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			Padding(0, 1)

	typeRowStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Padding(0, 1)

	nullStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	ruleStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(fgColor)
)

// padString pads a string to the specified width with spaces.
func padString(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncateString truncates a string to maxWidth with ellipsis.
func truncateString(s string, maxWidth int) string {
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return s[:maxWidth]
	}
	return s[:maxWidth-3] + "..."
}
