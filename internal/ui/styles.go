package ui

import "github.com/charmbracelet/lipgloss"

// Colors adapt to the terminal background so the report stays readable on
// light themes.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.AdaptiveColor{Light: "#0B5394", Dark: "#6FA8DC"})
	LabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#0B5394", Dark: "#6FA8DC"})
	ErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#990000", Dark: "#E06666"})
	FoundStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#38761D", Dark: "#93C47D"})
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

// formatMarker prefixes a report line for a format that was or was not seen.
func formatMarker(found bool) string {
	if found {
		return FoundStyle.Render("+")
	}
	return DimStyle.Render("-")
}
