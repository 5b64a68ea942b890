package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	dim    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	inputTextStyle = lipgloss.NewStyle()
	mutedStyle     = lipgloss.NewStyle().Foreground(dim)
	helpStyle      = mutedStyle.MarginTop(1)
	helpKeyStyle   = lipgloss.NewStyle().Foreground(accent)
)

// FormatKey renders one "key description" pair of the help line.
func FormatKey(key, description string) string {
	return helpKeyStyle.Render(key) + " " + mutedStyle.Render(description)
}
