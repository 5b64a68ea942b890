// Package output prints styled status lines for the CLI.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	green  = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
	amber  = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	red    = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
	blue   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"}
	grey   = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	bold   = lipgloss.NewStyle().Bold(true)
	faint  = lipgloss.NewStyle().Foreground(grey)
	icons  = map[level]string{success: "✓", warning: "⚠", failure: "✗", info: "ℹ"}
	styles = map[level]lipgloss.Style{
		success: bold.Foreground(green),
		warning: bold.Foreground(amber),
		failure: bold.Foreground(red),
		info:    lipgloss.NewStyle().Foreground(blue),
	}
)

type level int

const (
	success level = iota
	warning
	failure
	info
)

var out io.Writer = os.Stdout

// SetOutput redirects status output. Passing nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

func printf(l level, format string, args ...any) {
	icon := styles[l].Render(icons[l] + " ")
	_, _ = fmt.Fprintf(out, "%s%s\n", icon, fmt.Sprintf(format, args...))
}

func Success(format string, args ...any) { printf(success, format, args...) }
func Warning(format string, args ...any) { printf(warning, format, args...) }
func Error(format string, args ...any)   { printf(failure, format, args...) }
func Info(format string, args ...any)    { printf(info, format, args...) }

// Muted prints a dimmed line without an icon.
func Muted(format string, args ...any) {
	_, _ = fmt.Fprintln(out, faint.Render(fmt.Sprintf(format, args...)))
}

// StatusIcon returns the icon for an initializer status.
func StatusIcon(status string) string {
	switch status {
	case "created", "existing":
		return styles[success].Render(icons[success])
	case "partial":
		return styles[warning].Render("○")
	case "failed":
		return styles[failure].Render(icons[failure])
	}
	return faint.Render("•")
}
