// Package cli holds the lipgloss styling shared by the pedalfx commands:
// help output, version banner, errors and measurement reports.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#E8A317") // amber, like a pedal LED
	accentColor  = lipgloss.Color("#3FA7D6")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
	badColor     = lipgloss.Color("#C0392B")
	goodColor    = lipgloss.Color("#27AE60")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(badColor)

	WarnStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	OKStyle = lipgloss.NewStyle().
		Foreground(goodColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information.
func PrintVersion(w io.Writer, name, version string) {
	fmt.Fprintln(w, TitleStyle.Render(name))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// KV renders one aligned key/value line.
func KV(key string, value string) string {
	return fmt.Sprintf("  %s %s", KeyStyle.Width(14).Render(key+":"), ValueStyle.Render(value))
}
