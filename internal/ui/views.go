package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8A317"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E8A317")).
			Padding(0, 1).
			Width(60)
	okStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#27AE60"))
	badStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C0392B"))
)

func renderProgress(m Model) string {
	var content strings.Builder

	if p := m.Progress(); p >= 0 {
		content.WriteString(renderProgressBar(p, barWidth))
	} else {
		fmt.Fprintf(&content, "%d frames", m.Frames)
	}

	content.WriteString("\n\n")
	fmt.Fprintf(&content, "Audio: %.2fs | Elapsed: %.1fs\n", m.AudioSeconds(), m.Elapsed.Seconds())
	content.WriteString(renderTiming(m))

	if m.Cancelled {
		content.WriteString("\n")
		content.WriteString(mutedStyle.Render("stopping..."))
	}

	return titleStyle.Render(m.Title) + "\n" +
		mutedStyle.Render("→ "+m.Output) + "\n" +
		boxStyle.Render(content.String()) + "\n" +
		mutedStyle.Render("q to stop") + "\n"
}

func renderTiming(m Model) string {
	load := 100 * m.Monitor.Load()

	overruns := okStyle.Render("0")
	if m.Monitor.Overruns > 0 {
		overruns = badStyle.Render(fmt.Sprint(m.Monitor.Overruns))
	}

	return fmt.Sprintf("Passes: %d | Load: %.1f%% | Overruns: %s", m.Monitor.Passes, load, overruns)
}

func renderSummary(m Model) string {
	var b strings.Builder

	switch {
	case m.Err != nil:
		b.WriteString(badStyle.Render("✗ Render failed: " + m.Err.Error()))
	case m.Cancelled:
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Stopped after %.2fs of audio", m.AudioSeconds())))
	default:
		b.WriteString(okStyle.Render(fmt.Sprintf("✓ Rendered %.2fs of audio", m.AudioSeconds())))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s\n  %s\n", m.Output, renderTiming(m))

	return b.String()
}

func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)

	return fmt.Sprintf("%s %d%%", bar, int(progress*100))
}
