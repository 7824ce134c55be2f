package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(goodColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer that renders the selected
// command's subcommands, arguments and flags with lipgloss.
func StyledHelpPrinter(title, description string) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		node := ctx.Model.Node
		if sel := ctx.Selected(); sel != nil {
			node = sel
		}

		var sb strings.Builder

		sb.WriteString(TitleStyle.Render(title))
		sb.WriteString("\n")

		desc := description
		if node.Type == kong.CommandNode && node.Help != "" {
			desc = node.Help
		}

		if desc != "" {
			sb.WriteString(helpDescStyle.Render(desc))
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
		sb.WriteString(SectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(strings.TrimSpace(ctx.Model.Name + " " + node.Summary()))
		sb.WriteString("\n")

		writeCommands(&sb, node)
		writeArguments(&sb, node)
		writeFlags(&sb, node)

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())

		return nil
	}
}

func writeCommands(sb *strings.Builder, node *kong.Node) {
	var cmds []*kong.Node

	for _, child := range node.Children {
		if child.Type == kong.CommandNode && !child.Hidden {
			cmds = append(cmds, child)
		}
	}

	if len(cmds) == 0 {
		return
	}

	sb.WriteString("\n")
	sb.WriteString(SectionStyle.Render("Commands:"))
	sb.WriteString("\n")

	for _, cmd := range cmds {
		fmt.Fprintf(sb, "  %s  %s\n", helpArgStyle.Width(10).Render(cmd.Name), cmd.Help)
	}
}

func writeArguments(sb *strings.Builder, node *kong.Node) {
	if len(node.Positional) == 0 {
		return
	}

	sb.WriteString("\n")
	sb.WriteString(SectionStyle.Render("Arguments:"))
	sb.WriteString("\n")

	for _, arg := range node.Positional {
		sb.WriteString("  ")
		sb.WriteString(helpArgStyle.Render(arg.Summary()))

		if arg.Help != "" {
			sb.WriteString("  ")
			sb.WriteString(arg.Help)
		}

		sb.WriteString("\n")
	}
}

func writeFlags(sb *strings.Builder, node *kong.Node) {
	sb.WriteString("\n")
	sb.WriteString(SectionStyle.Render("Flags:"))
	sb.WriteString("\n")

	for _, group := range node.AllFlags(true) {
		for _, f := range group {
			flagStr := "--" + f.Name
			if f.Short != 0 {
				flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
			}

			if !f.IsBool() {
				flagStr += "=" + f.FormatPlaceHolder()
			}

			sb.WriteString("  ")
			sb.WriteString(helpFlagStyle.Render(flagStr))

			if f.Help != "" {
				sb.WriteString("  ")
				sb.WriteString(f.Help)
			}

			if f.HasDefault && f.Default != "" && !f.IsBool() {
				sb.WriteString(" ")
				sb.WriteString(helpDefaultStyle.Render("(default: " + f.Default + ")"))
			}

			sb.WriteString("\n")
		}
	}
}
