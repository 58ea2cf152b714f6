package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/devcgo/devc/internal/events"
	"github.com/devcgo/devc/internal/lifecycle"
)

// Styles contains all lipgloss styles for CLI output
type Styles struct {
	Phase   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Failure lipgloss.Style
	Skipped lipgloss.Style
	Detail  lipgloss.Style
}

// DefaultStyles returns the color styles used on a terminal.
func DefaultStyles() Styles {
	return Styles{
		Phase:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// PlainStyles returns styles with no color, for pipes and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Phase:   plain,
		Success: plain,
		Warning: plain,
		Failure: plain,
		Skipped: plain,
		Detail:  plain,
	}
}

// Status symbols for lifecycle progress lines
const (
	SymbolComplete = "✓"
	SymbolSkipped  = "○"
	SymbolFailed   = "✗"
	SymbolWarning  = "!"
)

// Renderer turns lifecycle events into human-readable progress lines.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer for the writer, with color when the
// writer is a terminal.
func NewRenderer(out io.Writer) *Renderer {
	styles := PlainStyles()
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		styles = DefaultStyles()
	}
	return &Renderer{out: out, styles: styles}
}

// Handle writes one progress line per displayed event. Wire it to the
// event bus with Subscribe.
func (r *Renderer) Handle(event events.Event) {
	switch event.Type {
	case events.PhaseCompleted:
		fmt.Fprintf(r.out, "%s %s\n",
			r.styles.Success.Render(SymbolComplete), r.styles.Phase.Render(event.Phase))
	case events.PhaseSkipped:
		line := fmt.Sprintf("%s %s", SymbolSkipped, event.Phase)
		if event.Detail != "" {
			line += " (" + event.Detail + ")"
		}
		fmt.Fprintln(r.out, r.styles.Skipped.Render(line))
	case events.PhaseFailed:
		fmt.Fprintf(r.out, "%s %s: %s\n",
			r.styles.Failure.Render(SymbolFailed), r.styles.Phase.Render(event.Phase), event.Detail)
	case events.Warning:
		fmt.Fprintf(r.out, "%s %s\n",
			r.styles.Warning.Render(SymbolWarning), event.Detail)
	}
}

// Success formats a final success line.
func (r *Renderer) Success(message string) string {
	return r.styles.Success.Render(SymbolComplete + " " + message)
}

// FormatPlan renders a plan as an indented step list.
func (r *Renderer) FormatPlan(projectName string, plan lifecycle.Plan) string {
	var b strings.Builder

	b.WriteString(r.styles.Phase.Render(fmt.Sprintf("Plan for %s", projectName)))
	b.WriteString("\n")

	for i, step := range plan.Steps {
		b.WriteString(fmt.Sprintf("%d. %s  %s\n", i+1, step.Phase, step.Message))
		if step.Detail.ConfigPath != "" {
			b.WriteString(r.styles.Detail.Render("   config: "+step.Detail.ConfigPath) + "\n")
		}
		if step.Detail.ImageReference != "" {
			b.WriteString(r.styles.Detail.Render("   image: "+step.Detail.ImageReference) + "\n")
		}
		if step.Detail.Dockerfile != "" {
			b.WriteString(r.styles.Detail.Render("   dockerfile: "+step.Detail.Dockerfile) + "\n")
		}
	}

	return b.String()
}
