// Package ui provides terminal output for destrack: status messages on
// stderr through Printer, and lipgloss renderings of trees and coverage.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/destrack/internal/state"
)

// Printer writes user-facing status lines. Command output that can be piped
// (trees, exports to stdout) does not go through it.
type Printer struct {
	w io.Writer
}

// New returns a Printer on stderr.
func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewTo returns a Printer writing to w.
func NewTo(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Error reports a failure.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, styleError.Render("error:")+" "+msg)
}

// Warn reports a problem that did not stop the command.
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, styleWarn.Render("⚠ "+msg))
}

// Info writes a muted progress line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, styleMuted.Render(msg))
}

// Success reports a completed action.
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, styleSuccess.Render("✓")+" "+msg)
}

// Created reports a new entity and its id.
func (p *Printer) Created(kind, name, id string) {
	fmt.Fprintf(p.w, "%s %s %s %s\n",
		styleSuccess.Render("✓ created"), kind, styleTitle.Render(name), styleMuted.Render(id))
}

// Deleted reports what a cascading delete removed.
func (p *Printer) Deleted(kind, id string, c state.Counts) {
	fmt.Fprintf(p.w, "%s %s %s %s\n",
		styleDanger.Render("✗ deleted"), kind, id, styleMuted.Render(CountsSummary(c)))
}

// CountsSummary lists the non-zero entries of c, e.g. "(2 subcategories, 6 requirements)".
func CountsSummary(c state.Counts) string {
	parts := []struct {
		n    int
		name string
	}{
		{c.Projects, "project"},
		{c.Categories, "category"},
		{c.Subcategories, "subcategory"},
		{c.Requirements, "requirement"},
		{c.Nodes, "node"},
	}
	out := ""
	for _, part := range parts {
		if part.n == 0 {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += plural(part.n, part.name)
	}
	if out == "" {
		return "(nothing)"
	}
	return "(" + out + ")"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	switch {
	case noun == "category":
		noun = "categories"
	case noun == "subcategory":
		noun = "subcategories"
	default:
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan: headings
	colorAccent     = lipgloss.Color("#FFD700") // Gold: codes, warnings
	colorSuccess    = lipgloss.Color("#00E676") // Green: complete
	colorDanger     = lipgloss.Color("#FF5252") // Red: blocked, errors
	colorMuted      = lipgloss.Color("#636363") // Gray: ids, notes
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray: normal text
	colorBlue       = lipgloss.Color("#5B8DEF") // Blue: in progress
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleHeading = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleNormal  = lipgloss.NewStyle().Foreground(colorMutedLight)
	styleCode    = lipgloss.NewStyle().Foreground(colorAccent)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleDanger  = lipgloss.NewStyle().Foreground(colorDanger)
	styleError   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleBlue    = lipgloss.NewStyle().Foreground(colorBlue)
)
