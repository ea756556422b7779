// Package tui is an interactive requirements browser for one project: a
// filterable requirements tree on the left and the implementation tree of the
// selected requirement on the right.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates a browser program on the alternate screen.
func NewProgram(ctx context.Context, b Backend, projectID string, opts ...tea.ProgramOption) *Program {
	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	allOpts = append(allOpts, opts...)
	return tea.NewProgram(NewModel(ctx, b, projectID), allOpts...)
}

// Run runs the browser, blocking until the user quits or ctx is done.
func Run(ctx context.Context, b Backend, projectID string) error {
	if _, ok := b.Snapshot().Project(projectID); !ok {
		return fmt.Errorf("tui: project %q not found", projectID)
	}
	if _, err := NewProgram(ctx, b, projectID).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
