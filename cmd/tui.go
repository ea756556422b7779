package cmd

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/tui"
)

// tuiCmd launches the interactive requirements browser.
var tuiCmd = &cobra.Command{
	Use:   "tui [project]",
	Short: "Browse a project's requirements interactively",
	Long: `Browse a project's requirements tree, filter it by status, step
requirement statuses forward and inspect implementation trees. Without a
project, the most recently updated one is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		if !isStderrTTY() {
			return errors.New("destrack tui requires a TTY (terminal)")
		}

		var projectID string
		if len(args) == 1 {
			p, err := s.project(args[0])
			if err != nil {
				return err
			}
			projectID = p.ID
		} else {
			projects := s.tracker.Snapshot().ProjectsByUpdated()
			if len(projects) == 0 {
				return errors.New("no projects yet: create one with 'destrack project add'")
			}
			projectID = projects[0].ID
		}
		s.tracker.SelectProject(projectID)
		return tui.Run(s.ctx, s.tracker, projectID)
	}),
}

func isStderrTTY() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
