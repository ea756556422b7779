package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/coverage"
	"github.com/papapumpkin/destrack/internal/ui"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage <project>",
	Short: "Summarize how many requirements have an implementation",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		p, err := s.project(args[0])
		if err != nil {
			return err
		}
		st := s.tracker.Snapshot()
		stats := coverage.Calculate(st.ProjectRequirements(p.ID), st.ProjectNodes(p.ID))
		fmt.Fprint(s.out, ui.Coverage(stats))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(coverageCmd)
}
