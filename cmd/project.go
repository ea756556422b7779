package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Create, list and manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		p, err := s.tracker.AddProject(s.ctx, args[0], s.flagString("description"))
		if err != nil {
			return err
		}
		s.printer.Created("project", p.Name, p.ID)
		return nil
	}),
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: withSession(func(s *session, _ []string) error {
		st := s.tracker.Snapshot()
		fmt.Fprint(s.out, ui.ProjectList(st.ProjectsByUpdated(), st.Selection.ProjectID))
		return nil
	}),
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <project> <name>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		p, err := s.project(args[0])
		if err != nil {
			return err
		}
		if err := s.tracker.UpdateProject(s.ctx, p.ID, state.ProjectPatch{Name: &args[1]}); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("renamed project %s to %q", p.ID, args[1]))
		return nil
	}),
}

var projectDescribeCmd = &cobra.Command{
	Use:   "describe <project> <description>",
	Short: "Set a project's description",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		p, err := s.project(args[0])
		if err != nil {
			return err
		}
		if err := s.tracker.UpdateProject(s.ctx, p.ID, state.ProjectPatch{Description: &args[1]}); err != nil {
			return err
		}
		s.printer.Success("updated description of " + p.Name)
		return nil
	}),
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a project and everything it contains",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		p, err := s.project(args[0])
		if err != nil {
			return err
		}
		counts, err := s.tracker.DeleteProject(s.ctx, p.ID)
		if err != nil {
			return err
		}
		s.printer.Deleted("project", p.ID, counts)
		return nil
	}),
}

func init() {
	projectAddCmd.Flags().StringP("description", "d", "", "project description")

	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectRenameCmd, projectDescribeCmd, projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
