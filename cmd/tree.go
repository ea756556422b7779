package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/tree"
	"github.com/papapumpkin/destrack/internal/ui"
)

var treeCmd = &cobra.Command{
	Use:   "tree [project]",
	Short: "Print a project's requirements tree or a requirement's implementation tree",
	Long: `Print the categories, subcategories and requirements of a project,
optionally only those with a given --status. With --requirement, print that
requirement's implementation nodes instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		if ref := s.flagString("requirement"); ref != "" {
			return printImplementationTree(s, ref)
		}
		if len(args) == 0 {
			return errors.New("tree needs a project, or --requirement")
		}
		p, err := s.project(args[0])
		if err != nil {
			return err
		}

		status := model.Status(s.flagString("status"))
		if status != "" && !status.Valid() {
			return fmt.Errorf("unknown status %q", status)
		}
		st := s.tracker.Snapshot()
		reqs := state.FilterByStatus(st.ProjectRequirements(p.ID), status)
		forest := tree.BuildRequirementsTree(st.Categories, st.Subcategories, reqs, p.ID)

		nodeCounts := make(map[string]int)
		for _, n := range st.ProjectNodes(p.ID) {
			nodeCounts[n.RequirementID]++
		}
		fmt.Fprintln(s.out, p.Name)
		fmt.Fprint(s.out, ui.RequirementsTree(forest, nodeCounts))
		return nil
	}),
}

func printImplementationTree(s *session, ref string) error {
	r, err := s.requirement(ref)
	if err != nil {
		return err
	}
	forest := tree.BuildImplementationTree(s.tracker.Snapshot().ImplementationNodes, r.ID)
	fmt.Fprintln(s.out, ui.RequirementLine(r, tree.CountNodes(forest)))
	fmt.Fprint(s.out, ui.ImplementationTree(forest))
	return nil
}

func init() {
	treeCmd.Flags().String("status", "", "only show requirements with this status")
	treeCmd.Flags().StringP("requirement", "r", "", "show the implementation tree of this requirement")
	rootCmd.AddCommand(treeCmd)
}
