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

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Map requirements onto directories, files, classes and methods",
}

var nodeAddCmd = &cobra.Command{
	Use:   "add <requirement> <name>",
	Short: "Add an implementation node to a requirement",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		r, err := s.requirement(args[0])
		if err != nil {
			return err
		}
		parentID := s.flagString("parent")
		if parentID != "" {
			if _, err := s.node(parentID); err != nil {
				return err
			}
		}
		n, err := s.tracker.AddNode(s.ctx, r.ID, parentID, state.NodeInput{
			Type:  model.NodeType(s.flagString("type")),
			Name:  args[1],
			Notes: s.flagString("notes"),
		})
		if err != nil {
			return err
		}
		s.printer.Created(string(n.Type), n.Name, n.ID)
		return nil
	}),
}

var nodeUpdateCmd = &cobra.Command{
	Use:   "update <node>",
	Short: "Change a node's type, name, notes or order",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		n, err := s.node(args[0])
		if err != nil {
			return err
		}
		var patch state.NodePatch
		if s.changed("type") {
			patch.Type = ptr(model.NodeType(s.flagString("type")))
		}
		if s.changed("name") {
			patch.Name = ptr(s.flagString("name"))
		}
		if s.changed("notes") {
			patch.Notes = ptr(s.flagString("notes"))
		}
		if s.changed("order") {
			patch.Order = ptr(s.flagInt("order"))
		}
		if patch == (state.NodePatch{}) {
			return errors.New("nothing to update: give at least one of --type, --name, --notes, --order")
		}
		if err := s.tracker.UpdateNode(s.ctx, n.ID, patch); err != nil {
			return err
		}
		s.printer.Success("updated node " + n.ID)
		return nil
	}),
}

var nodeMoveCmd = &cobra.Command{
	Use:   "move <node>",
	Short: "Re-parent a node within its requirement",
	Long: `Re-parent a node within its requirement. Without --parent the node
becomes a root. A node cannot move under itself, under one of its own
descendants, or under a node of another requirement.`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		n, err := s.node(args[0])
		if err != nil {
			return err
		}
		parentID := s.flagString("parent")
		if parentID != "" {
			if _, err := s.node(parentID); err != nil {
				return err
			}
		}
		order := s.flagInt("order")
		if !s.changed("order") {
			order = s.tracker.Snapshot().NextNodeOrder(n.RequirementID, parentID)
		}
		if err := s.tracker.MoveNode(s.ctx, n.ID, parentID, order); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("moved %s to %s", n.Name, parentLabel(s.tracker.Snapshot(), parentID)))
		return nil
	}),
}

var nodeDeleteCmd = &cobra.Command{
	Use:   "delete <node>",
	Short: "Delete a node and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		n, err := s.node(args[0])
		if err != nil {
			return err
		}
		counts, err := s.tracker.DeleteNode(s.ctx, n.ID)
		if err != nil {
			return err
		}
		s.printer.Deleted("node", n.ID, counts)
		return nil
	}),
}

var nodePathCmd = &cobra.Command{
	Use:   "path <node>",
	Short: "Print the names from a node's root down to the node",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		n, err := s.node(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, ui.Path(tree.Path(s.tracker.Snapshot().ImplementationNodes, n.ID)))
		return nil
	}),
}

var nodePruneCmd = &cobra.Command{
	Use:   "prune [requirement]",
	Short: "Delete nodes that cannot be reached from their requirement's roots",
	Args:  cobra.MaximumNArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		reqID := ""
		if len(args) == 1 {
			r, err := s.requirement(args[0])
			if err != nil {
				return err
			}
			reqID = r.ID
		}
		removed, err := s.tracker.PruneUnreachable(s.ctx, reqID)
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			s.printer.Info("no unreachable nodes")
			return nil
		}
		s.printer.Success(fmt.Sprintf("pruned %d unreachable node(s)", len(removed)))
		for _, id := range removed {
			fmt.Fprintln(s.out, id)
		}
		return nil
	}),
}

func parentLabel(st state.State, parentID string) string {
	if parentID == "" {
		return "the root level"
	}
	p, ok := st.Node(parentID)
	if !ok {
		return parentID
	}
	return p.Name
}

func init() {
	nodeAddCmd.Flags().String("type", string(model.NodeFile), "directory, file, class or method")
	nodeAddCmd.Flags().String("parent", "", "parent node id (default: a root node)")
	nodeAddCmd.Flags().String("notes", "", "free-form notes")

	nodeUpdateCmd.Flags().String("type", "", "directory, file, class or method")
	nodeUpdateCmd.Flags().String("name", "", "node name")
	nodeUpdateCmd.Flags().String("notes", "", "notes; an empty value clears them")
	nodeUpdateCmd.Flags().Int("order", 0, "position among siblings")

	nodeMoveCmd.Flags().String("parent", "", "new parent node id (default: the root level)")
	nodeMoveCmd.Flags().Int("order", 0, "position among the new siblings (default: last)")

	nodeCmd.AddCommand(nodeAddCmd, nodeUpdateCmd, nodeMoveCmd, nodeDeleteCmd, nodePathCmd, nodePruneCmd)
	rootCmd.AddCommand(nodeCmd)
}
