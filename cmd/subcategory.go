package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/state"
)

var subcategoryCmd = &cobra.Command{
	Use:     "subcategory",
	Aliases: []string{"sub"},
	Short:   "Manage the subcategories of a category",
}

var subcategoryAddCmd = &cobra.Command{
	Use:   "add <category> <name>",
	Short: "Append a subcategory to a category",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		c, err := s.category(args[0])
		if err != nil {
			return err
		}
		sub, err := s.tracker.AddSubcategory(s.ctx, c.ID, args[1])
		if err != nil {
			return err
		}
		s.printer.Created("subcategory", sub.Name, sub.ID)
		return nil
	}),
}

var subcategoryRenameCmd = &cobra.Command{
	Use:   "rename <subcategory> <name>",
	Short: "Rename a subcategory",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		sub, err := s.subcategory(args[0])
		if err != nil {
			return err
		}
		if err := s.tracker.UpdateSubcategory(s.ctx, sub.ID, state.SubcategoryPatch{Name: &args[1]}); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("renamed subcategory %s to %q", sub.ID, args[1]))
		return nil
	}),
}

var subcategoryReorderCmd = &cobra.Command{
	Use:   "reorder <subcategory> <order>",
	Short: "Set a subcategory's position among its siblings",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		sub, err := s.subcategory(args[0])
		if err != nil {
			return err
		}
		order, err := parseOrder(args[1])
		if err != nil {
			return err
		}
		if err := s.tracker.UpdateSubcategory(s.ctx, sub.ID, state.SubcategoryPatch{Order: &order}); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("subcategory %s now at order %d", sub.Name, order))
		return nil
	}),
}

var subcategoryDeleteCmd = &cobra.Command{
	Use:   "delete <subcategory>",
	Short: "Delete a subcategory with its requirements and nodes",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		sub, err := s.subcategory(args[0])
		if err != nil {
			return err
		}
		counts, err := s.tracker.DeleteSubcategory(s.ctx, sub.ID)
		if err != nil {
			return err
		}
		s.printer.Deleted("subcategory", sub.ID, counts)
		return nil
	}),
}

func init() {
	subcategoryCmd.AddCommand(subcategoryAddCmd, subcategoryRenameCmd, subcategoryReorderCmd, subcategoryDeleteCmd)
	rootCmd.AddCommand(subcategoryCmd)
}
