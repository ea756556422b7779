package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/state"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage the categories of a project",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <project> <name>",
	Short: "Append a category to a project",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		p, err := s.project(args[0])
		if err != nil {
			return err
		}
		c, err := s.tracker.AddCategory(s.ctx, p.ID, args[1])
		if err != nil {
			return err
		}
		s.printer.Created("category", c.Name, c.ID)
		return nil
	}),
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <category> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		c, err := s.category(args[0])
		if err != nil {
			return err
		}
		if err := s.tracker.UpdateCategory(s.ctx, c.ID, state.CategoryPatch{Name: &args[1]}); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("renamed category %s to %q", c.ID, args[1]))
		return nil
	}),
}

var categoryReorderCmd = &cobra.Command{
	Use:   "reorder <category> <order>",
	Short: "Set a category's position among its siblings",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(s *session, args []string) error {
		c, err := s.category(args[0])
		if err != nil {
			return err
		}
		order, err := parseOrder(args[1])
		if err != nil {
			return err
		}
		if err := s.tracker.UpdateCategory(s.ctx, c.ID, state.CategoryPatch{Order: &order}); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("category %s now at order %d", c.Name, order))
		return nil
	}),
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <category>",
	Short: "Delete a category with its subcategories, requirements and nodes",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		c, err := s.category(args[0])
		if err != nil {
			return err
		}
		counts, err := s.tracker.DeleteCategory(s.ctx, c.ID)
		if err != nil {
			return err
		}
		s.printer.Deleted("category", c.ID, counts)
		return nil
	}),
}

func parseOrder(arg string) (int, error) {
	order, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("order %q is not an integer", arg)
	}
	return order, nil
}

func init() {
	categoryCmd.AddCommand(categoryAddCmd, categoryRenameCmd, categoryReorderCmd, categoryDeleteCmd)
	rootCmd.AddCommand(categoryCmd)
}
