package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
)

var requirementCmd = &cobra.Command{
	Use:     "requirement",
	Aliases: []string{"req"},
	Short:   "Manage requirements",
}

var requirementAddCmd = &cobra.Command{
	Use:   "add <subcategory>",
	Short: "Add a requirement to a subcategory",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		sub, err := s.subcategory(args[0])
		if err != nil {
			return err
		}
		r, err := s.tracker.AddRequirement(s.ctx, sub.ID, state.RequirementInput{
			Code:        s.flagString("code"),
			Title:       s.flagString("title"),
			Description: s.flagString("description"),
			Priority:    model.Priority(s.flagString("priority")),
			Status:      model.Status(s.flagString("status")),
		})
		if err != nil {
			return err
		}
		s.printer.Created("requirement", r.Code+" "+r.Title, r.ID)
		return nil
	}),
}

var requirementUpdateCmd = &cobra.Command{
	Use:   "update <requirement>",
	Short: "Change a requirement's fields",
	Long:  "Change a requirement's fields. Only the flags given are changed.",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		r, err := s.requirement(args[0])
		if err != nil {
			return err
		}
		var patch state.RequirementPatch
		if s.changed("code") {
			patch.Code = ptr(s.flagString("code"))
		}
		if s.changed("title") {
			patch.Title = ptr(s.flagString("title"))
		}
		if s.changed("description") {
			patch.Description = ptr(s.flagString("description"))
		}
		if s.changed("priority") {
			patch.Priority = ptr(model.Priority(s.flagString("priority")))
		}
		if s.changed("status") {
			patch.Status = ptr(model.Status(s.flagString("status")))
		}
		if patch == (state.RequirementPatch{}) {
			return errors.New("nothing to update: give at least one of --code, --title, --description, --priority, --status")
		}
		if err := s.tracker.UpdateRequirement(s.ctx, r.ID, patch); err != nil {
			return err
		}
		s.printer.Success("updated requirement " + r.ID)
		return nil
	}),
}

var requirementDeleteCmd = &cobra.Command{
	Use:   "delete <requirement>",
	Short: "Delete a requirement and its implementation nodes",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		r, err := s.requirement(args[0])
		if err != nil {
			return err
		}
		counts, err := s.tracker.DeleteRequirement(s.ctx, r.ID)
		if err != nil {
			return err
		}
		s.printer.Deleted("requirement", r.ID, counts)
		return nil
	}),
}

func ptr[T any](v T) *T { return &v }

func init() {
	for _, c := range []*cobra.Command{requirementAddCmd, requirementUpdateCmd} {
		c.Flags().String("code", "", "requirement code, e.g. AUTH-001")
		c.Flags().String("title", "", "requirement title")
		c.Flags().StringP("description", "d", "", "requirement description")
		c.Flags().String("priority", "", "critical, high, medium or low (default medium)")
		c.Flags().String("status", "", "not-started, in-progress, complete or blocked (default not-started)")
	}

	requirementCmd.AddCommand(requirementAddCmd, requirementUpdateCmd, requirementDeleteCmd)
	rootCmd.AddCommand(requirementCmd)
}
