package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/telemetry"
	"github.com/papapumpkin/destrack/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent entries of the audit log",
	Long: `Show the most recent entries of the audit log configured by audit_log
(env DESTRACK_AUDIT_LOG). Each committed change, cascade delete, import and
rejected operation is one entry.`,
	Args: cobra.NoArgs,
	RunE: withSession(func(s *session, _ []string) error {
		if s.cfg.AuditLog == "" {
			return errors.New("no audit log configured: set audit_log")
		}
		f, err := os.Open(s.cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer f.Close()
		events, err := telemetry.ReadEvents(f)
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, ui.AuditTrail(telemetry.Tail(events, s.flagInt("limit"))))
		return nil
	}),
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show (0 for all)")

	rootCmd.AddCommand(historyCmd)
}
