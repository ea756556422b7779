package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/inbox"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import every export document dropped into a directory",
	Long: `Watch a directory (default: inbox_dir from the config) and import
each .json, .toml, .yaml or .yml export document that appears or changes
there. Every import creates a new project; a file is imported again only when
its size or modification time changes. Invalid documents are reported and
skipped. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		dir := s.cfg.InboxDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return errors.New("no directory to watch: pass one or set inbox_dir")
		}

		w, err := inbox.NewWatcher(dir)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		defer w.Stop()

		ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s.printer.Info("watching " + w.Dir + " (ctrl+c to stop)")
		in := inbox.New(s.tracker, s.logger)
		return in.Run(ctx, w.Changes, func(e inbox.Event) {
			if e.Err != nil {
				s.printer.Warn(fmt.Sprintf("skipped %s: %v", e.File, e.Err))
				return
			}
			s.printer.Created("project", e.Result.Project.Name, e.Result.Project.ID)
		})
	}),
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
