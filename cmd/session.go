package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/destrack/internal/config"
	"github.com/papapumpkin/destrack/internal/logging"
	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/storage"
	"github.com/papapumpkin/destrack/internal/telemetry"
	"github.com/papapumpkin/destrack/internal/tracker"
	"github.com/papapumpkin/destrack/internal/ui"
)

// errNotFound marks a command argument that names no existing entity.
var errNotFound = errors.New("not found")

// session is everything a command needs: configuration, a logger and a
// tracker over the configured store.
type session struct {
	cmd     *cobra.Command
	ctx     context.Context
	cfg     config.Config
	logger  *zap.Logger
	tracker *tracker.Tracker
	printer *ui.Printer
	out     io.Writer
	close   func() error
}

// openSession loads config and opens the store. Callers must Close it.
func openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return nil, err
	}

	var store tracker.Persister
	closeStore := func() error { return nil }
	if cfg.DBPath == config.InMemory {
		store = storage.NewMemoryStore(state.Collections{})
	} else {
		sq, err := storage.NewSQLiteStore(ctx, cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		store, closeStore = sq, sq.Close
	}

	opts := []tracker.Option{tracker.WithLogger(logger)}
	var audit *telemetry.Emitter
	if cfg.AuditLog != "" {
		if audit, err = telemetry.NewEmitter(cfg.AuditLog); err != nil {
			closeStore() //nolint:errcheck
			return nil, err
		}
		opts = append(opts, tracker.WithRecorder(audit))
	}
	closeAll := func() error {
		return errors.Join(audit.Close(), closeStore())
	}

	tr, err := tracker.New(ctx, store, opts...)
	if err != nil {
		closeAll() //nolint:errcheck
		return nil, err
	}
	return &session{
		cmd:     cmd,
		ctx:     ctx,
		cfg:     cfg,
		logger:  logger,
		tracker: tr,
		printer: ui.NewTo(cmd.ErrOrStderr()),
		out:     cmd.OutOrStdout(),
		close:   closeAll,
	}, nil
}

// Close releases the store and the audit log.
func (s *session) Close() {
	if err := s.close(); err != nil {
		s.logger.Warn("close session", zap.Error(err))
	}
	_ = s.logger.Sync()
}

func (s *session) flagString(name string) string {
	v, _ := s.cmd.Flags().GetString(name)
	return v
}

func (s *session) flagInt(name string) int {
	v, _ := s.cmd.Flags().GetInt(name)
	return v
}

// changed reports whether the flag was given on the command line.
func (s *session) changed(name string) bool {
	return s.cmd.Flags().Changed(name)
}

// withSession opens a session around fn.
func withSession(fn func(s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(s, args)
	}
}

// The lookups below accept an id or, for named entities, an exact name.

func (s *session) project(ref string) (model.Project, error) {
	st := s.tracker.Snapshot()
	if p, ok := st.Project(ref); ok {
		return p, nil
	}
	var match []model.Project
	for _, p := range st.Projects {
		if p.Name == ref {
			match = append(match, p)
		}
	}
	return one("project", ref, match)
}

func (s *session) category(ref string) (model.Category, error) {
	st := s.tracker.Snapshot()
	if c, ok := st.Category(ref); ok {
		return c, nil
	}
	var match []model.Category
	for _, c := range st.Categories {
		if c.Name == ref {
			match = append(match, c)
		}
	}
	return one("category", ref, match)
}

func (s *session) subcategory(ref string) (model.Subcategory, error) {
	st := s.tracker.Snapshot()
	if sub, ok := st.Subcategory(ref); ok {
		return sub, nil
	}
	var match []model.Subcategory
	for _, sub := range st.Subcategories {
		if sub.Name == ref {
			match = append(match, sub)
		}
	}
	return one("subcategory", ref, match)
}

// requirement accepts an id or a requirement code.
func (s *session) requirement(ref string) (model.Requirement, error) {
	st := s.tracker.Snapshot()
	if r, ok := st.Requirement(ref); ok {
		return r, nil
	}
	var match []model.Requirement
	for _, r := range st.Requirements {
		if r.Code == ref {
			match = append(match, r)
		}
	}
	return one("requirement", ref, match)
}

func (s *session) node(id string) (model.ImplementationNode, error) {
	n, ok := s.tracker.Snapshot().Node(id)
	if !ok {
		return model.ImplementationNode{}, fmt.Errorf("node %q: %w", id, errNotFound)
	}
	return n, nil
}

func one[T any](kind, ref string, match []T) (T, error) {
	var zero T
	switch len(match) {
	case 0:
		return zero, fmt.Errorf("%s %q: %w", kind, ref, errNotFound)
	case 1:
		return match[0], nil
	}
	return zero, fmt.Errorf("%s %q is ambiguous (%d matches); use the id", kind, ref, len(match))
}
