// Package storage persists the destrack collections. SQLiteStore keeps them
// in a local SQLite database; MemoryStore keeps them in process memory.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
)

// schema is executed on every open. seq records each row's position in its
// collection so Load returns rows in the order they were saved.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    seq         INTEGER NOT NULL,
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    seq        INTEGER NOT NULL,
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    sort_order INTEGER NOT NULL,
    project_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subcategories (
    seq         INTEGER NOT NULL,
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    sort_order  INTEGER NOT NULL,
    category_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS requirements (
    seq            INTEGER NOT NULL,
    id             TEXT PRIMARY KEY,
    code           TEXT NOT NULL,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    priority       TEXT NOT NULL,
    status         TEXT NOT NULL,
    subcategory_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS implementation_nodes (
    seq            INTEGER NOT NULL,
    id             TEXT PRIMARY KEY,
    type           TEXT NOT NULL,
    name           TEXT NOT NULL,
    parent_id      TEXT,
    requirement_id TEXT NOT NULL,
    notes          TEXT,
    sort_order     INTEGER NOT NULL
);
`

// tables lists every table in delete order.
var tables = []string{"implementation_nodes", "requirements", "subcategories", "categories", "projects"}

// SQLiteStore persists the collections in a SQLite database in WAL mode.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath, enables WAL mode
// and busy timeout, and creates the schema if it does not exist. A nil
// logger disables logging.
func NewSQLiteStore(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection keeps the PRAGMAs
	// below in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}

	logger.Debug("sqlite store opened", zap.String("path", dbPath))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored collections with c in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, c state.Collections) error {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("storage: clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, "projects",
		`INSERT INTO projects (seq, id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Projects, func(i int, p model.Project) []any {
			return []any{i, p.ID, p.Name, p.Description, formatTime(p.CreatedAt), formatTime(p.UpdatedAt)}
		}); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "categories",
		`INSERT INTO categories (seq, id, name, sort_order, project_id) VALUES (?, ?, ?, ?, ?)`,
		c.Categories, func(i int, cat model.Category) []any {
			return []any{i, cat.ID, cat.Name, cat.Order, cat.ProjectID}
		}); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "subcategories",
		`INSERT INTO subcategories (seq, id, name, sort_order, category_id) VALUES (?, ?, ?, ?, ?)`,
		c.Subcategories, func(i int, sub model.Subcategory) []any {
			return []any{i, sub.ID, sub.Name, sub.Order, sub.CategoryID}
		}); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "requirements",
		`INSERT INTO requirements (seq, id, code, title, description, priority, status, subcategory_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Requirements, func(i int, r model.Requirement) []any {
			return []any{i, r.ID, r.Code, r.Title, r.Description, string(r.Priority), string(r.Status), r.SubcategoryID}
		}); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "implementation_nodes",
		`INSERT INTO implementation_nodes (seq, id, type, name, parent_id, requirement_id, notes, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ImplementationNodes, func(i int, n model.ImplementationNode) []any {
			return []any{i, n.ID, string(n.Type), n.Name, nullable(n.ParentID), n.RequirementID, nullable(n.Notes), n.Order}
		}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	s.logger.Debug("collections saved",
		zap.Int("projects", len(c.Projects)),
		zap.Int("requirements", len(c.Requirements)),
		zap.Int("nodes", len(c.ImplementationNodes)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func insertAll[T any](ctx context.Context, tx *sql.Tx, table, q string, rows []T, args func(int, T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("storage: prepare %s insert: %w", table, err)
	}
	defer stmt.Close()
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(i, row)...); err != nil {
			return fmt.Errorf("storage: insert %s row %d: %w", table, i, err)
		}
	}
	return nil
}

// Load reads every collection in saved order. An empty database yields empty
// collections.
func (s *SQLiteStore) Load(ctx context.Context) (state.Collections, error) {
	var c state.Collections
	var err error

	c.Projects, err = queryAll(ctx, s.db, "projects",
		`SELECT id, name, description, created_at, updated_at FROM projects ORDER BY seq`,
		func(rows *sql.Rows) (model.Project, error) {
			var p model.Project
			var created, updated string
			if err := rows.Scan(&p.ID, &p.Name, &p.Description, &created, &updated); err != nil {
				return p, err
			}
			createdAt, err := parseTime(created)
			if err != nil {
				return p, err
			}
			updatedAt, err := parseTime(updated)
			if err != nil {
				return p, err
			}
			p.CreatedAt, p.UpdatedAt = createdAt, updatedAt
			return p, nil
		})
	if err != nil {
		return state.Collections{}, err
	}

	c.Categories, err = queryAll(ctx, s.db, "categories",
		`SELECT id, name, sort_order, project_id FROM categories ORDER BY seq`,
		func(rows *sql.Rows) (model.Category, error) {
			var cat model.Category
			err := rows.Scan(&cat.ID, &cat.Name, &cat.Order, &cat.ProjectID)
			return cat, err
		})
	if err != nil {
		return state.Collections{}, err
	}

	c.Subcategories, err = queryAll(ctx, s.db, "subcategories",
		`SELECT id, name, sort_order, category_id FROM subcategories ORDER BY seq`,
		func(rows *sql.Rows) (model.Subcategory, error) {
			var sub model.Subcategory
			err := rows.Scan(&sub.ID, &sub.Name, &sub.Order, &sub.CategoryID)
			return sub, err
		})
	if err != nil {
		return state.Collections{}, err
	}

	c.Requirements, err = queryAll(ctx, s.db, "requirements",
		`SELECT id, code, title, description, priority, status, subcategory_id FROM requirements ORDER BY seq`,
		func(rows *sql.Rows) (model.Requirement, error) {
			var r model.Requirement
			err := rows.Scan(&r.ID, &r.Code, &r.Title, &r.Description, &r.Priority, &r.Status, &r.SubcategoryID)
			return r, err
		})
	if err != nil {
		return state.Collections{}, err
	}

	c.ImplementationNodes, err = queryAll(ctx, s.db, "implementation_nodes",
		`SELECT id, type, name, parent_id, requirement_id, notes, sort_order FROM implementation_nodes ORDER BY seq`,
		func(rows *sql.Rows) (model.ImplementationNode, error) {
			var n model.ImplementationNode
			var parent, notes sql.NullString
			if err := rows.Scan(&n.ID, &n.Type, &n.Name, &parent, &n.RequirementID, &notes, &n.Order); err != nil {
				return n, err
			}
			n.ParentID = fromNullable(parent)
			n.Notes = fromNullable(notes)
			return n, nil
		})
	if err != nil {
		return state.Collections{}, err
	}

	s.logger.Debug("collections loaded",
		zap.Int("projects", len(c.Projects)),
		zap.Int("requirements", len(c.Requirements)),
		zap.Int("nodes", len(c.ImplementationNodes)))
	return c, nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, table, q string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("storage: query %s: %w", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan %s: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate %s: %w", table, err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
