// Package tracker is the single writer over the destrack state. It serializes
// mutations, writes each new state through to a Persister and only then
// publishes it to readers, so a failed save or a rejected operation is never
// observable.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/telemetry"
	"github.com/papapumpkin/destrack/internal/transfer"
)

// Persister loads and saves the whole collection set.
type Persister interface {
	Load(ctx context.Context) (state.Collections, error)
	Save(ctx context.Context, c state.Collections) error
}

// Recorder receives an audit event for every committed or rejected mutation.
type Recorder interface {
	Emit(evt telemetry.Event) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEngine replaces the default engine, e.g. with deterministic ids.
func WithEngine(e state.Engine) Option {
	return func(t *Tracker) { t.engine = e }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRecorder sends an audit event to r for every committed or rejected
// mutation. Recording failures are logged and never fail the mutation.
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

// OnChange registers fn to be called with every newly published state,
// including selection changes. fn runs with the write lock held and must not
// call back into the Tracker's mutating methods.
func OnChange(fn func(state.State)) Option {
	return func(t *Tracker) { t.onChange = append(t.onChange, fn) }
}

// Tracker owns the current state.
type Tracker struct {
	mu       sync.Mutex
	current  atomic.Pointer[state.State]
	store    Persister
	engine   state.Engine
	logger   *zap.Logger
	recorder Recorder
	onChange []func(state.State)
}

// New loads the collections from store and returns a Tracker serving them.
func New(ctx context.Context, store Persister, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:  store,
		engine: state.NewEngine(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	c, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracker: load state: %w", err)
	}
	s := state.FromCollections(c)
	t.current.Store(&s)
	t.logger.Info("state loaded",
		zap.Int("projects", len(c.Projects)),
		zap.Int("requirements", len(c.Requirements)),
		zap.Int("nodes", len(c.ImplementationNodes)))
	return t, nil
}

// Snapshot returns the current published state. It never blocks on writers.
func (t *Tracker) Snapshot() state.State {
	return *t.current.Load()
}

// Engine returns the engine used to derive new states.
func (t *Tracker) Engine() state.Engine {
	return t.engine
}

// Apply runs fn against the current state under the write lock and commits
// its result. It is the hook for multi-step transformations.
func (t *Tracker) Apply(ctx context.Context, op string, fn func(state.State) (state.State, error)) error {
	return t.apply(ctx, telemetry.Event{Op: op}, fn)
}

func (t *Tracker) apply(ctx context.Context, evt telemetry.Event, fn func(state.State) (state.State, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, err := fn(t.Snapshot())
	if err != nil {
		t.reject(evt, err)
		return err
	}
	return t.commit(ctx, evt, next)
}

// commit persists next, publishes it and records evt. Callers hold t.mu.
func (t *Tracker) commit(ctx context.Context, evt telemetry.Event, next state.State) error {
	if err := t.store.Save(ctx, next.Collections); err != nil {
		t.logger.Error("persist failed", zap.String("op", evt.Op), zap.Error(err))
		return fmt.Errorf("tracker: %s: save state: %w", evt.Op, err)
	}
	t.publish(next)
	t.logger.Debug("state committed", zap.String("op", evt.Op))
	if evt.Kind == "" {
		evt.Kind = telemetry.KindCommit
	}
	t.record(evt)
	return nil
}

func (t *Tracker) reject(evt telemetry.Event, err error) {
	evt.Kind = telemetry.KindRejected
	evt.Data = err.Error()
	t.record(evt)
}

func (t *Tracker) record(evt telemetry.Event) {
	if t.recorder == nil {
		return
	}
	evt.Timestamp = t.engine.Timestamp()
	if err := t.recorder.Emit(evt); err != nil {
		t.logger.Warn("audit event dropped", zap.String("op", evt.Op), zap.Error(err))
	}
}

func (t *Tracker) publish(next state.State) {
	t.current.Store(&next)
	for _, fn := range t.onChange {
		fn(next)
	}
}

// AddProject creates a project and selects it.
func (t *Tracker) AddProject(ctx context.Context, name, description string) (model.Project, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, p, err := t.engine.AddProject(t.Snapshot(), name, description)
	if err != nil {
		t.reject(telemetry.Event{Op: "add project"}, err)
		return model.Project{}, err
	}
	if err := t.commit(ctx, telemetry.Event{Op: "add project", EntityID: p.ID}, next); err != nil {
		return model.Project{}, err
	}
	t.logger.Info("project added", zap.String("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdateProject patches a project.
func (t *Tracker) UpdateProject(ctx context.Context, id string, patch state.ProjectPatch) error {
	return t.apply(ctx, telemetry.Event{Op: "update project", EntityID: id}, func(s state.State) (state.State, error) {
		return t.engine.UpdateProject(s, id, patch)
	})
}

// DeleteProject removes a project and everything it owns.
func (t *Tracker) DeleteProject(ctx context.Context, id string) (state.Counts, error) {
	return t.remove(ctx, "delete project", id, t.engine.DeleteProject)
}

// AddCategory appends a category to a project.
func (t *Tracker) AddCategory(ctx context.Context, projectID, name string) (model.Category, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, c, err := t.engine.AddCategory(t.Snapshot(), projectID, name)
	if err != nil {
		t.reject(telemetry.Event{Op: "add category"}, err)
		return model.Category{}, err
	}
	if err := t.commit(ctx, telemetry.Event{Op: "add category", EntityID: c.ID}, next); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// UpdateCategory patches a category.
func (t *Tracker) UpdateCategory(ctx context.Context, id string, patch state.CategoryPatch) error {
	return t.apply(ctx, telemetry.Event{Op: "update category", EntityID: id}, func(s state.State) (state.State, error) {
		return t.engine.UpdateCategory(s, id, patch)
	})
}

// DeleteCategory removes a category and everything below it.
func (t *Tracker) DeleteCategory(ctx context.Context, id string) (state.Counts, error) {
	return t.remove(ctx, "delete category", id, t.engine.DeleteCategory)
}

// AddSubcategory appends a subcategory to a category.
func (t *Tracker) AddSubcategory(ctx context.Context, categoryID, name string) (model.Subcategory, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, sub, err := t.engine.AddSubcategory(t.Snapshot(), categoryID, name)
	if err != nil {
		t.reject(telemetry.Event{Op: "add subcategory"}, err)
		return model.Subcategory{}, err
	}
	if err := t.commit(ctx, telemetry.Event{Op: "add subcategory", EntityID: sub.ID}, next); err != nil {
		return model.Subcategory{}, err
	}
	return sub, nil
}

// UpdateSubcategory patches a subcategory.
func (t *Tracker) UpdateSubcategory(ctx context.Context, id string, patch state.SubcategoryPatch) error {
	return t.apply(ctx, telemetry.Event{Op: "update subcategory", EntityID: id}, func(s state.State) (state.State, error) {
		return t.engine.UpdateSubcategory(s, id, patch)
	})
}

// DeleteSubcategory removes a subcategory, its requirements and their nodes.
func (t *Tracker) DeleteSubcategory(ctx context.Context, id string) (state.Counts, error) {
	return t.remove(ctx, "delete subcategory", id, t.engine.DeleteSubcategory)
}

// AddRequirement appends a requirement to a subcategory.
func (t *Tracker) AddRequirement(ctx context.Context, subcategoryID string, in state.RequirementInput) (model.Requirement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, r, err := t.engine.AddRequirement(t.Snapshot(), subcategoryID, in)
	if err != nil {
		t.reject(telemetry.Event{Op: "add requirement"}, err)
		return model.Requirement{}, err
	}
	if err := t.commit(ctx, telemetry.Event{Op: "add requirement", EntityID: r.ID}, next); err != nil {
		return model.Requirement{}, err
	}
	return r, nil
}

// UpdateRequirement patches a requirement.
func (t *Tracker) UpdateRequirement(ctx context.Context, id string, patch state.RequirementPatch) error {
	return t.apply(ctx, telemetry.Event{Op: "update requirement", EntityID: id}, func(s state.State) (state.State, error) {
		return t.engine.UpdateRequirement(s, id, patch)
	})
}

// DeleteRequirement removes a requirement and its nodes.
func (t *Tracker) DeleteRequirement(ctx context.Context, id string) (state.Counts, error) {
	return t.remove(ctx, "delete requirement", id, t.engine.DeleteRequirement)
}

// AddNode appends an implementation node.
func (t *Tracker) AddNode(ctx context.Context, requirementID, parentID string, in state.NodeInput) (model.ImplementationNode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, n, err := t.engine.AddNode(t.Snapshot(), requirementID, parentID, in)
	if err != nil {
		t.reject(telemetry.Event{Op: "add node"}, err)
		return model.ImplementationNode{}, err
	}
	if err := t.commit(ctx, telemetry.Event{Op: "add node", EntityID: n.ID}, next); err != nil {
		return model.ImplementationNode{}, err
	}
	return n, nil
}

// UpdateNode patches a node.
func (t *Tracker) UpdateNode(ctx context.Context, id string, patch state.NodePatch) error {
	return t.apply(ctx, telemetry.Event{Op: "update node", EntityID: id}, func(s state.State) (state.State, error) {
		return t.engine.UpdateNode(s, id, patch)
	})
}

// MoveNode re-parents a node. A move that would create a cycle or cross
// requirements is rejected before anything is persisted.
func (t *Tracker) MoveNode(ctx context.Context, id, newParentID string, order int) error {
	err := t.apply(ctx, telemetry.Event{Op: "move node", EntityID: id}, func(s state.State) (state.State, error) {
		return t.engine.MoveNode(s, id, newParentID, order)
	})
	if err != nil {
		t.logger.Warn("move rejected", zap.String("node", id), zap.String("parent", newParentID), zap.Error(err))
	}
	return err
}

// DeleteNode removes a node and its descendants.
func (t *Tracker) DeleteNode(ctx context.Context, id string) (state.Counts, error) {
	return t.remove(ctx, "delete node", id, t.engine.DeleteNode)
}

// PruneUnreachable removes orphaned nodes of one requirement, or of all of
// them when requirementID is empty.
func (t *Tracker) PruneUnreachable(ctx context.Context, requirementID string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, removed := t.engine.PruneUnreachable(t.Snapshot(), requirementID)
	if len(removed) == 0 {
		return nil, nil
	}
	if err := t.commit(ctx, telemetry.Event{Op: "prune nodes", EntityID: requirementID, Data: removed}, next); err != nil {
		return nil, err
	}
	t.logger.Info("unreachable nodes pruned", zap.Strings("ids", removed))
	return removed, nil
}

// Import adds doc as a new project and selects it.
func (t *Tracker) Import(ctx context.Context, doc transfer.Document) (transfer.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, res, err := transfer.Import(t.engine, t.Snapshot(), doc)
	if err != nil {
		t.reject(telemetry.Event{Op: "import"}, err)
		return transfer.Result{}, err
	}
	evt := telemetry.Event{Kind: telemetry.KindImport, Op: "import", EntityID: res.Project.ID, Data: res.Imported}
	if err := t.commit(ctx, evt, next); err != nil {
		return transfer.Result{}, err
	}
	t.logger.Info("project imported",
		zap.String("id", res.Project.ID),
		zap.String("name", res.Project.Name),
		zap.Int("requirements", res.Imported.Requirements),
		zap.Int("nodes", res.Imported.Nodes),
		zap.Int("dropped", res.Dropped))
	return res, nil
}

// SelectProject changes the session selection. Selection is not persisted.
func (t *Tracker) SelectProject(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publish(t.engine.SelectProject(t.Snapshot(), id))
}

// SelectRequirement changes the selected requirement.
func (t *Tracker) SelectRequirement(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publish(t.engine.SelectRequirement(t.Snapshot(), id))
}

func (t *Tracker) remove(ctx context.Context, op, id string, fn func(state.State, string) (state.State, state.Counts)) (state.Counts, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, counts := fn(t.Snapshot(), id)
	if counts == (state.Counts{}) {
		return counts, nil
	}
	evt := telemetry.Event{Kind: telemetry.KindCascade, Op: op, EntityID: id, Data: counts}
	if err := t.commit(ctx, evt, next); err != nil {
		return state.Counts{}, err
	}
	t.logger.Info("cascade delete",
		zap.String("op", op),
		zap.String("id", id),
		zap.Int("categories", counts.Categories),
		zap.Int("subcategories", counts.Subcategories),
		zap.Int("requirements", counts.Requirements),
		zap.Int("nodes", counts.Nodes))
	return counts, nil
}
