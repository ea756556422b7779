package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/storage"
)

var errDiskFull = errors.New("disk full")

// flakyStore fails Save while fail is set.
type flakyStore struct {
	mu    sync.Mutex
	inner *storage.MemoryStore
	fail  bool
}

func (f *flakyStore) Load(ctx context.Context) (state.Collections, error) {
	return f.inner.Load(ctx)
}

func (f *flakyStore) Save(ctx context.Context, c state.Collections) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return f.inner.Save(ctx, c)
}

func (f *flakyStore) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func deterministic() state.Engine {
	var mu sync.Mutex
	n := 0
	return state.Engine{
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func newTracker(t *testing.T, store Persister) *Tracker {
	t.Helper()
	tr, err := New(context.Background(), store, WithEngine(deterministic()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestNewLoadsState(t *testing.T) {
	t.Parallel()
	seed := state.Collections{Projects: []model.Project{{ID: "p1", Name: "Seeded"}}}
	tr := newTracker(t, storage.NewMemoryStore(seed))

	s := tr.Snapshot()
	if len(s.Projects) != 1 || s.Projects[0].Name != "Seeded" {
		t.Errorf("projects = %v, want seeded project", s.Projects)
	}
	if s.Selection != (state.Selection{}) {
		t.Errorf("selection = %+v, want empty", s.Selection)
	}
}

type failingLoad struct{}

func (failingLoad) Load(context.Context) (state.Collections, error) {
	return state.Collections{}, errDiskFull
}
func (failingLoad) Save(context.Context, state.Collections) error { return nil }

func TestNewLoadError(t *testing.T) {
	t.Parallel()
	_, err := New(context.Background(), failingLoad{})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("err = %v, want wrapped errDiskFull", err)
	}
}

func TestMutationsPersist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := storage.NewMemoryStore(state.Collections{})
	tr := newTracker(t, mem)

	p, err := tr.AddProject(ctx, "Alpha", "")
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	c, err := tr.AddCategory(ctx, p.ID, "Security")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	sub, err := tr.AddSubcategory(ctx, c.ID, "Auth")
	if err != nil {
		t.Fatalf("AddSubcategory: %v", err)
	}
	r, err := tr.AddRequirement(ctx, sub.ID, state.RequirementInput{Code: "SEC-1", Title: "Login"})
	if err != nil {
		t.Fatalf("AddRequirement: %v", err)
	}
	n, err := tr.AddNode(ctx, r.ID, "", state.NodeInput{Type: model.NodeFile, Name: "login.go"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	saved, err := mem.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(saved.ImplementationNodes) != 1 || saved.ImplementationNodes[0].ID != n.ID {
		t.Errorf("saved nodes = %v, want %s", saved.ImplementationNodes, n.ID)
	}
	if mem.Saves() != 5 {
		t.Errorf("Saves() = %d, want 5", mem.Saves())
	}

	counts, err := tr.DeleteCategory(ctx, c.ID)
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if counts.Requirements != 1 || counts.Nodes != 1 {
		t.Errorf("counts = %+v", counts)
	}
	saved, _ = mem.Load(ctx)
	if len(saved.Requirements) != 0 {
		t.Errorf("requirements survived delete in store")
	}
}

func TestFailedSaveLeavesSnapshotUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &flakyStore{inner: storage.NewMemoryStore(state.Collections{})}
	tr := newTracker(t, store)

	p, err := tr.AddProject(ctx, "Alpha", "")
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	before := tr.Snapshot()

	store.setFail(true)
	if _, err := tr.AddCategory(ctx, p.ID, "Security"); !errors.Is(err, errDiskFull) {
		t.Fatalf("AddCategory err = %v, want errDiskFull", err)
	}
	if _, err := tr.DeleteProject(ctx, p.ID); !errors.Is(err, errDiskFull) {
		t.Fatalf("DeleteProject err = %v, want errDiskFull", err)
	}

	after := tr.Snapshot()
	if len(after.Projects) != len(before.Projects) || len(after.Categories) != 0 {
		t.Errorf("snapshot changed after failed saves: %+v", after.Collections)
	}

	store.setFail(false)
	if _, err := tr.AddCategory(ctx, p.ID, "Security"); err != nil {
		t.Fatalf("AddCategory after recovery: %v", err)
	}
}

func TestRejectedMoveIsNotPersisted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := storage.NewMemoryStore(state.Collections{})
	tr := newTracker(t, mem)

	p, _ := tr.AddProject(ctx, "P", "")
	c, _ := tr.AddCategory(ctx, p.ID, "C")
	sub, _ := tr.AddSubcategory(ctx, c.ID, "S")
	r, _ := tr.AddRequirement(ctx, sub.ID, state.RequirementInput{Code: "R", Title: "T"})
	a, _ := tr.AddNode(ctx, r.ID, "", state.NodeInput{Type: model.NodeDirectory, Name: "a"})
	b, _ := tr.AddNode(ctx, r.ID, a.ID, state.NodeInput{Type: model.NodeFile, Name: "b"})
	saves := mem.Saves()

	if err := tr.MoveNode(ctx, a.ID, b.ID, 1); !errors.Is(err, state.ErrCycle) {
		t.Fatalf("MoveNode err = %v, want ErrCycle", err)
	}
	if mem.Saves() != saves {
		t.Errorf("rejected move saved state")
	}
	moved, _ := tr.Snapshot().Node(a.ID)
	if !moved.IsRoot() {
		t.Errorf("a moved to %q despite rejection", moved.Parent())
	}
}

func TestDeleteMissingSkipsSave(t *testing.T) {
	t.Parallel()
	mem := storage.NewMemoryStore(state.Collections{})
	tr := newTracker(t, mem)
	counts, err := tr.DeleteRequirement(context.Background(), "missing")
	if err != nil {
		t.Fatalf("DeleteRequirement: %v", err)
	}
	if counts != (state.Counts{}) || mem.Saves() != 0 {
		t.Errorf("counts=%+v saves=%d, want zero", counts, mem.Saves())
	}
}

func TestSelectionIsNotPersisted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := storage.NewMemoryStore(state.Collections{})

	var seen []state.Selection
	tr, err := New(ctx, mem, WithEngine(deterministic()), OnChange(func(s state.State) {
		seen = append(seen, s.Selection)
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p, _ := tr.AddProject(ctx, "P", "")
	saves := mem.Saves()

	tr.SelectProject("")
	tr.SelectProject(p.ID)
	if mem.Saves() != saves {
		t.Errorf("selection change saved state")
	}
	if got := tr.Snapshot().Selection.ProjectID; got != p.ID {
		t.Errorf("selected project = %q, want %q", got, p.ID)
	}
	if len(seen) != 3 {
		t.Errorf("OnChange calls = %d, want 3", len(seen))
	}
}

func TestConcurrentWritersSerialize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := storage.NewMemoryStore(state.Collections{})
	tr := newTracker(t, mem)

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.AddProject(ctx, fmt.Sprintf("p%d", i), ""); err != nil {
				t.Errorf("AddProject: %v", err)
			}
			_ = tr.Snapshot()
		}()
	}
	wg.Wait()

	if got := len(tr.Snapshot().Projects); got != writers {
		t.Errorf("projects = %d, want %d", got, writers)
	}
	saved, _ := mem.Load(ctx)
	if len(saved.Projects) != writers {
		t.Errorf("saved projects = %d, want %d", len(saved.Projects), writers)
	}
}
