package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/snapshot"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/storage"
)

func seedRequirement(t *testing.T, tr *Tracker) model.Requirement {
	t.Helper()
	ctx := context.Background()
	p, err := tr.AddProject(ctx, "Demo", "")
	if err != nil {
		t.Fatal(err)
	}
	c, err := tr.AddCategory(ctx, p.ID, "Auth")
	if err != nil {
		t.Fatal(err)
	}
	sub, err := tr.AddSubcategory(ctx, c.ID, "Login")
	if err != nil {
		t.Fatal(err)
	}
	r, err := tr.AddRequirement(ctx, sub.ID, state.RequirementInput{
		Code: "AUTH-1", Title: "Password login",
		Priority: model.PriorityHigh, Status: model.StatusNotStarted,
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func serviceTree() *snapshot.Entry {
	return &snapshot.Entry{Name: "service", Dir: true, Children: []*snapshot.Entry{
		{Name: "auth", Dir: true, Children: []*snapshot.Entry{{Name: "login.go"}}},
		{Name: "vendor", Dir: true, Omitted: 12},
		{Name: "main.go"},
	}}
}

// paths renders a requirement's nodes as slash-joined paths.
func paths(s state.State, requirementID string) []string {
	var out []string
	for _, n := range s.RequirementNodes(requirementID) {
		path := n.Name
		for p := n.Parent(); p != ""; {
			parent, _ := s.Node(p)
			path = parent.Name + "/" + path
			p = parent.Parent()
		}
		out = append(out, path)
	}
	return out
}

func TestRecordSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore(state.Collections{})
	tr := newTracker(t, store)
	r := seedRequirement(t, tr)

	added, err := tr.RecordSnapshot(ctx, r.ID, "", serviceTree())
	if err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	if len(added) != 5 {
		t.Fatalf("added %d nodes, want 5", len(added))
	}
	want := []string{"service", "service/auth", "service/auth/login.go", "service/vendor", "service/main.go"}
	if diff := cmp.Diff(want, paths(tr.Snapshot(), r.ID)); diff != "" {
		t.Errorf("node paths mismatch (-want +got):\n%s", diff)
	}
	for _, n := range added {
		switch n.Name {
		case "vendor":
			if n.Type != model.NodeDirectory || n.NoteText() != "12 entries not captured" {
				t.Errorf("vendor = %+v", n)
			}
		case "main.go":
			if n.Type != model.NodeFile {
				t.Errorf("main.go type = %q", n.Type)
			}
		}
	}

	saved, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.ImplementationNodes) != 5 {
		t.Errorf("persisted %d nodes, want 5", len(saved.ImplementationNodes))
	}
}

func TestRecordSnapshotMergesExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := newTracker(t, storage.NewMemoryStore(state.Collections{}))
	r := seedRequirement(t, tr)

	if _, err := tr.RecordSnapshot(ctx, r.ID, "", serviceTree()); err != nil {
		t.Fatal(err)
	}
	again, err := tr.RecordSnapshot(ctx, r.ID, "", serviceTree())
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("second snapshot added %d nodes, want 0", len(again))
	}

	grown := serviceTree()
	grown.Children[0].Children = append(grown.Children[0].Children, &snapshot.Entry{Name: "logout.go"})
	added, err := tr.RecordSnapshot(ctx, r.ID, "", grown)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 1 || added[0].Name != "logout.go" {
		t.Fatalf("added = %+v, want only logout.go", added)
	}
	auth, _ := tr.Snapshot().Node(added[0].Parent())
	if auth.Name != "auth" {
		t.Errorf("logout.go parent = %q, want auth", auth.Name)
	}
}

func TestRecordSnapshotFailedSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &flakyStore{inner: storage.NewMemoryStore(state.Collections{})}
	tr := newTracker(t, store)
	r := seedRequirement(t, tr)

	store.setFail(true)
	if _, err := tr.RecordSnapshot(ctx, r.ID, "", serviceTree()); !errors.Is(err, errDiskFull) {
		t.Fatalf("RecordSnapshot error = %v, want errDiskFull", err)
	}
	if n := len(tr.Snapshot().ImplementationNodes); n != 0 {
		t.Errorf("snapshot has %d nodes after failed save, want 0", n)
	}
}
