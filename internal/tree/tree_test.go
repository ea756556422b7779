package tree

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/destrack/internal/model"
)

// nodeSpec is (id, parent, order) for requirement "r1" unless req is set.
type nodeSpec struct {
	id     string
	parent string
	order  int
	req    string
}

func buildNodes(specs []nodeSpec) []model.ImplementationNode {
	nodes := make([]model.ImplementationNode, 0, len(specs))
	for _, s := range specs {
		req := s.req
		if req == "" {
			req = "r1"
		}
		nodes = append(nodes, model.ImplementationNode{
			ID:            s.id,
			Type:          model.NodeFile,
			Name:          "name-" + s.id,
			ParentID:      model.Ref(s.parent),
			RequirementID: req,
			Order:         s.order,
		})
	}
	return nodes
}

// sample forest for r1:
//
//	a
//	├── b
//	│   └── d
//	└── c
//	e
func sampleNodes() []model.ImplementationNode {
	return buildNodes([]nodeSpec{
		{id: "e", order: 2},
		{id: "c", parent: "a", order: 5},
		{id: "a", order: 1},
		{id: "b", parent: "a", order: 3},
		{id: "d", parent: "b", order: 1},
		{id: "x", order: 1, req: "r2"},
	})
}

func ids(forest []model.NodeWithChildren) []string {
	var out []string
	for _, n := range forest {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildRequirementsTree(t *testing.T) {
	t.Parallel()

	categories := []model.Category{
		{ID: "c2", Name: "Second", Order: 2, ProjectID: "p1"},
		{ID: "c1", Name: "First", Order: 1, ProjectID: "p1"},
		{ID: "c9", Name: "Other project", Order: 0, ProjectID: "p2"},
	}
	subcategories := []model.Subcategory{
		{ID: "s2", Name: "B", Order: 7, CategoryID: "c1"},
		{ID: "s1", Name: "A", Order: 4, CategoryID: "c1"},
		{ID: "s3", Name: "C", Order: 1, CategoryID: "c2"},
	}
	requirements := []model.Requirement{
		{ID: "r2", Code: "R-2", SubcategoryID: "s1"},
		{ID: "r1", Code: "R-1", SubcategoryID: "s1"},
		{ID: "r3", Code: "R-3", SubcategoryID: "s3"},
	}

	t.Run("orders and nests", func(t *testing.T) {
		t.Parallel()
		got := BuildRequirementsTree(categories, subcategories, requirements, "p1")

		want := []model.CategoryWithChildren{
			{
				Category: categories[1],
				Subcategories: []model.SubcategoryWithChildren{
					{Subcategory: subcategories[1], Requirements: []model.Requirement{requirements[0], requirements[1]}},
					{Subcategory: subcategories[0]},
				},
			},
			{
				Category: categories[0],
				Subcategories: []model.SubcategoryWithChildren{
					{Subcategory: subcategories[2], Requirements: []model.Requirement{requirements[2]}},
				},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("BuildRequirementsTree mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		t.Parallel()
		got := BuildRequirementsTree(nil, nil, nil, "p1")
		if len(got) != 0 {
			t.Errorf("got %d categories, want 0", len(got))
		}
	})

	t.Run("input not reordered", func(t *testing.T) {
		t.Parallel()
		cats := slices.Clone(categories)
		_ = BuildRequirementsTree(cats, subcategories, requirements, "p1")
		if diff := cmp.Diff(categories, cats); diff != "" {
			t.Errorf("input mutated (-want +got):\n%s", diff)
		}
	})

	t.Run("equal orders keep input order", func(t *testing.T) {
		t.Parallel()
		cats := []model.Category{
			{ID: "z", Order: 1, ProjectID: "p"},
			{ID: "y", Order: 1, ProjectID: "p"},
		}
		got := BuildRequirementsTree(cats, nil, nil, "p")
		if got[0].ID != "z" || got[1].ID != "y" {
			t.Errorf("order = [%s %s], want [z y]", got[0].ID, got[1].ID)
		}
	})
}

func TestBuildImplementationTree(t *testing.T) {
	t.Parallel()

	t.Run("roots and children sorted by order", func(t *testing.T) {
		t.Parallel()
		forest := BuildImplementationTree(sampleNodes(), "r1")
		if diff := cmp.Diff([]string{"a", "e"}, ids(forest)); diff != "" {
			t.Fatalf("roots (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"b", "c"}, ids(forest[0].Children)); diff != "" {
			t.Errorf("children of a (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"d"}, ids(forest[0].Children[0].Children)); diff != "" {
			t.Errorf("children of b (-want +got):\n%s", diff)
		}
	})

	t.Run("no loss no duplication", func(t *testing.T) {
		t.Parallel()
		nodes := sampleNodes()
		forest := BuildImplementationTree(nodes, "r1")
		want := 0
		for _, n := range nodes {
			if n.RequirementID == "r1" {
				want++
			}
		}
		if got := CountNodes(forest); got != want {
			t.Errorf("CountNodes = %d, want %d", got, want)
		}
	})

	t.Run("children point at parent", func(t *testing.T) {
		t.Parallel()
		var check func(parent string, forest []model.NodeWithChildren)
		check = func(parent string, forest []model.NodeWithChildren) {
			for _, n := range forest {
				if n.Parent() != parent {
					t.Errorf("node %s parent = %q, want %q", n.ID, n.Parent(), parent)
				}
				check(n.ID, n.Children)
			}
		}
		check("", BuildImplementationTree(sampleNodes(), "r1"))
	})

	t.Run("orphans omitted", func(t *testing.T) {
		t.Parallel()
		nodes := append(sampleNodes(), buildNodes([]nodeSpec{{id: "o", parent: "missing"}})...)
		forest := BuildImplementationTree(nodes, "r1")
		if got := CountNodes(forest); got != 5 {
			t.Errorf("CountNodes = %d, want 5", got)
		}
	})

	t.Run("corrupted cycle terminates", func(t *testing.T) {
		t.Parallel()
		nodes := buildNodes([]nodeSpec{
			{id: "root"},
			{id: "p", parent: "q"},
			{id: "q", parent: "p"},
		})
		forest := BuildImplementationTree(nodes, "r1")
		if got := CountNodes(forest); got != 1 {
			t.Errorf("CountNodes = %d, want 1", got)
		}
	})

	t.Run("unknown requirement", func(t *testing.T) {
		t.Parallel()
		if forest := BuildImplementationTree(sampleNodes(), "nope"); len(forest) != 0 {
			t.Errorf("got %d roots, want 0", len(forest))
		}
	})
}

func TestAncestorsAndPath(t *testing.T) {
	t.Parallel()
	nodes := sampleNodes()

	tests := []struct {
		id        string
		ancestors []string
		path      []string
		depth     int
	}{
		{id: "d", ancestors: []string{"b", "a"}, path: []string{"name-a", "name-b", "name-d"}, depth: 2},
		{id: "c", ancestors: []string{"a"}, path: []string{"name-a", "name-c"}, depth: 1},
		{id: "a", ancestors: nil, path: []string{"name-a"}, depth: 0},
		{id: "missing", ancestors: nil, path: nil, depth: 0},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.ancestors, AncestorIDs(nodes, tt.id)); diff != "" {
				t.Errorf("AncestorIDs(%q) (-want +got):\n%s", tt.id, diff)
			}
			if diff := cmp.Diff(tt.path, Path(nodes, tt.id)); diff != "" {
				t.Errorf("Path(%q) (-want +got):\n%s", tt.id, diff)
			}
			if got := Depth(nodes, tt.id); got != tt.depth {
				t.Errorf("Depth(%q) = %d, want %d", tt.id, got, tt.depth)
			}
		})
	}
}

func TestPathLengthMatchesAncestors(t *testing.T) {
	t.Parallel()
	nodes := sampleNodes()
	idx := NewIndex(nodes)
	for _, n := range nodes {
		if got, want := len(idx.Path(n.ID)), len(idx.Ancestors(n.ID))+1; got != want {
			t.Errorf("len(Path(%s)) = %d, want %d", n.ID, got, want)
		}
	}
}

func TestDescendantIDs(t *testing.T) {
	t.Parallel()
	nodes := sampleNodes()

	got := DescendantIDs(nodes, "a")
	slices.Sort(got)
	if diff := cmp.Diff([]string{"b", "c", "d"}, got); diff != "" {
		t.Errorf("DescendantIDs(a) (-want +got):\n%s", diff)
	}
	if got := DescendantIDs(nodes, "d"); len(got) != 0 {
		t.Errorf("DescendantIDs(d) = %v, want empty", got)
	}
	if got := DescendantIDs(nodes, "missing"); len(got) != 0 {
		t.Errorf("DescendantIDs(missing) = %v, want empty", got)
	}
}

func TestWouldCreateCycle(t *testing.T) {
	t.Parallel()
	nodes := sampleNodes()

	tests := []struct {
		id, parent string
		want       bool
	}{
		{"a", "a", true},
		{"a", "b", true},
		{"a", "d", true},
		{"b", "d", true},
		{"a", "e", false},
		{"d", "e", false},
		{"d", "c", false},
		{"b", "", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s under %q", tt.id, tt.parent), func(t *testing.T) {
			t.Parallel()
			if got := WouldCreateCycle(nodes, tt.id, tt.parent); got != tt.want {
				t.Errorf("WouldCreateCycle(%q, %q) = %v, want %v", tt.id, tt.parent, got, tt.want)
			}
		})
	}
}

func TestWouldCreateCycleMatchesDescendants(t *testing.T) {
	t.Parallel()
	nodes := sampleNodes()
	idx := NewIndex(nodes)
	for _, x := range nodes {
		desc := idx.Descendants(x.ID)
		for _, y := range nodes {
			want := x.ID == y.ID || slices.Contains(desc, y.ID)
			if got := idx.WouldCreateCycle(x.ID, y.ID); got != want {
				t.Errorf("WouldCreateCycle(%s, %s) = %v, want %v", x.ID, y.ID, got, want)
			}
		}
	}
}

func TestUnreachable(t *testing.T) {
	t.Parallel()

	nodes := append(sampleNodes(), buildNodes([]nodeSpec{
		{id: "orphan", parent: "gone"},
		{id: "orphan-child", parent: "orphan"},
		{id: "p", parent: "q"},
		{id: "q", parent: "p"},
	})...)
	got := Unreachable(nodes, "r1")
	want := []string{"orphan", "orphan-child", "p", "q"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unreachable (-want +got):\n%s", diff)
	}
	if got := Unreachable(sampleNodes(), "r1"); len(got) != 0 {
		t.Errorf("Unreachable on clean forest = %v, want empty", got)
	}
}

func TestCorruptedAncestorChainTerminates(t *testing.T) {
	t.Parallel()
	nodes := buildNodes([]nodeSpec{
		{id: "p", parent: "q"},
		{id: "q", parent: "p"},
	})
	if got := AncestorIDs(nodes, "p"); len(got) != 1 || got[0] != "q" {
		t.Errorf("AncestorIDs(p) = %v, want [q]", got)
	}
}
