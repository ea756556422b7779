package tree

import "github.com/papapumpkin/destrack/internal/model"

// Index is an id-keyed view over a flat implementation-node collection.
// Building one is O(n); every query afterwards avoids rescanning the slice.
type Index struct {
	byID     map[string]model.ImplementationNode
	children map[string][]string // parent id ("" for roots) → child ids in input order
}

// NewIndex indexes nodes by id and by parent.
func NewIndex(nodes []model.ImplementationNode) *Index {
	idx := &Index{
		byID:     make(map[string]model.ImplementationNode, len(nodes)),
		children: make(map[string][]string),
	}
	for _, n := range nodes {
		idx.byID[n.ID] = n
		idx.children[n.Parent()] = append(idx.children[n.Parent()], n.ID)
	}
	return idx
}

// Node returns the node with the given id.
func (x *Index) Node(id string) (model.ImplementationNode, bool) {
	n, ok := x.byID[id]
	return n, ok
}

// Children returns the ids of id's direct children.
func (x *Index) Children(id string) []string {
	if id == "" {
		return nil
	}
	return x.children[id]
}

// Ancestors returns ancestor ids from the immediate parent up to the root.
// It is empty for a root or an unknown id.
func (x *Index) Ancestors(id string) []string {
	var ancestors []string
	visited := map[string]bool{id: true}
	cur, ok := x.byID[id]
	for ok && cur.ParentID != nil {
		parent := *cur.ParentID
		if visited[parent] {
			break
		}
		visited[parent] = true
		ancestors = append(ancestors, parent)
		cur, ok = x.byID[parent]
	}
	return ancestors
}

// Descendants returns every id in the subtree below id, depth-first,
// excluding id itself.
func (x *Index) Descendants(id string) []string {
	var out []string
	visited := map[string]bool{id: true}
	var walk func(string)
	walk = func(parent string) {
		for _, child := range x.Children(parent) {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)
	return out
}

// Depth returns the number of parent hops from id to its root. Roots and
// unknown ids have depth 0.
func (x *Index) Depth(id string) int {
	return len(x.Ancestors(id))
}

// Path returns node names from the root down to id, inclusive. It is empty
// for an unknown id.
func (x *Index) Path(id string) []string {
	n, ok := x.byID[id]
	if !ok {
		return nil
	}
	ancestors := x.Ancestors(id)
	path := make([]string, len(ancestors)+1)
	path[len(ancestors)] = n.Name
	for i, aid := range ancestors {
		name := ""
		if a, ok := x.byID[aid]; ok {
			name = a.Name
		}
		path[len(ancestors)-1-i] = name
	}
	return path
}

// WouldCreateCycle reports whether making newParentID the parent of id would
// close a loop: either the two are the same node or newParentID already
// sits below id. Moving to the root level (newParentID == "") never does.
func (x *Index) WouldCreateCycle(id, newParentID string) bool {
	if newParentID == "" {
		return false
	}
	if id == newParentID {
		return true
	}
	for _, d := range x.Descendants(id) {
		if d == newParentID {
			return true
		}
	}
	return false
}

// Unreachable returns the ids of requirementID's nodes that cannot be
// reached from that requirement's roots, in input order.
func Unreachable(nodes []model.ImplementationNode, requirementID string) []string {
	var scoped []model.ImplementationNode
	for _, n := range nodes {
		if n.RequirementID == requirementID {
			scoped = append(scoped, n)
		}
	}
	idx := NewIndex(scoped)
	reachable := make(map[string]bool, len(scoped))
	for _, root := range idx.children[""] {
		reachable[root] = true
		for _, d := range idx.Descendants(root) {
			reachable[d] = true
		}
	}
	var out []string
	for _, n := range scoped {
		if !reachable[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// AncestorIDs is a one-shot form of Index.Ancestors.
func AncestorIDs(nodes []model.ImplementationNode, id string) []string {
	return NewIndex(nodes).Ancestors(id)
}

// DescendantIDs is a one-shot form of Index.Descendants.
func DescendantIDs(nodes []model.ImplementationNode, id string) []string {
	return NewIndex(nodes).Descendants(id)
}

// Depth is a one-shot form of Index.Depth.
func Depth(nodes []model.ImplementationNode, id string) int {
	return NewIndex(nodes).Depth(id)
}

// Path is a one-shot form of Index.Path.
func Path(nodes []model.ImplementationNode, id string) []string {
	return NewIndex(nodes).Path(id)
}

// WouldCreateCycle is a one-shot form of Index.WouldCreateCycle.
func WouldCreateCycle(nodes []model.ImplementationNode, id, newParentID string) bool {
	return NewIndex(nodes).WouldCreateCycle(id, newParentID)
}
