// Package state holds the whole destrack data set as one immutable value and
// the Engine that derives new values from it. Every mutation is a pure
// State → State transformation: the input is never modified and the result
// shares no mutable backing arrays with it, so a published State can be read
// while the next one is being built.
package state

import (
	"slices"

	"github.com/papapumpkin/destrack/internal/model"
)

// Collections is the persisted part of the state: five flat slices linked by
// id references.
type Collections struct {
	Projects            []model.Project            `json:"projects"`
	Categories          []model.Category           `json:"categories"`
	Subcategories       []model.Subcategory        `json:"subcategories"`
	Requirements        []model.Requirement        `json:"requirements"`
	ImplementationNodes []model.ImplementationNode `json:"implementationNodes"`
}

// Selection is session state. It is never persisted.
type Selection struct {
	ProjectID     string
	RequirementID string
}

// State is a complete snapshot of the data set plus the session selection.
type State struct {
	Collections
	Selection Selection
}

// FromCollections returns a State with an empty selection.
func FromCollections(c Collections) State {
	return State{Collections: c}
}

// Project returns the project with the given id.
func (s State) Project(id string) (model.Project, bool) {
	return find(s.Projects, func(p model.Project) bool { return p.ID == id })
}

// Category returns the category with the given id.
func (s State) Category(id string) (model.Category, bool) {
	return find(s.Categories, func(c model.Category) bool { return c.ID == id })
}

// Subcategory returns the subcategory with the given id.
func (s State) Subcategory(id string) (model.Subcategory, bool) {
	return find(s.Subcategories, func(c model.Subcategory) bool { return c.ID == id })
}

// Requirement returns the requirement with the given id.
func (s State) Requirement(id string) (model.Requirement, bool) {
	return find(s.Requirements, func(r model.Requirement) bool { return r.ID == id })
}

// Node returns the implementation node with the given id.
func (s State) Node(id string) (model.ImplementationNode, bool) {
	return find(s.ImplementationNodes, func(n model.ImplementationNode) bool { return n.ID == id })
}

// RequirementNodes returns the nodes mapped to one requirement, in stored order.
func (s State) RequirementNodes(requirementID string) []model.ImplementationNode {
	var out []model.ImplementationNode
	for _, n := range s.ImplementationNodes {
		if n.RequirementID == requirementID {
			out = append(out, n)
		}
	}
	return out
}

// ProjectSlice returns the collections reachable from projectID: the project
// itself and everything it owns, each in stored order.
func (s State) ProjectSlice(projectID string) Collections {
	set := s.expand(removal{projects: idSet{projectID: {}}})
	return s.keep(set)
}

// ProjectRequirements returns every requirement owned by projectID.
func (s State) ProjectRequirements(projectID string) []model.Requirement {
	return s.ProjectSlice(projectID).Requirements
}

// ProjectNodes returns every implementation node owned by projectID.
func (s State) ProjectNodes(projectID string) []model.ImplementationNode {
	return s.ProjectSlice(projectID).ImplementationNodes
}

// ProjectsByUpdated returns the projects ordered most recently updated first.
func (s State) ProjectsByUpdated() []model.Project {
	out := slices.Clone(s.Projects)
	slices.SortStableFunc(out, func(a, b model.Project) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// ProjectOfRequirement returns the id of the project owning requirementID,
// or "" if the chain is broken.
func (s State) ProjectOfRequirement(requirementID string) string {
	r, ok := s.Requirement(requirementID)
	if !ok {
		return ""
	}
	return s.projectOfSubcategory(r.SubcategoryID)
}

func (s State) projectOfSubcategory(subcategoryID string) string {
	sub, ok := s.Subcategory(subcategoryID)
	if !ok {
		return ""
	}
	return s.projectOfCategory(sub.CategoryID)
}

func (s State) projectOfCategory(categoryID string) string {
	c, ok := s.Category(categoryID)
	if !ok {
		return ""
	}
	return c.ProjectID
}

// NextCategoryOrder is the Order a new category in projectID receives.
func (s State) NextCategoryOrder(projectID string) int {
	orders := make([]int, 0, len(s.Categories))
	for _, c := range s.Categories {
		if c.ProjectID == projectID {
			orders = append(orders, c.Order)
		}
	}
	return nextOrder(orders)
}

// NextSubcategoryOrder is the Order a new subcategory in categoryID receives.
func (s State) NextSubcategoryOrder(categoryID string) int {
	orders := make([]int, 0, len(s.Subcategories))
	for _, sub := range s.Subcategories {
		if sub.CategoryID == categoryID {
			orders = append(orders, sub.Order)
		}
	}
	return nextOrder(orders)
}

// NextNodeOrder is the Order a new node under parentID ("" for the root
// level) of requirementID receives.
func (s State) NextNodeOrder(requirementID, parentID string) int {
	var orders []int
	for _, n := range s.ImplementationNodes {
		if n.RequirementID == requirementID && n.Parent() == parentID {
			orders = append(orders, n.Order)
		}
	}
	return nextOrder(orders)
}

// FilterByStatus returns the requirements with the given status. An empty
// status returns reqs unchanged.
func FilterByStatus(reqs []model.Requirement, status model.Status) []model.Requirement {
	if status == "" {
		return reqs
	}
	var out []model.Requirement
	for _, r := range reqs {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// nextOrder is max(0, orders...) + 1; gaps are left alone.
func nextOrder(orders []int) int {
	highest := 0
	for _, o := range orders {
		highest = max(highest, o)
	}
	return highest + 1
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	for _, it := range items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// replace returns a copy of items with fn applied to the first element
// matching match. The bool reports whether anything matched.
func replace[T any](items []T, match func(T) bool, fn func(T) T) ([]T, bool) {
	i := slices.IndexFunc(items, match)
	if i < 0 {
		return items, false
	}
	out := slices.Clone(items)
	out[i] = fn(out[i])
	return out, true
}
