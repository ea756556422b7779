package state

import "github.com/papapumpkin/destrack/internal/model"

type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) add(id string) {
	s[id] = struct{}{}
}

// removal names, per level, the ids a cascade touches.
type removal struct {
	projects      idSet
	categories    idSet
	subcategories idSet
	requirements  idSet
	nodes         idSet
}

// Counts reports how many entities of each kind a cascade removed.
type Counts struct {
	Projects      int
	Categories    int
	Subcategories int
	Requirements  int
	Nodes         int
}

func (r removal) counts() Counts {
	return Counts{
		Projects:      len(r.projects),
		Categories:    len(r.categories),
		Subcategories: len(r.subcategories),
		Requirements:  len(r.requirements),
		Nodes:         len(r.nodes),
	}
}

// expand fills each lower level with the children of the level above, top
// down, so a seed at any level yields the full owned subtree.
func (s State) expand(seed removal) removal {
	r := removal{
		projects:      idSet{},
		categories:    idSet{},
		subcategories: idSet{},
		requirements:  idSet{},
		nodes:         idSet{},
	}
	for id := range seed.projects {
		if _, ok := s.Project(id); ok {
			r.projects.add(id)
		}
	}
	for id := range seed.categories {
		r.categories.add(id)
	}
	for id := range seed.subcategories {
		r.subcategories.add(id)
	}
	for id := range seed.requirements {
		r.requirements.add(id)
	}
	for id := range seed.nodes {
		r.nodes.add(id)
	}

	for _, c := range s.Categories {
		if r.projects.has(c.ProjectID) {
			r.categories.add(c.ID)
		}
	}
	for _, sub := range s.Subcategories {
		if r.categories.has(sub.CategoryID) {
			r.subcategories.add(sub.ID)
		}
	}
	for _, req := range s.Requirements {
		if r.subcategories.has(req.SubcategoryID) {
			r.requirements.add(req.ID)
		}
	}
	for _, n := range s.ImplementationNodes {
		if r.requirements.has(n.RequirementID) {
			r.nodes.add(n.ID)
		}
	}
	return r
}

// without returns a state with every id in r filtered out of all five
// collections in a single pass, and the selection cleared where it pointed
// into the removed set.
func (s State) without(r removal) State {
	next := State{Selection: s.Selection}
	next.Projects = filter(s.Projects, func(p model.Project) bool { return !r.projects.has(p.ID) })
	next.Categories = filter(s.Categories, func(c model.Category) bool { return !r.categories.has(c.ID) })
	next.Subcategories = filter(s.Subcategories, func(sub model.Subcategory) bool { return !r.subcategories.has(sub.ID) })
	next.Requirements = filter(s.Requirements, func(req model.Requirement) bool { return !r.requirements.has(req.ID) })
	next.ImplementationNodes = filter(s.ImplementationNodes, func(n model.ImplementationNode) bool { return !r.nodes.has(n.ID) })

	if r.projects.has(next.Selection.ProjectID) {
		next.Selection.ProjectID = ""
	}
	if r.requirements.has(next.Selection.RequirementID) {
		next.Selection.RequirementID = ""
	}
	return next
}

// keep is the complement of without: only the ids in r survive.
func (s State) keep(r removal) Collections {
	return Collections{
		Projects:            filter(s.Projects, func(p model.Project) bool { return r.projects.has(p.ID) }),
		Categories:          filter(s.Categories, func(c model.Category) bool { return r.categories.has(c.ID) }),
		Subcategories:       filter(s.Subcategories, func(sub model.Subcategory) bool { return r.subcategories.has(sub.ID) }),
		Requirements:        filter(s.Requirements, func(req model.Requirement) bool { return r.requirements.has(req.ID) }),
		ImplementationNodes: filter(s.ImplementationNodes, func(n model.ImplementationNode) bool { return r.nodes.has(n.ID) }),
	}
}

// filter always returns a fresh slice, never a view of items.
func filter[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}
