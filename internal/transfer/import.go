package transfer

import (
	"slices"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/tree"
)

// ImportedSuffix is appended to the name of every imported project.
const ImportedSuffix = " (Imported)"

// Result describes one import.
type Result struct {
	Project model.Project
	// Imported counts the entities added, project included.
	Imported state.Counts
	// Dropped counts entities whose parent reference pointed outside the
	// document, plus nodes unreachable from their requirement's roots.
	Dropped int
}

// Import adds doc to s as a new project. Every entity gets a fresh id from
// e and per-level translation tables remap all references, so nothing in
// doc can collide with or attach to existing data. The new project is selected.
// Unknown priority, status and node type values fall back to the defaults.
func Import(e state.Engine, s state.State, doc Document) (state.State, Result, error) {
	if err := doc.Validate(); err != nil {
		return s, Result{}, err
	}

	var res Result
	now := e.Timestamp()

	p := doc.Project
	p.ID = e.NextID()
	p.Name += ImportedSuffix
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	// One translation table per level, old id to new id.
	categoryIDs := make(map[string]string)
	var categories []model.Category
	for _, c := range doc.Categories {
		if c.ProjectID != doc.Project.ID {
			res.Dropped++
			continue
		}
		c.ProjectID = p.ID
		c.ID = assign(categoryIDs, c.ID, e)
		categories = append(categories, c)
	}

	subcategoryIDs := make(map[string]string)
	var subcategories []model.Subcategory
	for _, sub := range doc.Subcategories {
		parent, ok := categoryIDs[sub.CategoryID]
		if !ok {
			res.Dropped++
			continue
		}
		sub.CategoryID = parent
		sub.ID = assign(subcategoryIDs, sub.ID, e)
		subcategories = append(subcategories, sub)
	}

	requirementIDs := make(map[string]string)
	var requirements []model.Requirement
	for _, r := range doc.Requirements {
		parent, ok := subcategoryIDs[r.SubcategoryID]
		if !ok {
			res.Dropped++
			continue
		}
		r.SubcategoryID = parent
		r.ID = assign(requirementIDs, r.ID, e)
		if !r.Priority.Valid() {
			r.Priority = model.PriorityMedium
		}
		if !r.Status.Valid() {
			r.Status = model.StatusNotStarted
		}
		requirements = append(requirements, r)
	}

	// Every node id is assigned before parents are remapped, since a child
	// may precede its parent in the document.
	nodeIDs := make(map[string]string)
	var kept []model.ImplementationNode
	for _, n := range doc.ImplementationNodes {
		req, ok := requirementIDs[n.RequirementID]
		if !ok {
			res.Dropped++
			continue
		}
		n.RequirementID = req
		kept = append(kept, n)
	}
	for i := range kept {
		kept[i].ID = assign(nodeIDs, kept[i].ID, e)
	}
	nodes := make([]model.ImplementationNode, 0, len(kept))
	for _, n := range kept {
		if !n.IsRoot() {
			parent, ok := nodeIDs[n.Parent()]
			if !ok {
				res.Dropped++
				continue
			}
			n.ParentID = model.Ref(parent)
		}
		if !n.Type.Valid() {
			n.Type = model.NodeFile
		}
		nodes = append(nodes, n)
	}
	nodes, unreachable := reachableOnly(nodes, requirements)
	res.Dropped += unreachable

	s.Projects = append(slices.Clone(s.Projects), p)
	s.Categories = append(slices.Clone(s.Categories), categories...)
	s.Subcategories = append(slices.Clone(s.Subcategories), subcategories...)
	s.Requirements = append(slices.Clone(s.Requirements), requirements...)
	s.ImplementationNodes = append(slices.Clone(s.ImplementationNodes), nodes...)
	s.Selection = state.Selection{ProjectID: p.ID}

	res.Project = p
	res.Imported = state.Counts{
		Projects:      1,
		Categories:    len(categories),
		Subcategories: len(subcategories),
		Requirements:  len(requirements),
		Nodes:         len(nodes),
	}
	return s, res, nil
}

func assign(table map[string]string, old string, e state.Engine) string {
	id := e.NextID()
	table[old] = id
	return id
}

// reachableOnly drops nodes that cannot be reached from their requirement's
// roots, which covers cycles and parents under another requirement.
func reachableOnly(nodes []model.ImplementationNode, requirements []model.Requirement) ([]model.ImplementationNode, int) {
	drop := make(map[string]bool)
	for _, r := range requirements {
		for _, id := range tree.Unreachable(nodes, r.ID) {
			drop[id] = true
		}
	}
	if len(drop) == 0 {
		return nodes, 0
	}
	out := make([]model.ImplementationNode, 0, len(nodes)-len(drop))
	for _, n := range nodes {
		if !drop[n.ID] {
			out = append(out, n)
		}
	}
	return out, len(drop)
}
