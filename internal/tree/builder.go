// Package tree derives nested views from the flat entity collections and
// provides traversal over the self-referential implementation-node forest.
// Nothing here mutates its input.
package tree

import (
	"cmp"
	"slices"

	"github.com/papapumpkin/destrack/internal/model"
)

// BuildRequirementsTree nests the project's categories, their subcategories
// and their requirements. Categories and subcategories are ordered by Order
// (stable, so equal orders keep input order); requirements keep input order.
func BuildRequirementsTree(categories []model.Category, subcategories []model.Subcategory, requirements []model.Requirement, projectID string) []model.CategoryWithChildren {
	var projectCats []model.Category
	for _, c := range categories {
		if c.ProjectID == projectID {
			projectCats = append(projectCats, c)
		}
	}
	slices.SortStableFunc(projectCats, func(a, b model.Category) int {
		return cmp.Compare(a.Order, b.Order)
	})

	subsByCategory := make(map[string][]model.Subcategory)
	for _, s := range subcategories {
		subsByCategory[s.CategoryID] = append(subsByCategory[s.CategoryID], s)
	}
	reqsBySub := make(map[string][]model.Requirement)
	for _, r := range requirements {
		reqsBySub[r.SubcategoryID] = append(reqsBySub[r.SubcategoryID], r)
	}

	result := make([]model.CategoryWithChildren, 0, len(projectCats))
	for _, c := range projectCats {
		subs := subsByCategory[c.ID]
		slices.SortStableFunc(subs, func(a, b model.Subcategory) int {
			return cmp.Compare(a.Order, b.Order)
		})
		children := make([]model.SubcategoryWithChildren, 0, len(subs))
		for _, s := range subs {
			children = append(children, model.SubcategoryWithChildren{
				Subcategory:  s,
				Requirements: reqsBySub[s.ID],
			})
		}
		result = append(result, model.CategoryWithChildren{
			Category:      c,
			Subcategories: children,
		})
	}
	return result
}

// BuildImplementationTree returns the requirement's forest, roots first,
// each sibling group ordered by Order. Nodes whose parent is not among the
// requirement's nodes are unreachable and are left out.
func BuildImplementationTree(nodes []model.ImplementationNode, requirementID string) []model.NodeWithChildren {
	children := make(map[string][]model.ImplementationNode)
	for _, n := range nodes {
		if n.RequirementID != requirementID {
			continue
		}
		children[n.Parent()] = append(children[n.Parent()], n)
	}
	for _, group := range children {
		slices.SortStableFunc(group, byOrder)
	}

	// seen guards against corrupted input where a parent chain loops back.
	seen := make(map[string]bool)
	var build func(parentID string) []model.NodeWithChildren
	build = func(parentID string) []model.NodeWithChildren {
		group := children[parentID]
		if len(group) == 0 {
			return nil
		}
		out := make([]model.NodeWithChildren, 0, len(group))
		for _, n := range group {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			out = append(out, model.NodeWithChildren{
				ImplementationNode: n,
				Children:           build(n.ID),
			})
		}
		return out
	}
	return build("")
}

// CountNodes returns the number of nodes in a forest.
func CountNodes(forest []model.NodeWithChildren) int {
	total := 0
	for _, n := range forest {
		total += 1 + CountNodes(n.Children)
	}
	return total
}

func byOrder(a, b model.ImplementationNode) int {
	return cmp.Compare(a.Order, b.Order)
}
