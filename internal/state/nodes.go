package state

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/tree"
)

// NodeInput carries the fields of a new implementation node. An empty Notes
// is stored as null.
type NodeInput struct {
	Type  model.NodeType
	Name  string
	Notes string
}

// NodePatch lists the node fields to change; nil means unchanged. Setting
// Notes to "" clears them. Parent and requirement are not patchable: use
// MoveNode to re-parent.
type NodePatch struct {
	Type  *model.NodeType
	Name  *string
	Notes *string
	Order *int
}

// AddNode appends a node under parentID ("" for a root) of requirementID at
// the next sibling order. A parent that belongs to another requirement is
// rejected with ErrCrossRequirement.
func (e Engine) AddNode(s State, requirementID, parentID string, in NodeInput) (State, model.ImplementationNode, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return s, model.ImplementationNode{}, emptyField("node", "name")
	}
	if !in.Type.Valid() {
		return s, model.ImplementationNode{}, invalidValue("node", "type", string(in.Type))
	}
	if _, ok := s.Requirement(requirementID); !ok {
		return s, model.ImplementationNode{}, nil
	}
	if parentID != "" {
		parent, ok := s.Node(parentID)
		if !ok {
			return s, model.ImplementationNode{}, nil
		}
		if parent.RequirementID != requirementID {
			return s, model.ImplementationNode{}, fmt.Errorf("%w: parent %s belongs to requirement %s",
				ErrCrossRequirement, parentID, parent.RequirementID)
		}
	}
	n := model.ImplementationNode{
		ID:            e.id(),
		Type:          in.Type,
		Name:          name,
		ParentID:      model.Ref(parentID),
		RequirementID: requirementID,
		Notes:         model.Ref(strings.TrimSpace(in.Notes)),
		Order:         s.NextNodeOrder(requirementID, parentID),
	}
	s.ImplementationNodes = appendCopy(s.ImplementationNodes, n)
	return e.touch(s, s.ProjectOfRequirement(requirementID)), n, nil
}

// UpdateNode applies patch to the node.
func (e Engine) UpdateNode(s State, id string, patch NodePatch) (State, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return s, emptyField("node", "name")
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return s, invalidValue("node", "type", string(*patch.Type))
	}
	nodes, ok := replace(s.ImplementationNodes, func(n model.ImplementationNode) bool { return n.ID == id },
		func(n model.ImplementationNode) model.ImplementationNode {
			if patch.Type != nil {
				n.Type = *patch.Type
			}
			if patch.Name != nil {
				n.Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Notes != nil {
				n.Notes = model.Ref(strings.TrimSpace(*patch.Notes))
			}
			if patch.Order != nil {
				n.Order = *patch.Order
			}
			return n
		})
	if !ok {
		return s, nil
	}
	s.ImplementationNodes = nodes
	n, _ := s.Node(id)
	return e.touch(s, s.ProjectOfRequirement(n.RequirementID)), nil
}

// MoveNode re-parents a node under newParentID ("" for the root level) with
// the given order. The move is checked before anything changes: it fails
// with ErrCycle when newParentID is the node itself or one of its
// descendants, and with ErrCrossRequirement when newParentID belongs to a
// different requirement. On failure the input state is returned. Only
// ParentID and Order change on success.
func (e Engine) MoveNode(s State, id, newParentID string, order int) (State, error) {
	n, ok := s.Node(id)
	if !ok {
		return s, nil
	}
	if newParentID != "" {
		parent, ok := s.Node(newParentID)
		if !ok {
			return s, nil
		}
		if parent.RequirementID != n.RequirementID {
			return s, fmt.Errorf("%w: %s belongs to requirement %s, %s to %s",
				ErrCrossRequirement, newParentID, parent.RequirementID, id, n.RequirementID)
		}
	}
	if tree.WouldCreateCycle(s.ImplementationNodes, id, newParentID) {
		return s, fmt.Errorf("%w: %s cannot move under %s", ErrCycle, id, newParentID)
	}

	s.ImplementationNodes, _ = replace(s.ImplementationNodes, func(x model.ImplementationNode) bool { return x.ID == id },
		func(x model.ImplementationNode) model.ImplementationNode {
			x.ParentID = model.Ref(newParentID)
			x.Order = order
			return x
		})
	return e.touch(s, s.ProjectOfRequirement(n.RequirementID)), nil
}

// DeleteNode removes the node and every descendant belonging to the same
// requirement.
func (e Engine) DeleteNode(s State, id string) (State, Counts) {
	n, ok := s.Node(id)
	if !ok {
		return s, Counts{}
	}
	r := s.expand(removal{nodes: nodeSubtree(s.RequirementNodes(n.RequirementID), id)})
	return e.touch(s.without(r), s.ProjectOfRequirement(n.RequirementID)), r.counts()
}

// PruneUnreachable deletes nodes of requirementID that cannot be reached
// from its roots. An empty requirementID prunes every requirement. It
// returns the removed ids.
func (e Engine) PruneUnreachable(s State, requirementID string) (State, []string) {
	var reqIDs []string
	if requirementID != "" {
		reqIDs = []string{requirementID}
	} else {
		seen := make(map[string]bool)
		for _, n := range s.ImplementationNodes {
			if !seen[n.RequirementID] {
				seen[n.RequirementID] = true
				reqIDs = append(reqIDs, n.RequirementID)
			}
		}
	}

	doomed := idSet{}
	var removed []string
	for _, rid := range reqIDs {
		for _, id := range tree.Unreachable(s.ImplementationNodes, rid) {
			doomed.add(id)
			removed = append(removed, id)
		}
	}
	if len(doomed) == 0 {
		return s, nil
	}
	return s.without(s.expand(removal{nodes: doomed})), removed
}

func nodeSubtree(nodes []model.ImplementationNode, id string) idSet {
	set := idSet{id: {}}
	for _, d := range tree.DescendantIDs(nodes, id) {
		set.add(d)
	}
	return set
}
