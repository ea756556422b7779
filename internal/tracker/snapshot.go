package tracker

import (
	"context"
	"fmt"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/snapshot"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/telemetry"
)

// RecordSnapshot adds the entries of root as directory and file nodes of
// requirementID below parentID ("" for the root level). An entry matching an
// existing sibling by name and type is reused, so recording the same
// directory twice adds nothing. It returns the nodes it created.
func (t *Tracker) RecordSnapshot(ctx context.Context, requirementID, parentID string, root *snapshot.Entry) ([]model.ImplementationNode, error) {
	var added []model.ImplementationNode
	evt := telemetry.Event{Op: "record snapshot", EntityID: requirementID}
	err := t.apply(ctx, evt, func(s state.State) (state.State, error) {
		added = nil
		return recordEntry(t.engine, s, requirementID, parentID, root, &added)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func recordEntry(e state.Engine, s state.State, requirementID, parentID string, entry *snapshot.Entry, added *[]model.ImplementationNode) (state.State, error) {
	typ := model.NodeFile
	if entry.Dir {
		typ = model.NodeDirectory
	}

	id := ""
	for _, n := range s.RequirementNodes(requirementID) {
		if n.Parent() == parentID && n.Name == entry.Name && n.Type == typ {
			id = n.ID
			break
		}
	}
	if id == "" {
		in := state.NodeInput{Type: typ, Name: entry.Name}
		if entry.Omitted > 0 {
			in.Notes = fmt.Sprintf("%d entries not captured", entry.Omitted)
		}
		next, n, err := e.AddNode(s, requirementID, parentID, in)
		if err != nil {
			return s, err
		}
		if n.ID == "" {
			return s, nil
		}
		s, id = next, n.ID
		*added = append(*added, n)
	}

	for _, child := range entry.Children {
		var err error
		if s, err = recordEntry(e, s, requirementID, id, child, added); err != nil {
			return s, err
		}
	}
	return s, nil
}
