package graph

import (
	"fmt"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Validate checks the flow and tree invariants of s:
//
//   - every DataFlow node has an incoming and an outgoing DataFlow edge
//   - DataLeaf nodes have no outgoing DataTree edges
//   - a node has at most one DataTree parent
//   - every DataTree/DataLeaf node that is not a flow root has a DataTree parent
//   - DataTree edges only point at DataTree or DataLeaf nodes
//
// Nodes are checked in insertion order so the first violation reported is
// deterministic.
func Validate(s *Store) error {
	in := make(map[string]map[model.EdgeKind]int, s.NodeCount())
	out := make(map[string]map[model.EdgeKind]int, s.NodeCount())
	bump := func(m map[string]map[model.EdgeKind]int, id string, k model.EdgeKind) {
		if m[id] == nil {
			m[id] = make(map[model.EdgeKind]int, 2)
		}
		m[id][k]++
	}
	for _, e := range s.Edges() {
		bump(out, e.Source, e.Kind)
		bump(in, e.Target, e.Kind)
		if e.Kind == model.EdgeDataTree {
			target, _ := s.Node(e.Target)
			if !target.Kinds.Matches(model.StructureKinds) {
				return &StructuralError{
					Kind: KindDanglingReference,
					Msg:  fmt.Sprintf("tree edge %q points at non-structural node %q", e.ID, target.Name),
				}
			}
		}
	}

	for _, n := range s.Nodes() {
		if n.Is(model.KindDataFlow) {
			if in[n.ID][model.EdgeDataFlow] == 0 {
				return &StructuralError{Kind: KindFlowWithoutSource, Msg: fmt.Sprintf("data flow %q has no source pipeline", n.Name)}
			}
			if out[n.ID][model.EdgeDataFlow] == 0 {
				return &StructuralError{Kind: KindFlowWithoutDestination, Msg: fmt.Sprintf("data flow %q has no destination pipeline", n.Name)}
			}
		}
		if n.Is(model.KindDataLeaf) && out[n.ID][model.EdgeDataTree] > 0 {
			return &StructuralError{Kind: KindLeafWithChildren, Msg: fmt.Sprintf("data leaf %q has children", n.Name)}
		}
		parents := in[n.ID][model.EdgeDataTree]
		if parents > 1 {
			return &StructuralError{Kind: KindMultipleTreeParents, Msg: fmt.Sprintf("node %q has %d tree parents", n.Name, parents)}
		}
		if n.IsStructural() && parents == 0 {
			return &StructuralError{Kind: KindOrphanTreeNode, Msg: fmt.Sprintf("tree node %q has no parent", n.Name)}
		}
	}
	return nil
}
