package focus

import "github.com/vanderheijden86/pitgraph/pkg/graph"

// ActiveSet is the node and edge set a view makes visible.
type ActiveSet struct {
	Nodes graph.NodeSet
	Edges graph.EdgeSet
}

// NewActiveSet returns an empty set.
func NewActiveSet() ActiveSet {
	return ActiveSet{Nodes: graph.NewNodeSet(), Edges: graph.NewEdgeSet()}
}

// Union returns the element-wise union of a and b.
func (a ActiveSet) Union(b ActiveSet) ActiveSet {
	return ActiveSet{Nodes: a.Nodes.Union(b.Nodes), Edges: a.Edges.Union(b.Edges)}
}

// Difference returns the elements of a not in b.
func (a ActiveSet) Difference(b ActiveSet) ActiveSet {
	return ActiveSet{Nodes: a.Nodes.Difference(b.Nodes), Edges: a.Edges.Difference(b.Edges)}
}

// Equal reports whether both sets hold the same nodes and edges.
func (a ActiveSet) Equal(b ActiveSet) bool {
	return a.Nodes.Equal(b.Nodes) && a.Edges.Equal(b.Edges)
}

// Diff returns what a renderer must fade in and fade out to move from a to
// next: show = next - a, hide = a - next.
func (a ActiveSet) Diff(next ActiveSet) (show, hide ActiveSet) {
	show = ActiveSet{Nodes: next.Nodes.Difference(a.Nodes), Edges: next.Edges.Difference(a.Edges)}
	hide = ActiveSet{Nodes: a.Nodes.Difference(next.Nodes), Edges: a.Edges.Difference(next.Edges)}
	return show, hide
}

// Empty reports whether the set holds nothing.
func (a ActiveSet) Empty() bool {
	return a.Nodes.Len() == 0 && a.Edges.Len() == 0
}
