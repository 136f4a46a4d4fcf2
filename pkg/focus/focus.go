// Package focus computes the active node and edge sets of the three graph
// views: global, pipeline focus and data-flow focus.
//
// Every computation is a pure function of the store and the focus id. Empty
// neighborhoods are valid results; only unknown ids and wrong node kinds are
// errors.
package focus

import (
	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Policy holds the configurable parts of the focus rules.
type Policy struct {
	// PublicAsSource lets a Public node count as the source of a data flow in
	// the data-flow focus. Public is otherwise treated as sink-only.
	PublicAsSource bool
}

// DefaultPolicy treats Public as sink-only.
func DefaultPolicy() Policy {
	return Policy{}
}

// SourceKinds returns the kinds accepted as a data flow's source.
func (p Policy) SourceKinds() model.KindSet {
	if p.PublicAsSource {
		return model.PipelineKinds
	}
	return model.GroupKinds
}

// Computer computes focus views over one store.
type Computer struct {
	store  *graph.Store
	policy Policy
}

// NewComputer returns a Computer over s.
func NewComputer(s *graph.Store, p Policy) *Computer {
	return &Computer{store: s, policy: p}
}

// Store returns the underlying store.
func (c *Computer) Store() *graph.Store { return c.store }

// Policy returns the policy in effect.
func (c *Computer) Policy() Policy { return c.policy }

func (c *Computer) lookup(op, id string, want model.KindSet) (model.Node, error) {
	n, ok := c.store.Node(id)
	if !ok {
		return model.Node{}, &UnknownNodeError{ID: id}
	}
	if !n.Kinds.Matches(want) {
		return model.Node{}, &KindMismatchError{Op: op, ID: id, Name: n.Name, Have: n.Kinds, Want: want}
	}
	return n, nil
}

// PipelineView is the two-hop neighborhood of a pipeline.
type PipelineView struct {
	Pipeline     string
	Inputs       graph.NodeSet // flows into the pipeline
	Sources      graph.NodeSet // pipelines feeding those flows
	Outputs      graph.NodeSet // flows out of the pipeline
	Destinations graph.NodeSet // pipelines those flows reach
	Active       ActiveSet
}

// PipelineDetail computes the pipeline focus of id with its parts named.
func (c *Computer) PipelineDetail(id string) (PipelineView, error) {
	defer metrics.Timer(metrics.PipelineFocus)()
	if _, err := c.lookup("pipeline", id, model.PipelineKinds); err != nil {
		return PipelineView{}, err
	}
	s := c.store
	flows := model.Kinds(model.KindDataFlow)
	p := graph.NewNodeSet(id)

	v := PipelineView{Pipeline: id}
	v.Inputs = s.Incoming(id, flows)
	v.Sources = s.IncomingOf(v.Inputs, model.PipelineKinds)
	v.Outputs = s.Outgoing(id, flows)
	v.Destinations = s.OutgoingOf(v.Outputs, model.PipelineKinds)

	v.Active.Nodes = p.Union(v.Inputs).Union(v.Sources).Union(v.Outputs).Union(v.Destinations)
	v.Active.Edges = s.EdgesBetween(v.Sources, v.Inputs).
		Union(s.EdgesBetween(v.Inputs, p)).
		Union(s.EdgesBetween(p, v.Outputs)).
		Union(s.EdgesBetween(v.Outputs, v.Destinations))

	debug.Log("focus.Pipeline %s: %d inputs, %d sources, %d outputs, %d destinations",
		id, v.Inputs.Len(), v.Sources.Len(), v.Outputs.Len(), v.Destinations.Len())
	return v, nil
}

// Pipeline returns the active set of the pipeline focus of id: the pipeline,
// its input and output flows, and the pipelines at the far end of each.
func (c *Computer) Pipeline(id string) (ActiveSet, error) {
	v, err := c.PipelineDetail(id)
	if err != nil {
		return ActiveSet{}, err
	}
	return v.Active, nil
}

// DataFlowView is the data-flow focus of one flow node, split into the flow
// subgraph (source -> flow -> destinations) and the tree subgraph (flow and
// its structural descendants).
type DataFlowView struct {
	Flow         string
	Sources      graph.NodeSet
	Destinations graph.NodeSet
	Children     graph.NodeSet // direct DataTree children of the flow
	Descendants  graph.NodeSet // children plus their DataTree closure

	FlowNodes graph.NodeSet
	FlowEdges graph.EdgeSet
	TreeNodes graph.NodeSet
	TreeEdges graph.EdgeSet

	Active ActiveSet
}

// HasDescendants reports whether the flow decomposes into elements.
func (v DataFlowView) HasDescendants() bool {
	return v.Children.Len() > 0
}

// DataFlow computes the data-flow focus of id. The descendant closure is
// taken per direct child over DataTree edges only, so subtrees of sibling
// flows never leak in.
func (c *Computer) DataFlow(id string) (DataFlowView, error) {
	defer metrics.Timer(metrics.DataFlowFocus)()
	if _, err := c.lookup("data-flow", id, model.Kinds(model.KindDataFlow)); err != nil {
		return DataFlowView{}, err
	}
	s := c.store
	f := graph.NewNodeSet(id)

	v := DataFlowView{Flow: id}
	v.Sources = s.Incoming(id, c.policy.SourceKinds())
	v.Destinations = s.Outgoing(id, model.PipelineKinds)
	v.Children = c.treeChildren(id)
	v.Descendants = v.Children.Clone()
	for child := range v.Children {
		v.Descendants = v.Descendants.Union(s.Descendants(child, model.StructureKinds))
	}

	v.FlowNodes = f.Union(v.Sources).Union(v.Destinations)
	v.TreeNodes = f.Union(v.Descendants)
	v.FlowEdges = s.EdgesBetween(v.Sources, f).Union(s.EdgesBetween(f, v.Destinations))
	v.TreeEdges = s.EdgesBetweenKind(v.TreeNodes, v.TreeNodes, model.EdgeDataTree)

	v.Active = ActiveSet{
		Nodes: v.FlowNodes.Union(v.TreeNodes),
		Edges: v.FlowEdges.Union(v.TreeEdges),
	}
	debug.Log("focus.DataFlow %s: %d sources, %d destinations, %d descendants",
		id, v.Sources.Len(), v.Destinations.Len(), v.Descendants.Len())
	return v, nil
}

// treeChildren returns the structural nodes reached from id over a DataTree
// edge.
func (c *Computer) treeChildren(id string) graph.NodeSet {
	s := c.store
	candidates := s.Outgoing(id, model.StructureKinds)
	out := graph.NewNodeSet()
	for eid := range s.EdgesBetweenKind(graph.NewNodeSet(id), candidates, model.EdgeDataTree) {
		if e, ok := s.Edge(eid); ok {
			out.Add(e.Target)
		}
	}
	return out
}

// Global returns the global view: every working-group, external-group and
// data-flow node, with the edges among them. Public and structural nodes are
// hidden. The result does not depend on any earlier focus.
func (c *Computer) Global() ActiveSet {
	nodes := c.store.Filter(model.GlobalKinds)
	return ActiveSet{Nodes: nodes, Edges: c.store.EdgesAmong(nodes)}
}
