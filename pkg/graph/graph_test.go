package graph_test

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/pitgraph/pkg/dataset"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/testutil"
)

func mustBuild(t *testing.T, decls []model.DataFlowDeclaration, opts ...graph.BuildOption) *graph.Store {
	t.Helper()
	s, err := graph.Build(decls, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuildChain(t *testing.T) {
	s := mustBuild(t, testutil.ChainFixture())

	if s.NodeCount() != 5 {
		t.Errorf("expected 5 nodes, got %d", s.NodeCount())
	}
	if s.EdgeCount() != 4 {
		t.Errorf("expected 4 edges, got %d", s.EdgeCount())
	}
	testutil.AssertEdgeNames(t, s, s.EdgesAmong(s.Filter(model.AllKinds)), "A->X", "X->B", "B->Y", "Y->C")

	c, ok := s.Node(graph.PipelineID("C"))
	if !ok {
		t.Fatal("public node C missing")
	}
	if !c.Is(model.KindPublic) || c.Is(model.KindWorkingGroupPipeline) {
		t.Errorf("C kinds = %s, want public", c.Kinds)
	}
}

func TestBuildStableIDs(t *testing.T) {
	a := mustBuild(t, testutil.SiblingFixture(), graph.WithContentDerivedIDs())
	b := mustBuild(t, testutil.SiblingFixture(), graph.WithContentDerivedIDs())

	an, bn := a.Nodes(), b.Nodes()
	if len(an) != len(bn) {
		t.Fatalf("node counts differ: %d vs %d", len(an), len(bn))
	}
	for i := range an {
		if an[i].ID != bn[i].ID {
			t.Errorf("node %d (%s): ids differ %s vs %s", i, an[i].Name, an[i].ID, bn[i].ID)
		}
	}
}

func TestBuildRandomElementIDs(t *testing.T) {
	a := mustBuild(t, testutil.TreeFixture())
	b := mustBuild(t, testutil.TreeFixture())

	// Pipelines and flow roots stay stable; decomposition nodes do not.
	flow := graph.FlowID("A", "X")
	if _, ok := a.Node(flow); !ok {
		t.Fatal("flow root missing from first build")
	}
	if _, ok := b.Node(flow); !ok {
		t.Fatal("flow root missing from second build")
	}
	ac := a.Outgoing(flow, model.StructureKinds)
	bc := b.Outgoing(flow, model.StructureKinds)
	if ac.Len() != 2 || bc.Len() != 2 {
		t.Fatalf("expected 2 children, got %d and %d", ac.Len(), bc.Len())
	}
	if ac.Intersection(bc).Len() != 0 {
		t.Errorf("random element ids collided across builds: %v", ac.Intersection(bc).Sorted())
	}
}

func TestBuildDualTaggedRoot(t *testing.T) {
	s := mustBuild(t, testutil.TreeFixture())
	x, _ := s.Node(graph.FlowID("A", "X"))
	if !x.Is(model.KindDataFlow) || !x.Is(model.KindDataTree) {
		t.Errorf("X kinds = %s, want data-flow,data-tree", x.Kinds)
	}
	for id := range s.Outgoing(x.ID, model.StructureKinds) {
		n, _ := s.Node(id)
		if !n.Is(model.KindDataLeaf) {
			t.Errorf("child %s kinds = %s, want data-leaf", n.Name, n.Kinds)
		}
		e, ok := s.Edge(graph.EdgeID(x.ID, id))
		if !ok || e.Kind != model.EdgeDataTree {
			t.Errorf("edge X->%s missing or not a tree edge", n.Name)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	a, b := testutil.WG("A", 1), testutil.WG("B", 2)
	tests := []struct {
		name  string
		decls []model.DataFlowDeclaration
		kind  string
	}{
		{
			name:  "duplicate flow",
			decls: []model.DataFlowDeclaration{testutil.Flow(a, testutil.Leaf("X"), b), testutil.Flow(a, testutil.Leaf("X"), b)},
			kind:  graph.KindDuplicateFlow,
		},
		{
			name:  "no destinations",
			decls: []model.DataFlowDeclaration{testutil.Flow(a, testutil.Leaf("X"))},
			kind:  graph.KindInvalidDeclaration,
		},
		{
			name:  "duplicate destination",
			decls: []model.DataFlowDeclaration{testutil.Flow(a, testutil.Leaf("X"), b, b)},
			kind:  graph.KindDuplicateEdge,
		},
		{
			name: "conflicting pipeline kind",
			decls: []model.DataFlowDeclaration{
				testutil.Flow(a, testutil.Leaf("X"), b),
				testutil.Flow(testutil.External("B"), testutil.Leaf("Y"), a),
			},
			kind: graph.KindConflictingPipeline,
		},
		{
			name:  "unnamed element",
			decls: []model.DataFlowDeclaration{testutil.Flow(a, testutil.Tree(model.Information{Name: "X"}, testutil.Leaf("")), b)},
			kind:  graph.KindInvalidDeclaration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph.Build(tt.decls)
			testutil.AssertErrorIs(t, err, graph.ErrStructural)
			var se *graph.StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StructuralError, got %T", err)
			}
			if se.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", se.Kind, tt.kind)
			}
		})
	}
}

func TestIncomingOutgoingFilters(t *testing.T) {
	s := mustBuild(t, testutil.ChainFixture())
	b := graph.PipelineID("B")

	testutil.AssertNodeNames(t, s, s.Incoming(b, model.Kinds(model.KindDataFlow)), "X")
	testutil.AssertNodeNames(t, s, s.Outgoing(b, model.Kinds(model.KindDataFlow)), "Y")
	testutil.AssertNodeNames(t, s, s.Incoming(b, model.PipelineKinds))
	testutil.AssertNodeNames(t, s,
		s.OutgoingOf(s.Outgoing(b, model.Kinds(model.KindDataFlow)), model.PipelineKinds), "C")
	testutil.AssertNodeNames(t, s, s.Incoming("missing", model.AllKinds))
}

func TestEdgesBetweenKind(t *testing.T) {
	s := mustBuild(t, testutil.TreeFixture())
	x := graph.FlowID("A", "X")
	children := s.Outgoing(x, model.StructureKinds)
	all := graph.NewNodeSet(x).Union(children).Union(graph.NewNodeSet(graph.PipelineID("B")))

	testutil.AssertEdgeNames(t, s, s.EdgesBetweenKind(graph.NewNodeSet(x), all, model.EdgeDataTree), "X->u1", "X->u2")
	testutil.AssertEdgeNames(t, s, s.EdgesBetweenKind(graph.NewNodeSet(x), all, model.EdgeDataFlow), "X->B")
}

func TestTreeParentAndDescendants(t *testing.T) {
	s := mustBuild(t, testutil.SiblingFixture(), graph.WithContentDerivedIDs())
	f1 := graph.FlowID("A", "f1")
	f2 := graph.FlowID("A", "f2")

	testutil.AssertNodeNames(t, s, s.Descendants(f1, model.StructureKinds), "f1.t", "f1.t.a", "f1.t.b", "f1.l")
	testutil.AssertNodeNames(t, s, s.Descendants(f2, model.StructureKinds), "f2.l")

	leaf := graph.ElementID(f1, []int{0, 1})
	parent, ok := s.TreeParent(leaf)
	if !ok || parent != graph.ElementID(f1, []int{0}) {
		t.Errorf("TreeParent(f1.t.b) = %q, %v", parent, ok)
	}
	if _, ok := s.TreeParent(f1); ok {
		t.Error("flow root should have no tree parent")
	}
	if _, ok := s.TreeParent(graph.PipelineID("A")); ok {
		t.Error("pipeline should have no tree parent")
	}
}

func TestDescendantsDoNotCrossFlowEdges(t *testing.T) {
	s := mustBuild(t, testutil.ChainFixture())
	if d := s.Descendants(graph.PipelineID("A"), model.AllKinds); d.Len() != 0 {
		t.Errorf("expected no tree descendants of a pipeline, got %v", testutil.Names(s, d))
	}
}

func TestValidate(t *testing.T) {
	if err := graph.Validate(mustBuild(t, testutil.SiblingFixture())); err != nil {
		t.Errorf("sibling fixture: %v", err)
	}

	decls, ps := dataset.Declarations()
	s := mustBuild(t, decls, graph.WithPipelines(ps.All()...))
	if err := graph.Validate(s); err != nil {
		t.Errorf("dataset: %v", err)
	}
}

func TestValidateViolations(t *testing.T) {
	node := func(id string, kinds ...model.Kind) model.Node {
		return model.Node{ID: id, Name: id, Kinds: model.Kinds(kinds...)}
	}
	tests := []struct {
		name  string
		nodes []model.Node
		edges [][3]any
		kind  string
	}{
		{
			name:  "flow without source",
			nodes: []model.Node{node("f", model.KindDataFlow), node("p", model.KindWorkingGroupPipeline)},
			edges: [][3]any{{"f", "p", model.EdgeDataFlow}},
			kind:  graph.KindFlowWithoutSource,
		},
		{
			name:  "flow without destination",
			nodes: []model.Node{node("f", model.KindDataFlow), node("p", model.KindWorkingGroupPipeline)},
			edges: [][3]any{{"p", "f", model.EdgeDataFlow}},
			kind:  graph.KindFlowWithoutDestination,
		},
		{
			name:  "orphan tree node",
			nodes: []model.Node{node("t", model.KindDataTree), node("l", model.KindDataLeaf), node("c", model.KindDataLeaf)},
			edges: [][3]any{{"t", "l", model.EdgeDataTree}, {"l", "c", model.EdgeDataTree}},
			kind:  graph.KindOrphanTreeNode,
		},
		{
			name: "multiple tree parents",
			nodes: []model.Node{
				node("p", model.KindWorkingGroupPipeline),
				node("f", model.KindDataFlow, model.KindDataTree),
				node("q", model.KindWorkingGroupPipeline),
				node("t", model.KindDataTree),
				node("l", model.KindDataLeaf),
			},
			edges: [][3]any{
				{"p", "f", model.EdgeDataFlow}, {"f", "q", model.EdgeDataFlow},
				{"f", "t", model.EdgeDataTree}, {"f", "l", model.EdgeDataTree}, {"t", "l", model.EdgeDataTree},
			},
			kind: graph.KindMultipleTreeParents,
		},
		{
			name: "leaf with children under a root",
			nodes: []model.Node{
				node("p", model.KindWorkingGroupPipeline),
				node("f", model.KindDataFlow, model.KindDataTree),
				node("q", model.KindWorkingGroupPipeline),
				node("l", model.KindDataLeaf),
				node("c", model.KindDataLeaf),
			},
			edges: [][3]any{
				{"p", "f", model.EdgeDataFlow}, {"f", "q", model.EdgeDataFlow},
				{"f", "l", model.EdgeDataTree}, {"l", "c", model.EdgeDataTree},
			},
			kind: graph.KindLeafWithChildren,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := graph.NewStore()
			for _, n := range tt.nodes {
				if err := s.AddNode(n); err != nil {
					t.Fatalf("AddNode: %v", err)
				}
			}
			for _, e := range tt.edges {
				if _, err := s.AddEdge(e[0].(string), e[1].(string), e[2].(model.EdgeKind)); err != nil {
					t.Fatalf("AddEdge: %v", err)
				}
			}
			err := graph.Validate(s)
			var se *graph.StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StructuralError, got %v", err)
			}
			if se.Kind != tt.kind {
				t.Errorf("kind = %q, want %q (%v)", se.Kind, tt.kind, err)
			}
		})
	}
}

func TestAddEdgeErrors(t *testing.T) {
	s := graph.NewStore()
	_ = s.AddNode(model.Node{ID: "a", Name: "a"})
	if _, err := s.AddEdge("a", "a", model.EdgeDataFlow); err == nil {
		t.Error("expected self-reference error")
	}
	if _, err := s.AddEdge("a", "b", model.EdgeDataFlow); !errors.Is(err, graph.ErrStructural) {
		t.Errorf("expected dangling reference, got %v", err)
	}
	if err := s.AddNode(model.Node{ID: "a", Name: "again"}); !errors.Is(err, graph.ErrStructural) {
		t.Errorf("expected duplicate node, got %v", err)
	}
}
