package layout_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/testutil"
)

func TestRoundTo10(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{4.9, 0},
		{5, 10},
		{14.99, 10},
		{-4, 0},
		{-5, 0},
		{-5.1, -10},
		{123.4, 120},
		{-126, -130},
	}
	for _, tt := range tests {
		if got := layout.RoundTo10(tt.in); got != tt.want {
			t.Errorf("RoundTo10(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOffsetAndMerge(t *testing.T) {
	base := layout.Positions{"a": {X: 1, Y: 2}, "b": {X: 3, Y: 4}}
	moved := base.Offset(layout.Position{X: 10, Y: -1})
	if moved["a"] != (layout.Position{X: 11, Y: 1}) || moved["b"] != (layout.Position{X: 13, Y: 3}) {
		t.Errorf("Offset = %v", moved)
	}
	if base["a"] != (layout.Position{X: 1, Y: 2}) {
		t.Error("Offset modified its receiver")
	}

	merged := base.Merge(layout.Positions{"b": {X: 0, Y: 0}, "c": {X: 5, Y: 5}})
	if len(merged) != 3 || merged["b"] != (layout.Position{}) || merged["a"] != base["a"] {
		t.Errorf("Merge = %v", merged)
	}
}

func TestBounds(t *testing.T) {
	if _, _, ok := (layout.Positions{}).Bounds(); ok {
		t.Error("empty positions have no bounds")
	}
	min, max, ok := layout.Positions{"a": {X: -5, Y: 10}, "b": {X: 20, Y: -3}}.Bounds()
	if !ok || min != (layout.Position{X: -5, Y: -3}) || max != (layout.Position{X: 20, Y: 10}) {
		t.Errorf("Bounds = %v %v %v", min, max, ok)
	}
}

func allOf(s *graph.Store) (graph.NodeSet, graph.EdgeSet) {
	nodes := s.Filter(model.AllKinds)
	return nodes, s.EdgesAmong(nodes)
}

func TestLayeredChainLeftToRight(t *testing.T) {
	s, err := graph.Build(testutil.ChainFixture())
	if err != nil {
		t.Fatal(err)
	}
	nodes, edges := allOf(s)
	pos := layout.Layered(s, nodes, edges, layout.LeftToRight)

	order := []string{
		graph.PipelineID("A"), graph.FlowID("A", "X"), graph.PipelineID("B"), graph.FlowID("B", "Y"), graph.PipelineID("C"),
	}
	for i := 1; i < len(order); i++ {
		if pos[order[i]].X <= pos[order[i-1]].X {
			t.Errorf("node %d not right of node %d: %v vs %v", i, i-1, pos[order[i]], pos[order[i-1]])
		}
		if pos[order[i]].Y != 0 {
			t.Errorf("single-node layers should be centered, got y=%v", pos[order[i]].Y)
		}
	}
}

func TestLayeredTreeTopToBottom(t *testing.T) {
	s, err := graph.Build(testutil.TreeFixture(), graph.WithContentDerivedIDs())
	if err != nil {
		t.Fatal(err)
	}
	x := graph.FlowID("A", "X")
	nodes := graph.NewNodeSet(x).Union(s.Descendants(x, model.StructureKinds))
	edges := s.EdgesBetweenKind(nodes, nodes, model.EdgeDataTree)
	pos := layout.Layered(s, nodes, edges, layout.TopToBottom)

	u1, u2 := graph.ElementID(x, []int{0}), graph.ElementID(x, []int{1})
	if pos[u1].Y <= pos[x].Y || pos[u1].Y != pos[u2].Y {
		t.Errorf("children should share a row below the root: %v %v %v", pos[x], pos[u1], pos[u2])
	}
	if pos[u1].X >= pos[u2].X {
		t.Errorf("u1 should be left of u2: %v %v", pos[u1], pos[u2])
	}
	if pos[u1].X+pos[u2].X != 0 {
		t.Errorf("row should be centered: %v %v", pos[u1], pos[u2])
	}
}

func TestLayeredHandlesCycles(t *testing.T) {
	s := graph.NewStore()
	for _, id := range []string{"a", "b", "c"} {
		_ = s.AddNode(model.Node{ID: id, Name: id, Kinds: model.Kinds(model.KindWorkingGroupPipeline)})
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "a"}, {"b", "c"}} {
		if _, err := s.AddEdge(e[0], e[1], model.EdgeDataFlow); err != nil {
			t.Fatal(err)
		}
	}
	nodes, edges := allOf(s)
	pos := layout.Layered(s, nodes, edges, layout.LeftToRight)
	if len(pos) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(pos))
	}
	if pos["a"].X != pos["b"].X {
		t.Errorf("cycle members should share a layer: %v %v", pos["a"], pos["b"])
	}
	if pos["c"].X <= pos["b"].X {
		t.Errorf("c should follow the cycle: %v %v", pos["b"], pos["c"])
	}
}

func TestLayeredDeterministicAndNonOverlapping(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		decls := testutil.DeclarationsGen().Draw(rt, "decls")
		s, err := graph.Build(decls, graph.WithContentDerivedIDs())
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}
		nodes, edges := allOf(s)
		dir := layout.Direction(rapid.IntRange(0, 1).Draw(rt, "dir"))
		a := layout.Layered(s, nodes, edges, dir)
		b := layout.Layered(s, nodes, edges, dir)
		if len(a) != nodes.Len() {
			rt.Fatalf("placed %d of %d nodes", len(a), nodes.Len())
		}
		seen := make(map[layout.Position]string)
		for id, p := range a {
			if b[id] != p {
				rt.Fatalf("layout not deterministic for %s", id)
			}
			if other, dup := seen[p]; dup {
				rt.Fatalf("%s and %s share position %v", id, other, p)
			}
			seen[p] = id
		}
	})
}
