package focus

import (
	"testing"

	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
)

func TestReconcileDataFlow(t *testing.T) {
	flowPos := layout.Positions{
		"src": {X: 0, Y: 50},
		"f":   {X: 200, Y: 50},
		"d1":  {X: 400, Y: 0},
		"d2":  {X: 400, Y: 100},
	}
	treePos := layout.Positions{
		"f":  {X: 1000, Y: 0},
		"c1": {X: 900, Y: 150},
		"c2": {X: 1100, Y: 150},
	}
	dests := graph.NewNodeSet("d1", "d2")

	got, err := ReconcileDataFlow("f", flowPos, treePos, dests, true)
	if err != nil {
		t.Fatal(err)
	}
	// offset = (800, -50); destination shift = 50 - 100 = -50.
	want := layout.Positions{
		"src": {X: 800, Y: 0},
		"f":   {X: 1000, Y: 0},
		"d1":  {X: 1200, Y: -100},
		"d2":  {X: 1200, Y: 0},
		"c1":  {X: 900, Y: 150},
		"c2":  {X: 1100, Y: 150},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d positions, want %d: %v", len(got), len(want), got)
	}
	for id, p := range want {
		if got[id] != p {
			t.Errorf("%s = %v, want %v", id, got[id], p)
		}
	}

	// Inputs are left alone.
	if flowPos["f"] != (layout.Position{X: 200, Y: 50}) {
		t.Error("flow layout modified")
	}
}

func TestReconcileWithoutDescendants(t *testing.T) {
	flowPos := layout.Positions{"f": {X: 10, Y: 10}, "d": {X: 30, Y: 90}}
	treePos := layout.Positions{"f": {X: 0, Y: 0}}

	got, err := ReconcileDataFlow("f", flowPos, treePos, graph.NewNodeSet("d"), false)
	if err != nil {
		t.Fatal(err)
	}
	if got["d"] != (layout.Position{X: 20, Y: 80}) {
		t.Errorf("d = %v, want only the flow offset", got["d"])
	}
}

func TestReconcileMissingFlow(t *testing.T) {
	if _, err := ReconcileDataFlow("f", layout.Positions{}, layout.Positions{"f": {}}, nil, false); err == nil {
		t.Error("expected error for flow missing from the flow layout")
	}
	if _, err := ReconcileDataFlow("f", layout.Positions{"f": {}}, layout.Positions{}, nil, false); err == nil {
		t.Error("expected error for flow missing from the tree layout")
	}
}
