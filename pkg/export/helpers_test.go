package export

import (
	"testing"

	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/view"
)

func newComputer(t *testing.T, decls []model.DataFlowDeclaration) *focus.Computer {
	t.Helper()
	s, err := graph.Build(decls, graph.WithContentDerivedIDs())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return focus.NewComputer(s, focus.DefaultPolicy())
}

func precompute(t *testing.T, c *focus.Computer) []view.Frame {
	t.Helper()
	frames, err := view.Precompute(c, nil)
	if err != nil {
		t.Fatalf("Precompute: %v", err)
	}
	return frames
}

func adjacencyNames(a *AdjacencyGraph) []string {
	out := make([]string, len(a.Nodes))
	for i, n := range a.Nodes {
		out[i] = n.Name
	}
	return out
}
