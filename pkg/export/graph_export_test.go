package export

import (
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/testutil"
)

func TestExportGraph_JSONGlobal(t *testing.T) {
	c := newComputer(t, testutil.ChainFixture())

	result, err := ExportGraph(c, GraphExportConfig{Format: GraphFormatJSON})
	if err != nil {
		t.Fatalf("ExportGraph failed: %v", err)
	}
	if result.Format != "json" || result.Scope != "global" {
		t.Errorf("format %q scope %q", result.Format, result.Scope)
	}
	if result.Nodes != 4 || result.Edges != 3 {
		t.Errorf("got %d nodes %d edges, want 4 and 3", result.Nodes, result.Edges)
	}
	if result.Adjacency == nil {
		t.Fatal("Expected adjacency to be non-nil for JSON format")
	}
	if got := strings.Join(adjacencyNames(result.Adjacency), ","); got != "A,X,B,Y" {
		t.Errorf("node order %s, want A,X,B,Y", got)
	}
	if wg := result.Adjacency.Nodes[0].WorkingGroup; wg == "" {
		t.Error("working group missing on A")
	}
	for _, e := range result.Adjacency.Edges {
		if e.Kind != "data-flow-edge" {
			t.Errorf("edge %s kind %q", e.ID, e.Kind)
		}
	}
}

func TestExportGraph_EmptyFormatIsJSON(t *testing.T) {
	c := newComputer(t, testutil.ChainFixture())
	result, err := ExportGraph(c, GraphExportConfig{})
	if err != nil {
		t.Fatalf("ExportGraph failed: %v", err)
	}
	if result.Format != "json" || result.Adjacency == nil {
		t.Errorf("format %q adjacency %v", result.Format, result.Adjacency)
	}
}

func TestExportGraph_Scopes(t *testing.T) {
	c := newComputer(t, testutil.ChainFixture())
	tests := []struct {
		name      string
		cfg       GraphExportConfig
		scope     string
		nodes     int
		edges     int
		wantNames string
	}{
		{"all", GraphExportConfig{All: true, Focus: graph.PipelineID("B")}, "all", 5, 4, "A,X,B,Y,C"},
		{"pipeline", GraphExportConfig{Focus: graph.PipelineID("B")}, "pipeline:B", 5, 4, "A,X,B,Y,C"},
		{"public pipeline", GraphExportConfig{Focus: graph.PipelineID("C")}, "pipeline:C", 3, 2, "B,Y,C"},
		{"data flow", GraphExportConfig{Focus: graph.FlowID("A", "X")}, "data-flow:X", 3, 2, "A,X,B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExportGraph(c, tt.cfg)
			if err != nil {
				t.Fatalf("ExportGraph failed: %v", err)
			}
			if result.Scope != tt.scope {
				t.Errorf("scope %q, want %q", result.Scope, tt.scope)
			}
			if result.Nodes != tt.nodes || result.Edges != tt.edges {
				t.Errorf("got %d nodes %d edges, want %d and %d", result.Nodes, result.Edges, tt.nodes, tt.edges)
			}
			if got := strings.Join(adjacencyNames(result.Adjacency), ","); got != tt.wantNames {
				t.Errorf("nodes %s, want %s", got, tt.wantNames)
			}
		})
	}
}

func TestExportGraph_Errors(t *testing.T) {
	c := newComputer(t, testutil.TreeFixture())

	_, err := ExportGraph(c, GraphExportConfig{Focus: "nope"})
	if !errors.Is(err, focus.ErrUnknownNode) {
		t.Errorf("unknown focus: got %v", err)
	}

	leaf := graph.ElementID(graph.FlowID("A", "X"), []int{0})
	if _, err := ExportGraph(c, GraphExportConfig{Focus: leaf}); err == nil || !strings.Contains(err.Error(), "no focus view") {
		t.Errorf("structural focus: got %v", err)
	}

	if _, err := ExportGraph(c, GraphExportConfig{Format: "graphml"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExportGraph_DOT(t *testing.T) {
	c := newComputer(t, testutil.TreeFixture())
	result, err := ExportGraph(c, GraphExportConfig{Format: GraphFormatDOT, All: true})
	if err != nil {
		t.Fatalf("ExportGraph failed: %v", err)
	}
	dot := result.Graph
	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`fillcolor="#c0bffb"`,
		`fillcolor="#ccfec6"`,
		`fillcolor="#ffffc5"`,
		`style="filled,rounded"`,
		"style=dashed, arrowhead=normal",
		"arrowhead=none",
		`label="u1"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT not closed")
	}
	if result.Explanation.HowToRender == "" {
		t.Error("missing render hint")
	}
}

func TestExportGraph_Mermaid(t *testing.T) {
	c := newComputer(t, testutil.TreeFixture())
	result, err := ExportGraph(c, GraphExportConfig{Format: GraphFormatMermaid, All: true})
	if err != nil {
		t.Fatalf("ExportGraph failed: %v", err)
	}
	m := result.Graph
	if !strings.HasPrefix(m, "graph LR\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(m, "\n", 2)[0])
	}
	for _, want := range []string{
		"classDef workinggrouppipeline fill:#c0bffb",
		"classDef dataflow fill:#ccfec6",
		"-.->",
		"---",
		`("X")`,
		`["A"]`,
		"class " + sanitizeMermaidID(graph.PipelineID("A")) + " workinggrouppipeline",
	} {
		if !strings.Contains(m, want) {
			t.Errorf("Mermaid missing %q:\n%s", want, m)
		}
	}
}

func TestGraphExportResult_JSON(t *testing.T) {
	c := newComputer(t, testutil.ChainFixture())
	result, err := ExportGraph(c, GraphExportConfig{Format: GraphFormatJSON, All: true})
	if err != nil {
		t.Fatalf("ExportGraph failed: %v", err)
	}
	data, err := result.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded struct {
		Scope     string `json:"scope"`
		Adjacency struct {
			Nodes []map[string]any `json:"nodes"`
			Edges []map[string]any `json:"edges"`
		} `json:"adjacency"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Scope != "all" || len(decoded.Adjacency.Nodes) != 5 || len(decoded.Adjacency.Edges) != 4 {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestSanitizeMermaid(t *testing.T) {
	if got := sanitizeMermaidID(""); got != "node" {
		t.Errorf("empty id: %q", got)
	}
	if got := sanitizeMermaidID("a b:c"); got != "nabc" {
		t.Errorf("got %q", got)
	}
	if got := sanitizeMermaidText(`say "hi" [x] | y`); got != "say 'hi' (x) / y" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 5, "ab..."},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 8, "héllo..."},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
