package export

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/view"
)

// GraphExportFormat specifies the output format for graph export.
type GraphExportFormat string

const (
	GraphFormatJSON    GraphExportFormat = "json"
	GraphFormatDOT     GraphExportFormat = "dot"
	GraphFormatMermaid GraphExportFormat = "mermaid"
)

// GraphExportConfig configures graph export behavior.
type GraphExportConfig struct {
	Format GraphExportFormat
	Focus  string // pipeline or data-flow id; empty exports the global view
	All    bool   // export every node and edge, ignoring Focus
}

// GraphExportResult contains the exported graph and metadata.
type GraphExportResult struct {
	Format      string           `json:"format"`
	Scope       string           `json:"scope"`
	Graph       string           `json:"graph,omitempty"`
	Nodes       int              `json:"nodes"`
	Edges       int              `json:"edges"`
	Explanation GraphExplanation `json:"explanation"`
	Adjacency   *AdjacencyGraph  `json:"adjacency,omitempty"`
}

// GraphExplanation says what the export is and how to render it.
type GraphExplanation struct {
	What        string `json:"what"`
	HowToRender string `json:"how_to_render,omitempty"`
}

// AdjacencyGraph is the JSON adjacency list representation.
type AdjacencyGraph struct {
	Nodes []AdjacencyNode `json:"nodes"`
	Edges []AdjacencyEdge `json:"edges"`
}

// AdjacencyNode is a node in the adjacency graph.
type AdjacencyNode struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kinds        []string `json:"kinds"`
	WorkingGroup string   `json:"working_group,omitempty"`
}

// AdjacencyEdge is an edge in the adjacency graph.
type AdjacencyEdge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// ExportGraph exports one view of the data-flow graph.
func ExportGraph(c *focus.Computer, cfg GraphExportConfig) (*GraphExportResult, error) {
	active, scope, err := exportScope(c, cfg)
	if err != nil {
		return nil, err
	}
	s := c.Store()
	nodes := orderedNodes(s, active.Nodes)
	edges := orderedEdges(s, active.Edges)

	result := &GraphExportResult{
		Format: string(cfg.Format),
		Scope:  scope,
		Nodes:  len(nodes),
		Edges:  len(edges),
	}
	switch cfg.Format {
	case GraphFormatDOT:
		result.Graph = generateDOT(nodes, edges)
		result.Explanation = GraphExplanation{
			What:        "Data-flow graph in Graphviz DOT format",
			HowToRender: "Save to file.dot, run: dot -Tsvg file.dot -o graph.svg",
		}
	case GraphFormatMermaid:
		result.Graph = generateMermaid(nodes, edges)
		result.Explanation = GraphExplanation{
			What:        "Data-flow graph in Mermaid diagram format",
			HowToRender: "Paste into any Markdown renderer that supports Mermaid, or use mermaid.live",
		}
	case GraphFormatJSON, "":
		result.Format = string(GraphFormatJSON)
		result.Adjacency = generateAdjacency(nodes, edges)
		result.Explanation = GraphExplanation{What: "Data-flow graph as JSON adjacency list"}
	default:
		return nil, fmt.Errorf("unsupported graph format %q (want json, dot or mermaid)", cfg.Format)
	}
	return result, nil
}

func exportScope(c *focus.Computer, cfg GraphExportConfig) (focus.ActiveSet, string, error) {
	s := c.Store()
	if cfg.All {
		all := focus.NewActiveSet()
		for _, n := range s.Nodes() {
			all.Nodes.Add(n.ID)
		}
		for _, e := range s.Edges() {
			all.Edges.Add(e.ID)
		}
		return all, "all", nil
	}
	if cfg.Focus == "" {
		return c.Global(), view.Global.String(), nil
	}
	n, ok := s.Node(cfg.Focus)
	if !ok {
		return focus.ActiveSet{}, "", &focus.UnknownNodeError{ID: cfg.Focus}
	}
	switch {
	case n.IsPipeline():
		a, err := c.Pipeline(n.ID)
		return a, view.PipelineFocus.String() + ":" + n.Name, err
	case n.Is(model.KindDataFlow):
		v, err := c.DataFlow(n.ID)
		return v.Active, view.DataFlowFocus.String() + ":" + n.Name, err
	}
	return focus.ActiveSet{}, "", fmt.Errorf("node %q (%s) has no focus view", n.Name, n.Kinds)
}

// orderedNodes returns the nodes of set in store order, which follows the
// declarations and keeps output stable across runs.
func orderedNodes(s *graph.Store, set graph.NodeSet) []model.Node {
	var out []model.Node
	for _, n := range s.Nodes() {
		if set.Contains(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

func orderedEdges(s *graph.Store, set graph.EdgeSet) []model.Edge {
	var out []model.Edge
	for _, e := range s.Edges() {
		if set.Contains(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

func generateDOT(nodes []model.Node, edges []model.Edge) string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, fontname=\"Helvetica\", fontsize=12, penwidth=1];\n")
	sb.WriteString("    edge [penwidth=1.2, color=\"#000000\"];\n")
	sb.WriteString("\n")

	for _, n := range nodes {
		st := StyleFor(n.Kinds)
		style := "filled"
		if st.Rounded {
			style = "\"filled,rounded\""
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", fillcolor=\"%s\", style=%s, class=\"%s\"];\n",
			escapeDOTString(n.ID), escapeDOTString(truncateRunes(n.Name, 40)), css(st.Fill), style, n.Kinds))
	}

	sb.WriteString("\n")

	for _, e := range edges {
		attrs := "arrowhead=none"
		if e.Kind == model.EdgeDataFlow {
			attrs = "style=dashed, arrowhead=normal"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [%s];\n",
			escapeDOTString(e.Source), escapeDOTString(e.Target), attrs))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOTString(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", " ",
		"\r", " ",
	)
	return replacer.Replace(s)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// mermaidClass maps a style class to a Mermaid class name (no hyphens).
func mermaidClass(class string) string {
	return strings.ReplaceAll(class, "-", "")
}

func generateMermaid(nodes []model.Node, edges []model.Edge) string {
	var sb strings.Builder

	sb.WriteString("graph LR\n")
	for _, le := range legendEntries {
		st := StyleFor(model.Kinds(le.kind))
		sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,stroke:#000,color:#000\n", mermaidClass(st.Class), css(st.Fill)))
	}
	sb.WriteString("    classDef dataleaf fill:" + css(colorDataStructure) + ",stroke:#000,color:#000\n")
	sb.WriteString("\n")

	safeIDMap := make(map[string]string)
	usedSafe := make(map[string]bool)
	getSafeID := func(orig string) string {
		if safe, ok := safeIDMap[orig]; ok {
			return safe
		}
		base := sanitizeMermaidID(orig)
		safe := base
		if usedSafe[safe] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(orig))
			safe = fmt.Sprintf("%s_%x", base, h.Sum32())
		}
		usedSafe[safe] = true
		safeIDMap[orig] = safe
		return safe
	}

	for _, n := range nodes {
		st := StyleFor(n.Kinds)
		id := getSafeID(n.ID)
		if st.Rounded {
			sb.WriteString(fmt.Sprintf("    %s(\"%s\")\n", id, sanitizeMermaidText(n.Name)))
		} else {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, sanitizeMermaidText(n.Name)))
		}
		if st.Class != "" {
			sb.WriteString(fmt.Sprintf("    class %s %s\n", id, mermaidClass(st.Class)))
		}
	}

	sb.WriteString("\n")

	for _, e := range edges {
		link := "---"
		if e.Kind == model.EdgeDataFlow {
			link = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", getSafeID(e.Source), link, getSafeID(e.Target)))
	}

	return sb.String()
}

// sanitizeMermaidID keeps letters, digits, hyphens and underscores.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "node"
	}
	return "n" + sb.String()
}

// sanitizeMermaidText removes characters that break Mermaid label syntax.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, replacer.Replace(text))
	return truncateRunes(strings.TrimSpace(result), 40)
}

func generateAdjacency(nodes []model.Node, edges []model.Edge) *AdjacencyGraph {
	adj := &AdjacencyGraph{
		Nodes: make([]AdjacencyNode, 0, len(nodes)),
		Edges: make([]AdjacencyEdge, 0, len(edges)),
	}
	for _, n := range nodes {
		an := AdjacencyNode{ID: n.ID, Name: n.Name, Kinds: n.Kinds.Classes()}
		if n.WorkingGroup != nil {
			an.WorkingGroup = n.WorkingGroup.String()
		}
		adj.Nodes = append(adj.Nodes, an)
	}
	for _, e := range edges {
		adj.Edges = append(adj.Edges, AdjacencyEdge{ID: e.ID, From: e.Source, To: e.Target, Kind: e.Kind.String()})
	}
	return adj
}

// JSON returns the result as indented JSON.
func (r *GraphExportResult) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
