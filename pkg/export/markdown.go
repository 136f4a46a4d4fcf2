package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/panel"
)

// ReportFileName is the Markdown report name used inside export bundles.
const ReportFileName = "report.md"

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateMarkdown writes a report of the whole graph: counts by kind, a
// Mermaid diagram of the global view, then the information panel of every
// pipeline and data flow.
func GenerateMarkdown(c *focus.Computer, title string) (string, error) {
	s := c.Store()
	if s.NodeCount() == 0 {
		return "", fmt.Errorf("no nodes to report")
	}
	if title == "" {
		title = defaultViewerTitle
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	counts := make(map[model.Kind]int)
	var pipelines, flows []model.Node
	for _, n := range s.Nodes() {
		for _, k := range n.Kinds.List() {
			counts[k]++
		}
		switch {
		case n.IsPipeline():
			pipelines = append(pipelines, n)
		case n.Is(model.KindDataFlow):
			flows = append(flows, n)
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Kind | Count |\n|------|-------|\n")
	for _, row := range []struct {
		label string
		kind  model.Kind
	}{
		{"Working groups", model.KindWorkingGroupPipeline},
		{"External groups", model.KindExternalGroupPipeline},
		{"Public", model.KindPublic},
		{"Data flows", model.KindDataFlow},
		{"Data trees", model.KindDataTree},
		{"Data leaves", model.KindDataLeaf},
	} {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.label, counts[row.kind]))
	}
	sb.WriteString(fmt.Sprintf("| **Edges** | %d |\n\n", s.EdgeCount()))

	slugCounts := make(map[string]int, len(pipelines)+len(flows))
	slugs := make(map[string]string, len(pipelines)+len(flows))
	for _, n := range append(append([]model.Node{}, pipelines...), flows...) {
		slugs[n.ID] = uniqueSlug(createSlug(n.Name), slugCounts)
	}

	sb.WriteString("## Table of Contents\n\n")
	sb.WriteString("**Pipelines**\n\n")
	for _, n := range pipelines {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", n.Name, slugs[n.ID]))
	}
	sb.WriteString("\n**Data flows**\n\n")
	for _, n := range flows {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", n.Name, slugs[n.ID]))
	}
	sb.WriteString("\n---\n\n")

	global, err := ExportGraph(c, GraphExportConfig{Format: GraphFormatMermaid})
	if err != nil {
		return "", err
	}
	sb.WriteString("## Global Data Flow\n\n")
	sb.WriteString("```mermaid\n")
	sb.WriteString(global.Graph)
	sb.WriteString("```\n\n")
	sb.WriteString("---\n\n")

	for _, n := range pipelines {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slugs[n.ID]))
		sb.WriteString(panel.Markdown(s, n.ID))
		if out := s.Outgoing(n.ID, model.Kinds(model.KindDataFlow)); out.Len() > 0 {
			sb.WriteString("\n### Sends\n\n")
			for _, fn := range orderedNodes(s, out) {
				sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", fn.Name, slugs[fn.ID]))
			}
		}
		sb.WriteString("\n---\n\n")
	}
	for _, n := range flows {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slugs[n.ID]))
		sb.WriteString(panel.Markdown(s, n.ID))
		sb.WriteString("\n---\n\n")
	}
	return sb.String(), nil
}

// SaveMarkdownToFile writes the report to filename.
func SaveMarkdownToFile(c *focus.Computer, title, filename string) error {
	content, err := GenerateMarkdown(c, title)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
