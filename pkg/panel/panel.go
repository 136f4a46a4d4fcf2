// Package panel renders the information panel shown for the selected node,
// as Markdown for the terminal explorer and as HTML for the viewer.
package panel

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/inherit"
	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Placeholder is shown when nothing is selected.
const Placeholder = "(Click a node for more information.)"

// InheritedNote marks a value taken from a tree ancestor.
const InheritedNote = "(inherited from parent)"

// Graph is what the panels read from the store.
type Graph interface {
	inherit.Tree
	Incoming(id string, kinds model.KindSet) graph.NodeSet
	Outgoing(id string, kinds model.KindSet) graph.NodeSet
}

// Row is one labeled value.
type Row struct {
	Field     model.Field
	Label     string
	Value     string
	Inherited bool
}

// IsLink reports whether the value is a URL to render as a link.
func (r Row) IsLink() bool {
	return r.Field == model.FieldExampleFileURL &&
		(strings.HasPrefix(r.Value, "http://") || strings.HasPrefix(r.Value, "https://"))
}

// Panel is the renderer-neutral content of one node's panel.
type Panel struct {
	ID       string
	Title    string
	Kind     string // style class of the node's primary kind
	Subtitle string
	From     []string // source pipeline names, data flows only
	To       []string // destination pipeline names, data flows only
	Rows     []Row
}

// Build assembles the panel for id. Tree and leaf elements resolve unit,
// frequency and latency through their ancestors; other nodes show only their
// own values.
func Build(g Graph, id string) (Panel, bool) {
	n, ok := g.Node(id)
	if !ok {
		return Panel{}, false
	}
	p := Panel{ID: id, Title: n.Name}

	switch {
	case n.IsPipeline():
		p.Kind, p.Subtitle = pipelineLabel(n)
	case n.Is(model.KindDataFlow):
		p.Kind = model.KindDataFlow.String()
		p.Subtitle = "Data flow"
		p.From = names(g, g.Incoming(id, model.PipelineKinds))
		p.To = names(g, g.Outgoing(id, model.PipelineKinds))
	case n.Is(model.KindDataTree):
		p.Kind = model.KindDataTree.String()
		p.Subtitle = "Data collection"
	case n.Is(model.KindDataLeaf):
		p.Kind = model.KindDataLeaf.String()
		p.Subtitle = "Data element"
	}

	resolve := n.IsStructural()
	for _, f := range model.DetailFields {
		if resolve {
			if v, ok := inherit.Resolve(g, id, f); ok {
				p.Rows = append(p.Rows, Row{Field: f, Label: f.Label(), Value: v.Text, Inherited: v.Inherited})
			}
			continue
		}
		if v, ok := n.Info.Get(f); ok {
			p.Rows = append(p.Rows, Row{Field: f, Label: f.Label(), Value: v})
		}
	}
	if n.Info.IsOfficialPitPublicDataProduct {
		p.Rows = append(p.Rows, Row{Label: "Official PIT public data product", Value: "yes"})
	}
	return p, true
}

func pipelineLabel(n model.Node) (kind, subtitle string) {
	switch {
	case n.Is(model.KindWorkingGroupPipeline):
		if n.WorkingGroup != nil {
			return model.KindWorkingGroupPipeline.String(), n.WorkingGroup.String()
		}
		return model.KindWorkingGroupPipeline.String(), "Working group pipeline"
	case n.Is(model.KindExternalGroupPipeline):
		return model.KindExternalGroupPipeline.String(), "External group pipeline"
	default:
		return model.KindPublic.String(), "Public data release"
	}
}

func names(g Graph, ids graph.NodeSet) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		if n, ok := g.Node(id); ok {
			out = append(out, n.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Markdown renders the panel for id, or the placeholder when id is empty or
// unknown.
func Markdown(g Graph, id string) string {
	p, ok := Build(g, id)
	if !ok {
		return "_" + Placeholder + "_\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", mdEscape(p.Title))
	if p.Subtitle != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", mdEscape(p.Subtitle))
	}
	if len(p.From) > 0 {
		fmt.Fprintf(&sb, "**From:** %s  \n", mdEscape(strings.Join(p.From, ", ")))
	}
	if len(p.To) > 0 {
		fmt.Fprintf(&sb, "**To:** %s\n", mdEscape(strings.Join(p.To, ", ")))
	}
	if len(p.From) > 0 || len(p.To) > 0 {
		sb.WriteString("\n")
	}
	if len(p.Rows) == 0 {
		return sb.String()
	}
	sb.WriteString("| Field | Value |\n|---|---|\n")
	for _, r := range p.Rows {
		v := mdEscape(r.Value)
		if r.IsLink() {
			v = fmt.Sprintf("[%s](%s)", v, r.Value)
		}
		if r.Inherited {
			v += " _" + InheritedNote + "_"
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", r.Label, v)
	}
	return sb.String()
}

var mdReplacer = strings.NewReplacer("|", `\|`, "\n", " ", "*", `\*`, "_", `\_`)

func mdEscape(s string) string { return mdReplacer.Replace(s) }

var htmlPanel = template.Must(template.New("panel").Parse(`<div class="node-information {{.Kind}}">
<h3>{{.Title}}</h3>
{{- with .Subtitle}}
<p class="subtitle">{{.}}</p>
{{- end}}
{{- if .From}}
<p><b>From:</b> {{range $i, $n := .From}}{{if $i}}, {{end}}{{$n}}{{end}}</p>
{{- end}}
{{- if .To}}
<p><b>To:</b> {{range $i, $n := .To}}{{if $i}}, {{end}}{{$n}}{{end}}</p>
{{- end}}
{{- if .Rows}}
<table>
{{- range .Rows}}
<tr><th>{{.Label}}</th><td>{{if .IsLink}}<a href="{{.Value}}" target="_blank" rel="noopener">{{.Value}}</a>{{else}}{{.Value}}{{end}}{{if .Inherited}} <i>` + InheritedNote + `</i>{{end}}</td></tr>
{{- end}}
</table>
{{- end}}
</div>`))

// HTML renders the panel for id, or the placeholder when id is empty or
// unknown.
func HTML(g Graph, id string) template.HTML {
	p, ok := Build(g, id)
	if !ok {
		return template.HTML("<div>" + template.HTMLEscapeString(Placeholder) + "</div>")
	}
	var buf bytes.Buffer
	if err := htmlPanel.Execute(&buf, p); err != nil {
		return template.HTML("<div>" + template.HTMLEscapeString(err.Error()) + "</div>")
	}
	return template.HTML(buf.String())
}
