package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// PublicTableFileName is the public data table name used inside export
// bundles.
const PublicTableFileName = "public.html"

// MainDataName labels the row of an unnamed public flow that does not
// decompose. A named flow's row carries the flow's own name.
const MainDataName = "(Main Data)"

// PublicRow is one data product released to the public.
type PublicRow struct {
	Source     string // source pipeline name
	Collection string // flow payload name
	Product    string // element name, the flow name, or MainDataName
	// Unit, Frequency, Latency and Host fall back to the collection's value.
	Unit      string
	Frequency string
	Latency   string
	Host      string
	Format    string
	Structure string

	TotalNumberOfUnits string
	UnitDataSize       string
	TotalDataSize      string
	ExampleFileURL     string
	Notes              string
}

// HasSizes reports whether any size figure is set.
func (r PublicRow) HasSizes() bool {
	return r.TotalNumberOfUnits != "" || r.UnitDataSize != "" || r.TotalDataSize != ""
}

// PublicRows lists the data products of every flow that has a public
// destination: one row per top-level element, or a single row named after
// the flow for a flow without elements. Rows follow declaration order.
func PublicRows(decls []model.DataFlowDeclaration) []PublicRow {
	var rows []PublicRow
	for _, d := range decls {
		if !releasedToPublic(d) {
			continue
		}
		source := "Unknown Source"
		if d.Source != nil && d.Source.Name != "" {
			source = d.Source.Name
		}
		collection := d.Data.Name
		if collection == "" {
			collection = "Unnamed Group"
		}

		elements := d.Data.Elements
		if len(elements) == 0 {
			main := d.Data
			if main.Name == "" {
				main.Name = MainDataName
			}
			elements = []model.DataRecord{main}
		}
		parent := d.Data.Information
		for _, el := range elements {
			rows = append(rows, PublicRow{
				Source:             source,
				Collection:         collection,
				Product:            el.Name,
				Unit:               orElse(el.Unit, parent.Unit),
				Frequency:          orElse(el.Frequency, parent.Frequency),
				Latency:            orElse(el.Latency, parent.Latency),
				Host:               orElse(el.Host, parent.Host),
				Format:             el.Format,
				Structure:          el.Structure,
				TotalNumberOfUnits: el.TotalNumberOfUnits,
				UnitDataSize:       el.UnitDataSize,
				TotalDataSize:      el.TotalDataSize,
				ExampleFileURL:     el.ExampleFileURL,
				Notes:              el.Notes,
			})
		}
	}
	return rows
}

func releasedToPublic(d model.DataFlowDeclaration) bool {
	for _, dst := range d.Destinations {
		if dst != nil && dst.Kind == model.KindPublic {
			return true
		}
	}
	return false
}

func orElse(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

var publicTablePage = template.Must(template.New("public").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>RGES-PIT Public Data</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 80rem; color: #1f2937; }
h1 { border-bottom: 1px solid #e5e7eb; padding-bottom: .5rem; }
table { border-collapse: collapse; width: 100%; font-size: .875rem; }
thead { background: #f3f4f6; }
th { text-align: left; text-transform: uppercase; letter-spacing: .05em; color: #4b5563; padding: .75rem; }
td { vertical-align: top; padding: .75rem; border-top: 1px solid #e5e7eb; }
tr:hover td { background: #eff6ff; }
.product { font-weight: 600; color: #1e40af; }
.label { font-size: .75rem; font-weight: 700; color: #9ca3af; text-transform: uppercase; margin-right: .25rem; }
.format { font-family: monospace; font-size: .75rem; background: #f3f4f6; border-radius: .25rem; padding: .1rem .35rem; }
.sizes { font-size: .75rem; background: #eff6ff; border: 1px solid #dbeafe; border-radius: .25rem; padding: .25rem .5rem; margin: .25rem 0; }
.notes { font-size: .75rem; font-style: italic; color: #6b7280; background: #f9fafb; border-left: 4px solid #bfdbfe; padding: .5rem; margin-top: .5rem; }
</style>
</head>
<body>
<h1>RGES-PIT Public Data</h1>
<table>
<thead><tr><th>Source Pipeline</th><th>Data Collection</th><th>Data Product</th><th>Details</th></tr></thead>
<tbody>
{{- range .}}
<tr>
<td>{{.Source}}</td>
<td>{{.Collection}}</td>
<td class="product">{{.Product}}</td>
<td>
{{- with .Unit}}<div><span class="label">Unit:</span> {{.}}</div>{{end}}
{{- with .Frequency}}<div><span class="label">Frequency:</span> {{.}}</div>{{end}}
{{- with .Latency}}<div><span class="label">Latency:</span> {{.}}</div>{{end}}
{{- with .Format}}<div><span class="label">Format:</span> <span class="format">{{.}}</span></div>{{end}}
{{- with .Structure}}<div><span class="label">Structure:</span> {{.}}</div>{{end}}
{{- with .Host}}<div><span class="label">Host:</span> {{.}}</div>{{end}}
{{- if .HasSizes}}<div class="sizes">
{{- with .TotalNumberOfUnits}}<div><span class="label">Total Units:</span> {{.}}</div>{{end}}
{{- with .UnitDataSize}}<div><span class="label">Unit Size:</span> {{.}}</div>{{end}}
{{- with .TotalDataSize}}<div><span class="label">Total Size:</span> {{.}}</div>{{end}}
</div>{{end}}
{{- with .ExampleFileURL}}<div><a href="{{.}}">Example File</a></div>{{end}}
{{- with .Notes}}<div class="notes">Notes: {{.}}</div>{{end}}
</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// GeneratePublicTableHTML renders the public data table as a standalone page.
func GeneratePublicTableHTML(decls []model.DataFlowDeclaration) (string, error) {
	var buf bytes.Buffer
	if err := publicTablePage.Execute(&buf, PublicRows(decls)); err != nil {
		return "", fmt.Errorf("render public table: %w", err)
	}
	return buf.String(), nil
}

// PublicTableMarkdown renders the public data table as Markdown, one row per
// product with the details joined on one line.
func PublicTableMarkdown(decls []model.DataFlowDeclaration) string {
	var sb strings.Builder
	sb.WriteString("# RGES-PIT Public Data\n\n")
	sb.WriteString("| Source Pipeline | Data Collection | Data Product | Details |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, r := range PublicRows(decls) {
		var details []string
		for _, kv := range [][2]string{
			{"Unit", r.Unit}, {"Frequency", r.Frequency}, {"Latency", r.Latency},
			{"Format", r.Format}, {"Structure", r.Structure}, {"Host", r.Host},
			{"Total Units", r.TotalNumberOfUnits}, {"Unit Size", r.UnitDataSize}, {"Total Size", r.TotalDataSize},
		} {
			if kv[1] != "" {
				details = append(details, fmt.Sprintf("**%s:** %s", kv[0], mdCell(kv[1])))
			}
		}
		if r.ExampleFileURL != "" {
			details = append(details, fmt.Sprintf("[Example File](%s)", r.ExampleFileURL))
		}
		if r.Notes != "" {
			details = append(details, "_Notes: "+mdCell(r.Notes)+"_")
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			mdCell(r.Source), mdCell(r.Collection), mdCell(r.Product), strings.Join(details, "<br>"))
	}
	return sb.String()
}

var mdCellReplacer = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func mdCell(s string) string { return mdCellReplacer.Replace(s) }
