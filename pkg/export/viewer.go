package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/panel"
	"github.com/vanderheijden86/pitgraph/pkg/view"
)

// ViewerFileName is the viewer page name used inside export bundles.
const ViewerFileName = "index.html"

// ViewerOptions configures the interactive viewer page.
type ViewerOptions struct {
	Title  string
	Store  *graph.Store
	Frames []view.Frame // global view first, as returned by view.Precompute
	Path   string       // output path for WriteViewerHTML
}

type viewerNode struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Classes    []string `json:"classes"`
	Lines      []string `json:"lines"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Rounded    bool     `json:"rounded"`
	Focusable  bool     `json:"focusable"`
	Structural bool     `json:"structural"`
	Panel      string   `json:"panel"`
}

type viewerEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

type viewerFrame struct {
	Mode      string                `json:"mode"`
	Focus     string                `json:"focus,omitempty"`
	Selected  string                `json:"selected,omitempty"`
	Panel     string                `json:"panel,omitempty"`
	Positions map[string][2]float64 `json:"positions"`
	Edges     []string              `json:"edges"`
}

type viewerData struct {
	Title       string         `json:"title"`
	Placeholder string         `json:"placeholder"`
	Nodes       []viewerNode   `json:"nodes"`
	Edges       []viewerEdge   `json:"edges"`
	Frames      []viewerFrame  `json:"frames"`
	FocusIndex  map[string]int `json:"focusIndex"`
}

var viewerPage = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="pitgraph">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<button id="back" disabled>Back</button>
<button id="save">Save positions</button>
<label class="button">Load positions<input id="load" type="file" accept="application/json,.json"></label>
</header>
<main>
<div id="graph">
<svg xmlns="http://www.w3.org/2000/svg">
<defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z"/></marker></defs>
<g class="edges"></g>
<g class="nodes"></g>
</svg>
</div>
<aside id="information"></aside>
</main>
<script id="pitgraph-data" type="application/json">{{.Data}}</script>
<script>{{.JS}}</script>
</body>
</html>
`))

// GenerateViewerHTML renders a self-contained page that replays the
// precomputed frames: clicking a pipeline or data flow opens its focus view,
// clicking a data element selects it, Back returns to the global view, and
// global positions can be dragged, saved and loaded.
func GenerateViewerHTML(opts ViewerOptions) (string, error) {
	if opts.Store == nil || opts.Store.NodeCount() == 0 {
		return "", fmt.Errorf("no nodes to export")
	}
	if len(opts.Frames) == 0 || opts.Frames[0].Mode != view.Global {
		return "", fmt.Errorf("viewer needs the global frame first")
	}
	title := opts.Title
	if title == "" {
		title = defaultViewerTitle
	}

	data := buildViewerData(opts.Store, opts.Frames, title)
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal viewer data: %w", err)
	}
	js, err := readAsset("viewer.js")
	if err != nil {
		return "", err
	}
	css, err := readAsset("viewer.css")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = viewerPage.Execute(&buf, struct {
		Title string
		CSS   template.CSS
		Data  template.JS
		JS    template.JS
	}{title, template.CSS(css), template.JS(dataJSON), template.JS(js)})
	if err != nil {
		return "", fmt.Errorf("render viewer: %w", err)
	}
	return buf.String(), nil
}

// WriteViewerHTML renders the viewer to opts.Path and returns the path
// written. A missing .html extension is added.
func WriteViewerHTML(opts ViewerOptions) (string, error) {
	page, err := GenerateViewerHTML(opts)
	if err != nil {
		return "", err
	}
	path := opts.Path
	if path == "" {
		path = ViewerFileName
	}
	if !strings.HasSuffix(strings.ToLower(path), ".html") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func buildViewerData(s *graph.Store, frames []view.Frame, title string) viewerData {
	data := viewerData{
		Title:       title,
		Placeholder: string(panel.HTML(s, "")),
		FocusIndex:  make(map[string]int),
	}
	for _, n := range s.Nodes() {
		w, h := layout.NodeSize(n.Name)
		st := StyleFor(n.Kinds)
		data.Nodes = append(data.Nodes, viewerNode{
			ID:         n.ID,
			Name:       n.Name,
			Classes:    n.Kinds.Classes(),
			Lines:      wrapLabel(n.Name, labelCharsPerLine),
			Width:      w,
			Height:     h,
			Rounded:    st.Rounded,
			Focusable:  view.IsFocusable(n.Kinds),
			Structural: n.IsStructural(),
			Panel:      string(panel.HTML(s, n.ID)),
		})
	}
	for _, e := range s.Edges() {
		data.Edges = append(data.Edges, viewerEdge{ID: e.ID, Source: e.Source, Target: e.Target, Kind: e.Kind.String()})
	}
	for i, f := range frames {
		vf := viewerFrame{
			Mode:      f.Mode.String(),
			Focus:     f.Focus,
			Selected:  f.Selected,
			Panel:     f.PanelNode(),
			Positions: make(map[string][2]float64, f.Active.Nodes.Len()),
			Edges:     f.Active.Edges.Sorted(),
		}
		for id := range f.Active.Nodes {
			p := f.Positions[id]
			vf.Positions[id] = [2]float64{p.X, p.Y}
		}
		data.Frames = append(data.Frames, vf)
		if f.Focus != "" {
			data.FocusIndex[f.Focus] = i
		}
	}
	return data
}
