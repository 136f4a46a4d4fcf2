package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/view"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"
)

// GraphSnapshotOptions controls snapshot export.
type GraphSnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string
	Graph  layout.Graph
	Frame  view.Frame // the view to draw, positions included
}

// SaveGraphSnapshot renders one view of the graph as SVG or PNG, with a
// header naming the view and a legend of node kinds.
func SaveGraphSnapshot(opts GraphSnapshotOptions) error {
	if opts.Graph == nil {
		return fmt.Errorf("graph is required for snapshot export")
	}
	if opts.Frame.Active.Nodes.Len() == 0 {
		return fmt.Errorf("frame has no visible nodes")
	}
	format, path, err := snapshotFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	opts.Path = path
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	l := buildSnapshotLayout(opts)
	switch format {
	case "svg":
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		return renderSVGToWriter(f, l)
	default:
		return renderPNG(opts.Path, l)
	}
}

func snapshotFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// --- layout ----------------------------------------------------------------

type snapshotNode struct {
	ID       string
	Lines    []string
	Style    NodeStyle
	Selected bool
	X, Y     float64 // top-left
	W, H     float64
}

func (n snapshotNode) center() (float64, float64) { return n.X + n.W/2, n.Y + n.H/2 }

type snapshotEdge struct {
	X1, Y1, X2, Y2 float64
	Flow           bool
}

type snapshotLayout struct {
	Nodes  []snapshotNode
	Edges  []snapshotEdge
	Width  int
	Height int
	Header float64
	Title  string
	Status string
}

func buildSnapshotLayout(opts GraphSnapshotOptions) snapshotLayout {
	const (
		padding      = 40.0
		headerHeight = 130.0
		minWidth     = 640.0
	)
	f := opts.Frame
	l := snapshotLayout{Header: headerHeight, Title: opts.Title}
	if l.Title == "" {
		l.Title = defaultViewerTitle
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	byID := make(map[string]int, f.Active.Nodes.Len())
	for _, id := range f.Active.Nodes.Sorted() {
		n, ok := opts.Graph.Node(id)
		if !ok {
			continue
		}
		p := f.Positions[id]
		w, h := layout.NodeSize(n.Name)
		sn := snapshotNode{
			ID:       id,
			Lines:    wrapLabel(n.Name, labelCharsPerLine),
			Style:    StyleFor(n.Kinds),
			Selected: id == f.Selected,
			X:        p.X - w/2,
			Y:        p.Y - h/2,
			W:        w,
			H:        h,
		}
		minX, minY = math.Min(minX, sn.X), math.Min(minY, sn.Y)
		maxX, maxY = math.Max(maxX, sn.X+w), math.Max(maxY, sn.Y+h)
		byID[id] = len(l.Nodes)
		l.Nodes = append(l.Nodes, sn)
	}

	dx, dy := padding-minX, headerHeight+padding-minY
	for i := range l.Nodes {
		l.Nodes[i].X += dx
		l.Nodes[i].Y += dy
	}
	l.Width = int(math.Max(minWidth, maxX-minX+2*padding))
	l.Height = int(maxY - minY + headerHeight + 2*padding)

	for _, id := range f.Active.Edges.Sorted() {
		e, ok := opts.Graph.Edge(id)
		if !ok {
			continue
		}
		si, sok := byID[e.Source]
		ti, tok := byID[e.Target]
		if !sok || !tok {
			continue
		}
		src, dst := l.Nodes[si], l.Nodes[ti]
		sx, sy := src.center()
		tx, ty := dst.center()
		x1, y1 := clipToBox(sx, sy, src.W, src.H, tx, ty)
		x2, y2 := clipToBox(tx, ty, dst.W, dst.H, sx, sy)
		l.Edges = append(l.Edges, snapshotEdge{X1: x1, Y1: y1, X2: x2, Y2: y2, Flow: e.Kind == model.EdgeDataFlow})
	}

	l.Status = fmt.Sprintf("view: %s  nodes: %d  edges: %d", f.Mode, len(l.Nodes), len(l.Edges))
	if f.Focus != "" {
		if n, ok := opts.Graph.Node(f.Focus); ok {
			l.Status = fmt.Sprintf("view: %s (%s)  nodes: %d  edges: %d", f.Mode, n.Name, len(l.Nodes), len(l.Edges))
		}
	}
	return l
}

// clipToBox returns where the segment from the center (cx, cy) of a w by h
// box toward (px, py) crosses the box border.
func clipToBox(cx, cy, w, h, px, py float64) (float64, float64) {
	dx, dy := px-cx, py-cy
	if dx == 0 && dy == 0 {
		return cx, cy
	}
	s := math.Inf(1)
	if dx != 0 {
		s = (w / 2) / math.Abs(dx)
	}
	if dy != 0 {
		s = math.Min(s, (h/2)/math.Abs(dy))
	}
	s = math.Min(s, 1)
	return cx + dx*s, cy + dy*s
}

// arrowHead returns the three corners of the triangle whose tip sits at the
// end of the segment.
func arrowHead(x1, y1, x2, y2 float64) (xs, ys [3]float64) {
	length := math.Hypot(x2-x1, y2-y1)
	if length == 0 {
		return [3]float64{x2, x2, x2}, [3]float64{y2, y2, y2}
	}
	ux, uy := (x2-x1)/length, (y2-y1)/length
	bx, by := x2-ux*arrowLength, y2-uy*arrowLength
	nx, ny := -uy*arrowHalfWidth, ux*arrowHalfWidth
	return [3]float64{x2, bx + nx, bx - nx}, [3]float64{y2, by + ny, by - ny}
}

// wrapLabel breaks s into lines of at most width display columns, splitting
// on spaces where possible.
func wrapLabel(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
	}
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		for ww > width {
			flush()
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				break
			}
			lines = append(lines, head)
			word = strings.TrimPrefix(word, head)
			ww = runewidth.StringWidth(word)
		}
		if curW > 0 && curW+1+ww > width {
			flush()
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(word)
		curW += ww
	}
	flush()
	return lines
}

// --- PNG -------------------------------------------------------------------

func renderPNG(path string, l snapshotLayout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(l.Width)-32, l.Header-24, 10)
	dc.Fill()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(l.Status, 32, 64, 0, 0.5)
	drawLegend(dc, l)

	dc.SetLineWidth(edgeWidth)
	for _, e := range l.Edges {
		dc.SetColor(colorStroke)
		if e.Flow {
			dc.SetDash(flowDash, flowDash)
		}
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
		dc.SetDash()
		if e.Flow {
			xs, ys := arrowHead(e.X1, e.Y1, e.X2, e.Y2)
			dc.NewSubPath()
			dc.MoveTo(xs[0], ys[0])
			dc.LineTo(xs[1], ys[1])
			dc.LineTo(xs[2], ys[2])
			dc.ClosePath()
			dc.Fill()
		}
	}

	for _, n := range l.Nodes {
		drawNode(dc, n)
	}
	return dc.SavePNG(path)
}

func drawShape(dc *gg.Context, x, y, w, h float64, rounded bool) {
	if rounded {
		dc.DrawRoundedRectangle(x, y, w, h, cornerRadius)
		return
	}
	dc.DrawRectangle(x, y, w, h)
}

func drawNode(dc *gg.Context, n snapshotNode) {
	dc.SetColor(n.Style.Fill)
	drawShape(dc, n.X, n.Y, n.W, n.H, n.Style.Rounded)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(borderWidth)
	if n.Selected {
		dc.SetColor(colorSelected)
		dc.SetLineWidth(selectedBorder)
	}
	drawShape(dc, n.X, n.Y, n.W, n.H, n.Style.Rounded)
	dc.Stroke()

	dc.SetColor(colorText)
	cx, cy := n.center()
	top := cy - float64(len(n.Lines)-1)*9
	for i, line := range n.Lines {
		dc.DrawStringAnchored(line, cx, top+float64(i)*18, 0.5, 0.5)
	}
}

func drawLegend(dc *gg.Context, l snapshotLayout) {
	boxW := 230.0
	boxH := 24.0 + 16*float64(len(legendEntries))
	x := float64(l.Width) - boxW - 24
	y := 22.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Fill()
	dc.SetLineWidth(1)
	for i, le := range legendEntries {
		st := StyleFor(model.Kinds(le.kind))
		ry := y + 18 + 16*float64(i)
		dc.SetColor(st.Fill)
		drawShape(dc, x+12, ry-6, 14, 12, st.Rounded)
		dc.Fill()
		dc.SetColor(colorStroke)
		drawShape(dc, x+12, ry-6, 14, 12, st.Rounded)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(le.label, x+34, ry, 0, 0.5)
	}
}

// --- SVG -------------------------------------------------------------------

func renderSVGToWriter(w io.Writer, l snapshotLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, l.Width-32, int(l.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 44, l.Title, fmt.Sprintf("fill:%s;font-size:18px;font-family:sans-serif;font-weight:bold", css(colorText)))
	canvas.Text(32, 68, l.Status, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	drawLegendSVG(canvas, l)

	for _, e := range l.Edges {
		style := fmt.Sprintf("stroke:%s;stroke-width:%.1f", css(colorStroke), edgeWidth)
		if e.Flow {
			style += fmt.Sprintf(";stroke-dasharray:%d,%d", int(flowDash), int(flowDash))
		}
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2), style)
		if e.Flow {
			xs, ys := arrowHead(e.X1, e.Y1, e.X2, e.Y2)
			canvas.Polygon(
				[]int{int(xs[0]), int(xs[1]), int(xs[2])},
				[]int{int(ys[0]), int(ys[1]), int(ys[2])},
				fmt.Sprintf("fill:%s", css(colorStroke)),
			)
		}
	}

	for _, n := range l.Nodes {
		x, y, w, h := int(n.X), int(n.Y), int(n.W), int(n.H)
		stroke := borderWidth
		if n.Selected {
			stroke = selectedBorder
		}
		style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g", css(n.Style.Fill), css(colorStroke), stroke)
		if n.Style.Rounded {
			canvas.Roundrect(x, y, w, h, int(cornerRadius), int(cornerRadius), style)
		} else {
			canvas.Rect(x, y, w, h, style)
		}
		cx, cy := n.center()
		top := cy - float64(len(n.Lines)-1)*10 + 5
		for i, line := range n.Lines {
			canvas.Text(int(cx), int(top)+i*20, line,
				fmt.Sprintf("fill:%s;font-size:%dpx;font-family:sans-serif;text-anchor:middle", css(colorText), labelFontSize))
		}
	}

	canvas.End()
	return nil
}

func drawLegendSVG(canvas *svg.SVG, l snapshotLayout) {
	boxW := 230
	boxH := 24 + 16*len(legendEntries)
	x := l.Width - boxW - 24
	y := 22
	canvas.Roundrect(x, y, boxW, boxH, 8, 8, fmt.Sprintf("fill:%s", css(colorLegendBG)))
	for i, le := range legendEntries {
		st := StyleFor(model.Kinds(le.kind))
		ry := y + 18 + 16*i
		style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(st.Fill), css(colorStroke))
		if st.Rounded {
			canvas.Roundrect(x+12, ry-6, 14, 12, 3, 3, style)
		} else {
			canvas.Rect(x+12, ry-6, 14, 12, style)
		}
		canvas.Text(x+34, ry+4, le.label, fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorSubtle)))
	}
}
