package layout

import (
	"math"
	"sort"
	"unicode/utf8"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Direction is the rank direction of a layered layout.
type Direction int

const (
	// LeftToRight places layers as columns.
	LeftToRight Direction = iota
	// TopToBottom places layers as rows.
	TopToBottom
)

func (d Direction) String() string {
	if d == TopToBottom {
		return "TB"
	}
	return "LR"
}

// Node box and spacing.
const (
	MinNodeWidth  = 180.0
	MinNodeHeight = 90.0
	RankSep       = 100.0
	NodeSep       = 40.0

	charWidth  = 9.0
	lineHeight = 20.0
	textWidth  = 140.0
)

// NodeSize returns the box of a node labeled name: at least 180x90, taller
// when the label wraps past four lines.
func NodeSize(name string) (w, h float64) {
	n := utf8.RuneCountInString(name)
	lines := math.Ceil(float64(n) * charWidth / textWidth)
	return MinNodeWidth, math.Max(MinNodeHeight, lines*lineHeight+10)
}

// Graph is the part of the store the layout reads.
type Graph interface {
	Node(id string) (model.Node, bool)
	Edge(id string) (model.Edge, bool)
}

// Layered places nodes in layers. A node's layer is the longest path to it
// from a source of the subgraph induced by nodes and edges; cycles are
// collapsed to one layer through their strongly connected component. Within
// a layer nodes are ordered by the barycenter of their predecessors, ties
// broken by name then id. Layers are centered on the cross axis.
//
// The result depends only on the node and edge sets, never on map order.
func Layered(g Graph, nodes, edges map[string]struct{}, dir Direction) Positions {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		if _, ok := g.Node(id); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return Positions{}
	}
	name := func(id string) string {
		n, _ := g.Node(id)
		return n.Name
	}
	sort.Slice(ids, func(i, j int) bool {
		if a, b := name(ids[i]), name(ids[j]); a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})

	dg := simple.NewDirectedGraph()
	index := make(map[string]int64, len(ids))
	for i, id := range ids {
		index[id] = int64(i)
		dg.AddNode(simple.Node(i))
	}
	preds := make(map[string][]string)
	edgeIDs := make([]string, 0, len(edges))
	for id := range edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Strings(edgeIDs)
	for _, eid := range edgeIDs {
		e, ok := g.Edge(eid)
		if !ok {
			continue
		}
		from, okF := index[e.Source]
		to, okT := index[e.Target]
		if !okF || !okT || from == to {
			continue
		}
		dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
		preds[e.Target] = append(preds[e.Target], e.Source)
	}

	// Condense SCCs and take longest paths over the resulting DAG.
	comp := make(map[int64]int)
	for c, scc := range topo.TarjanSCC(dg) {
		for _, n := range scc {
			comp[n.ID()] = c
		}
	}
	compPreds := make(map[int]map[int]bool)
	for _, id := range ids {
		c := comp[index[id]]
		for _, p := range preds[id] {
			pc := comp[index[p]]
			if pc == c {
				continue
			}
			if compPreds[c] == nil {
				compPreds[c] = make(map[int]bool)
			}
			compPreds[c][pc] = true
		}
	}
	compLayer := make(map[int]int)
	var layerOf func(c int) int
	layerOf = func(c int) int {
		if l, ok := compLayer[c]; ok {
			return l
		}
		l := 0
		for pc := range compPreds[c] {
			if pl := layerOf(pc) + 1; pl > l {
				l = pl
			}
		}
		compLayer[c] = l
		return l
	}

	var layers [][]string
	for _, id := range ids {
		l := layerOf(comp[index[id]])
		for len(layers) <= l {
			layers = append(layers, nil)
		}
		layers[l] = append(layers[l], id)
	}

	// One barycenter sweep, top layer kept in name order.
	slot := make(map[string]float64, len(ids))
	for i, id := range layers[0] {
		slot[id] = float64(i)
	}
	for l := 1; l < len(layers); l++ {
		bary := make(map[string]float64, len(layers[l]))
		for i, id := range layers[l] {
			sum, n := 0.0, 0
			for _, p := range preds[id] {
				if s, ok := slot[p]; ok {
					sum += s
					n++
				}
			}
			if n > 0 {
				bary[id] = sum / float64(n)
			} else {
				bary[id] = float64(i)
			}
		}
		layer := layers[l]
		sort.SliceStable(layer, func(i, j int) bool {
			return bary[layer[i]] < bary[layer[j]]
		})
		for i, id := range layer {
			slot[id] = float64(i)
		}
	}

	out := make(Positions, len(ids))
	rank := 0.0
	for _, layer := range layers {
		// Rank step is set by the largest box in the layer.
		depth := 0.0
		for _, id := range layer {
			w, h := NodeSize(name(id))
			if dir == LeftToRight {
				depth = math.Max(depth, w)
			} else {
				depth = math.Max(depth, h)
			}
		}
		cross := 0.0
		sizes := make([]float64, len(layer))
		for i, id := range layer {
			w, h := NodeSize(name(id))
			if dir == LeftToRight {
				sizes[i] = h
			} else {
				sizes[i] = w
			}
			cross += sizes[i]
		}
		cross += NodeSep * float64(len(layer)-1)

		at := -cross / 2
		for i, id := range layer {
			c := at + sizes[i]/2
			if dir == LeftToRight {
				out[id] = Position{X: rank + depth/2, Y: c}
			} else {
				out[id] = Position{X: c, Y: rank + depth/2}
			}
			at += sizes[i] + NodeSep
		}
		rank += depth + RankSep
	}
	return out
}
