// Package graph holds the immutable node/edge store of the data-flow graph and
// the traversal primitives the focus views are computed from.
package graph

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/pitgraph/pkg/model"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

type pair struct{ from, to int64 }

// Store is a directed, kind-labeled graph. Adjacency lives in a gonum
// DirectedGraph; string ids map onto gonum's int64 node ids.
//
// A Store is populated through AddNode/AddEdge (normally by Build) and is
// read-only afterwards. Queries return copies so callers cannot alter shared
// node state.
type Store struct {
	g *simple.DirectedGraph

	nodes     map[string]*model.Node
	nodeOrder []string
	gid       map[string]int64
	sid       map[int64]string

	edges     map[string]*model.Edge
	edgeOrder []string
	byPair    map[pair]*model.Edge
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		g:      simple.NewDirectedGraph(),
		nodes:  make(map[string]*model.Node),
		gid:    make(map[string]int64),
		sid:    make(map[int64]string),
		edges:  make(map[string]*model.Edge),
		byPair: make(map[pair]*model.Edge),
	}
}

// AddNode inserts n. The id must be unique.
func (s *Store) AddNode(n model.Node) error {
	if n.ID == "" {
		return &StructuralError{Kind: KindInvalidDeclaration, Msg: fmt.Sprintf("node %q has empty id", n.Name)}
	}
	if _, ok := s.nodes[n.ID]; ok {
		return &StructuralError{Kind: KindDuplicateNode, Msg: fmt.Sprintf("duplicate node ID: %q", n.ID)}
	}
	gn := s.g.NewNode()
	s.g.AddNode(gn)
	s.gid[n.ID] = gn.ID()
	s.sid[gn.ID()] = n.ID
	node := n
	s.nodes[n.ID] = &node
	s.nodeOrder = append(s.nodeOrder, n.ID)
	return nil
}

// AddEdge connects source to target. The edge id is derived from both
// endpoints; at most one edge may join an ordered pair.
func (s *Store) AddEdge(source, target string, kind model.EdgeKind) (model.Edge, error) {
	from, ok := s.gid[source]
	if !ok {
		return model.Edge{}, &StructuralError{Kind: KindDanglingReference, Msg: fmt.Sprintf("edge references unknown node: %q", source)}
	}
	to, ok := s.gid[target]
	if !ok {
		return model.Edge{}, &StructuralError{Kind: KindDanglingReference, Msg: fmt.Sprintf("edge references unknown node: %q", target)}
	}
	if from == to {
		return model.Edge{}, &StructuralError{Kind: KindSelfReference, Msg: fmt.Sprintf("self-referential edge: %q", source)}
	}
	if _, ok := s.byPair[pair{from, to}]; ok {
		return model.Edge{}, &StructuralError{Kind: KindDuplicateEdge, Msg: fmt.Sprintf("duplicate edge: %q -> %q", source, target)}
	}
	e := &model.Edge{ID: EdgeID(source, target), Source: source, Target: target, Kind: kind}
	s.g.SetEdge(s.g.NewEdge(s.g.Node(from), s.g.Node(to)))
	s.edges[e.ID] = e
	s.edgeOrder = append(s.edgeOrder, e.ID)
	s.byPair[pair{from, to}] = e
	return *e, nil
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (model.Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return model.Node{}, false
	}
	return *n, true
}

// Has reports whether id names a node.
func (s *Store) Has(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Edge returns the edge with the given id.
func (s *Store) Edge(id string) (model.Edge, bool) {
	e, ok := s.edges[id]
	if !ok {
		return model.Edge{}, false
	}
	return *e, true
}

// Nodes returns every node in insertion order.
func (s *Store) Nodes() []model.Node {
	out := make([]model.Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, *s.nodes[id])
	}
	return out
}

// Edges returns every edge in insertion order.
func (s *Store) Edges() []model.Edge {
	out := make([]model.Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, *s.edges[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

func (s *Store) matches(gid int64, kinds model.KindSet) bool {
	return s.nodes[s.sid[gid]].Kinds.Matches(kinds)
}

// Incoming returns the predecessors of id that carry any kind in kinds.
func (s *Store) Incoming(id string, kinds model.KindSet) NodeSet {
	out := make(NodeSet)
	s.collect(out, id, kinds, s.g.To)
	return out
}

// Outgoing returns the successors of id that carry any kind in kinds.
func (s *Store) Outgoing(id string, kinds model.KindSet) NodeSet {
	out := make(NodeSet)
	s.collect(out, id, kinds, s.g.From)
	return out
}

// IncomingOf returns the union of Incoming over every id in set.
func (s *Store) IncomingOf(set NodeSet, kinds model.KindSet) NodeSet {
	out := make(NodeSet)
	for id := range set {
		s.collect(out, id, kinds, s.g.To)
	}
	return out
}

// OutgoingOf returns the union of Outgoing over every id in set.
func (s *Store) OutgoingOf(set NodeSet, kinds model.KindSet) NodeSet {
	out := make(NodeSet)
	for id := range set {
		s.collect(out, id, kinds, s.g.From)
	}
	return out
}

func (s *Store) collect(out NodeSet, id string, kinds model.KindSet, next func(int64) gonum.Nodes) {
	gid, ok := s.gid[id]
	if !ok {
		return
	}
	it := next(gid)
	for it.Next() {
		n := it.Node().ID()
		if s.matches(n, kinds) {
			out.Add(s.sid[n])
		}
	}
}

// EdgesBetween returns the edges whose source is in a and target is in b.
func (s *Store) EdgesBetween(a, b NodeSet) EdgeSet {
	return s.edgesBetween(a, b, func(*model.Edge) bool { return true })
}

// EdgesBetweenKind is EdgesBetween restricted to one edge kind.
func (s *Store) EdgesBetweenKind(a, b NodeSet, kind model.EdgeKind) EdgeSet {
	return s.edgesBetween(a, b, func(e *model.Edge) bool { return e.Kind == kind })
}

func (s *Store) edgesBetween(a, b NodeSet, keep func(*model.Edge) bool) EdgeSet {
	out := make(EdgeSet)
	for id := range a {
		from, ok := s.gid[id]
		if !ok {
			continue
		}
		it := s.g.From(from)
		for it.Next() {
			to := it.Node().ID()
			if !b.Contains(s.sid[to]) {
				continue
			}
			if e := s.byPair[pair{from, to}]; keep(e) {
				out.Add(e.ID)
			}
		}
	}
	return out
}

// EdgesAmong returns the edges with both endpoints in set.
func (s *Store) EdgesAmong(set NodeSet) EdgeSet {
	return s.EdgesBetween(set, set)
}

// Filter returns every node carrying any kind in kinds.
func (s *Store) Filter(kinds model.KindSet) NodeSet {
	out := make(NodeSet)
	for id, n := range s.nodes {
		if n.Kinds.Matches(kinds) {
			out.Add(id)
		}
	}
	return out
}

// TreeParents returns the sources of the DataTree edges entering id, sorted.
func (s *Store) TreeParents(id string) []string {
	gid, ok := s.gid[id]
	if !ok {
		return nil
	}
	var out []string
	it := s.g.To(gid)
	for it.Next() {
		from := it.Node().ID()
		if s.byPair[pair{from, gid}].Kind == model.EdgeDataTree {
			out = append(out, s.sid[from])
		}
	}
	sort.Strings(out)
	return out
}

// TreeParent returns the structural parent of id: the source of its incoming
// DataTree edge. ok is false for flow roots, pipelines and unknown ids.
func (s *Store) TreeParent(id string) (parent string, ok bool) {
	parents := s.TreeParents(id)
	if len(parents) == 0 {
		return "", false
	}
	return parents[0], true
}

// Descendants returns the nodes reachable from id over DataTree edges whose
// targets carry a kind in kinds. The walk never crosses a DataFlow edge and
// never passes through a non-matching node; id itself is excluded.
func (s *Store) Descendants(id string, kinds model.KindSet) NodeSet {
	out := make(NodeSet)
	gid, ok := s.gid[id]
	if !ok {
		return out
	}
	bf := traverse.BreadthFirst{
		Traverse: func(e gonum.Edge) bool {
			pe := s.byPair[pair{e.From().ID(), e.To().ID()}]
			return pe != nil && pe.Kind == model.EdgeDataTree && s.matches(e.To().ID(), kinds)
		},
		Visit: func(n gonum.Node) {
			if n.ID() != gid {
				out.Add(s.sid[n.ID()])
			}
		},
	}
	bf.Walk(s.g, s.g.Node(gid), nil)
	return out
}

// Directed exposes the underlying gonum graph together with the id mapping,
// for algorithms (layering, SCC) that operate on gonum types directly.
func (s *Store) Directed() (g gonum.Directed, toID func(int64) string, toGID func(string) (int64, bool)) {
	return s.g,
		func(n int64) string { return s.sid[n] },
		func(id string) (int64, bool) {
			n, ok := s.gid[id]
			return n, ok
		}
}
