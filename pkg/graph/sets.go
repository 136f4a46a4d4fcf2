package graph

import "sort"

// NodeSet is a set of node ids.
type NodeSet map[string]struct{}

// EdgeSet is a set of edge ids.
type EdgeSet map[string]struct{}

// NewNodeSet returns a set holding ids.
func NewNodeSet(ids ...string) NodeSet { return NodeSet(newSet(ids)) }

// NewEdgeSet returns a set holding ids.
func NewEdgeSet(ids ...string) EdgeSet { return EdgeSet(newSet(ids)) }

func (s NodeSet) Add(id string) { s[id] = struct{}{} }
func (s NodeSet) Contains(id string) bool { return contains(s, id) }
func (s NodeSet) Len() int { return len(s) }
func (s NodeSet) Sorted() []string { return sorted(s) }
func (s NodeSet) Union(o NodeSet) NodeSet { return union(s, o) }
func (s NodeSet) Difference(o NodeSet) NodeSet { return difference(s, o) }
func (s NodeSet) Intersection(o NodeSet) NodeSet { return intersection(s, o) }
func (s NodeSet) Equal(o NodeSet) bool { return equal(s, o) }
func (s NodeSet) Clone() NodeSet { return union(s, nil) }

func (s EdgeSet) Add(id string) { s[id] = struct{}{} }
func (s EdgeSet) Contains(id string) bool { return contains(s, id) }
func (s EdgeSet) Len() int { return len(s) }
func (s EdgeSet) Sorted() []string { return sorted(s) }
func (s EdgeSet) Union(o EdgeSet) EdgeSet { return union(s, o) }
func (s EdgeSet) Difference(o EdgeSet) EdgeSet { return difference(s, o) }
func (s EdgeSet) Intersection(o EdgeSet) EdgeSet { return intersection(s, o) }
func (s EdgeSet) Equal(o EdgeSet) bool { return equal(s, o) }
func (s EdgeSet) Clone() EdgeSet { return union(s, nil) }

type idSet interface{ ~map[string]struct{} }

func newSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func contains[S idSet](s S, id string) bool {
	_, ok := s[id]
	return ok
}

func sorted[S idSet](s S) []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Set operations never modify their operands.

func union[S idSet](a, b S) S {
	out := make(S, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}

func difference[S idSet](a, b S) S {
	out := make(S, len(a))
	for id := range a {
		if _, ok := b[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func intersection[S idSet](a, b S) S {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(S)
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func equal[S idSet](a, b S) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
