// Package inherit resolves unit, frequency and latency on data-tree elements
// that leave them unset, by climbing to the nearest tree ancestor that sets
// them. Resolution happens at render time; the store is never written.
package inherit

import (
	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Tree is the part of the graph store the resolver reads.
type Tree interface {
	Node(id string) (model.Node, bool)
	TreeParent(id string) (string, bool)
}

// Value is a resolved field. From is the id of the node that set it; it equals
// the queried id when Inherited is false.
type Value struct {
	Text      string
	Inherited bool
	From      string
}

// Resolve returns the value of field for node id. The node's own value wins;
// otherwise, for inheritable fields, the climb follows the DataTree parent
// chain while each parent is itself tagged DataTree and stops at the first
// ancestor that sets the field.
//
// A node with no tree parent (flow roots, pipelines, malformed roots with no
// incoming edges) ends the climb with no value. A revisited node also ends it.
func Resolve(t Tree, id string, field model.Field) (Value, bool) {
	n, ok := t.Node(id)
	if !ok {
		return Value{}, false
	}
	if v, ok := n.Info.Get(field); ok {
		return Value{Text: v, From: id}, true
	}
	if !field.IsInheritable() {
		return Value{}, false
	}

	visited := map[string]bool{id: true}
	cur := id
	for {
		parentID, ok := t.TreeParent(cur)
		if !ok || visited[parentID] {
			if ok {
				debug.Log("inherit: cycle at %s while resolving %s on %s", parentID, field, id)
			}
			return Value{}, false
		}
		parent, ok := t.Node(parentID)
		if !ok || !parent.Is(model.KindDataTree) {
			return Value{}, false
		}
		if v, ok := parent.Info.Get(field); ok {
			return Value{Text: v, Inherited: true, From: parentID}, true
		}
		visited[parentID] = true
		cur = parentID
	}
}

// ResolveAll resolves every inheritable field for id. Fields with no value
// are omitted.
func ResolveAll(t Tree, id string) map[model.Field]Value {
	out := make(map[model.Field]Value, len(model.InheritableFields))
	for _, f := range model.InheritableFields {
		if v, ok := Resolve(t, id, f); ok {
			out[f] = v
		}
	}
	return out
}
