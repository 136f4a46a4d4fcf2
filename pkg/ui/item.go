package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/view"
)

// NodeItem wraps a graph node to implement list.Item
type NodeItem struct {
	Node     model.Node
	Depth    int // tree depth below the flow root, 0 elsewhere
	Position layout.Position
	Placed   bool // Position is meaningful
	Focus    bool // the node the current view is focused on
	Selected bool
}

func (i NodeItem) Title() string {
	return i.Node.Name
}

func (i NodeItem) Description() string {
	return fmt.Sprintf("%s • %s", i.Node.ID, i.Node.Kinds)
}

func (i NodeItem) FilterValue() string {
	var sb strings.Builder
	sb.WriteString(i.Node.Name)
	sb.WriteString(" ")
	sb.WriteString(i.Node.Kinds.String())
	if i.Node.WorkingGroup != nil {
		sb.WriteString(" ")
		sb.WriteString(i.Node.WorkingGroup.String())
	}
	return sb.String()
}

// frameItems lists the nodes a frame shows, in store order.
func frameItems(s *graph.Store, f view.Frame) []NodeItem {
	var items []NodeItem
	for _, n := range s.Nodes() {
		if !f.Active.Nodes.Contains(n.ID) {
			continue
		}
		p, placed := f.Positions[n.ID]
		items = append(items, NodeItem{
			Node:     n,
			Depth:    treeDepth(s, n.ID, f.Active.Nodes),
			Position: p,
			Placed:   placed,
			Focus:    n.ID == f.Focus,
			Selected: n.ID == f.Selected,
		})
	}
	return items
}

// treeDepth counts visible tree ancestors of id.
func treeDepth(s *graph.Store, id string, visible graph.NodeSet) int {
	depth := 0
	seen := map[string]bool{id: true}
	for {
		parent, ok := s.TreeParent(id)
		if !ok || seen[parent] || !visible.Contains(parent) {
			return depth
		}
		seen[parent] = true
		depth++
		id = parent
	}
}
