// Package view holds the explorer's view state: which of the three views is
// showing, which node is selected, and where every visible node sits. Each
// transition produces a Frame that a renderer can apply on its own.
package view

import (
	"fmt"
	"sync"

	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Mode identifies the view being shown.
type Mode int

const (
	Global Mode = iota
	PipelineFocus
	DataFlowFocus
)

func (m Mode) String() string {
	switch m {
	case Global:
		return "global"
	case PipelineFocus:
		return "pipeline"
	case DataFlowFocus:
		return "data-flow"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// IsFocusable reports whether clicking a node with these kinds opens a
// focus view rather than only selecting it.
func IsFocusable(k model.KindSet) bool {
	return k.Matches(model.PipelineKinds) || k.Has(model.KindDataFlow)
}

// Frame is one rendered state. Generation increases with every transition;
// a renderer that receives frames out of order keeps only the newest.
type Frame struct {
	Generation uint64
	Mode       Mode
	Focus      string // focused node, empty in the global view
	Active     focus.ActiveSet
	Positions  layout.Positions
	Selected   string // empty when nothing is selected

	// Show and Hide are the changes from the previous frame's active set.
	Show focus.ActiveSet
	Hide focus.ActiveSet
}

// BackEnabled reports whether the back control should be live.
func (f Frame) BackEnabled() bool { return f.Mode != Global }

// PanelNode is the node whose information panel the frame shows: the
// selection, or the focused flow of a data-flow view with nothing selected.
func (f Frame) PanelNode() string {
	if f.Selected == "" && f.Mode == DataFlowFocus {
		return f.Focus
	}
	return f.Selected
}

// Controller drives transitions between views. It is safe for concurrent use.
type Controller struct {
	comp *focus.Computer

	mu     sync.Mutex
	global layout.Positions
	cur    Frame
}

// NewController starts in the global view. saved holds previously stored
// global positions; nodes it does not cover get a left-to-right layered
// layout.
func NewController(c *focus.Computer, saved layout.Positions) *Controller {
	ctl := &Controller{comp: c}
	ctl.global = ctl.globalPositions(saved)
	active := c.Global()
	ctl.cur = Frame{
		Generation: 1,
		Mode:       Global,
		Active:     active,
		Positions:  ctl.global.Only(active.Nodes),
		Show:       active,
		Hide:       focus.NewActiveSet(),
	}
	return ctl
}

func (ctl *Controller) globalPositions(saved layout.Positions) layout.Positions {
	active := ctl.comp.Global()
	fallback := layout.Layered(ctl.comp.Store(), active.Nodes, active.Edges, layout.LeftToRight)
	return fallback.Merge(saved.RoundTo10())
}

// Current returns the latest frame.
func (ctl *Controller) Current() Frame {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.cur
}

// BackEnabled reports whether a focus view is showing.
func (ctl *Controller) BackEnabled() bool {
	return ctl.Current().BackEnabled()
}

// Click applies a click on node id.
//
// Pipelines (working group, external group, public) open the pipeline focus
// and select the node. Data flows open the data-flow focus with nothing
// selected. Decomposition elements only change the selection. An unknown id
// is an error and leaves the state untouched.
func (ctl *Controller) Click(id string) (Frame, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	n, ok := ctl.comp.Store().Node(id)
	if !ok {
		return ctl.cur, &focus.UnknownNodeError{ID: id}
	}

	switch {
	case n.IsPipeline():
		active, err := ctl.comp.Pipeline(id)
		if err != nil {
			return ctl.cur, err
		}
		stop := metrics.Timer(metrics.FrameLayout)
		pos := layout.Layered(ctl.comp.Store(), active.Nodes, active.Edges, layout.LeftToRight)
		stop()
		return ctl.advance(PipelineFocus, id, active, pos, id), nil

	case n.Is(model.KindDataFlow):
		v, err := ctl.comp.DataFlow(id)
		if err != nil {
			return ctl.cur, err
		}
		pos, err := dataFlowPositions(ctl.comp, v)
		if err != nil {
			return ctl.cur, err
		}
		return ctl.advance(DataFlowFocus, id, v.Active, pos, ""), nil

	case n.Kinds.Matches(model.StructureKinds):
		return ctl.advance(ctl.cur.Mode, ctl.cur.Focus, ctl.cur.Active, ctl.cur.Positions, id), nil
	}
	return ctl.cur, nil
}

func dataFlowPositions(c *focus.Computer, v focus.DataFlowView) (layout.Positions, error) {
	defer metrics.Timer(metrics.FrameLayout)()
	s := c.Store()
	flowPos := layout.Layered(s, v.FlowNodes, v.FlowEdges, layout.LeftToRight)
	treePos := layout.Layered(s, v.TreeNodes, v.TreeEdges, layout.TopToBottom)
	return focus.ReconcileDataFlow(v.Flow, flowPos, treePos, v.Destinations, v.HasDescendants())
}

// Back returns to the global view and clears the selection.
func (ctl *Controller) Back() Frame {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	active := ctl.comp.Global()
	return ctl.advance(Global, "", active, ctl.global.Only(active.Nodes), "")
}

// Move records a dragged node's new global position. It is ignored outside
// the global view and for nodes the global view does not show.
func (ctl *Controller) Move(id string, p layout.Position) (Frame, bool) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.cur.Mode != Global || !ctl.cur.Active.Nodes.Contains(id) {
		return ctl.cur, false
	}
	ctl.global[id] = layout.Position{X: layout.RoundTo10(p.X), Y: layout.RoundTo10(p.Y)}
	return ctl.advance(Global, "", ctl.cur.Active, ctl.global.Only(ctl.cur.Active.Nodes), ctl.cur.Selected), true
}

// ReplacePositions swaps in a freshly loaded global position map, for
// example after the positions file changed on disk. The global view is
// re-emitted when it is showing.
func (ctl *Controller) ReplacePositions(saved layout.Positions) Frame {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	ctl.global = ctl.globalPositions(saved)
	if ctl.cur.Mode != Global {
		return ctl.cur
	}
	return ctl.advance(Global, "", ctl.cur.Active, ctl.global.Only(ctl.cur.Active.Nodes), ctl.cur.Selected)
}

// SavePositions returns a copy of the global position map.
func (ctl *Controller) SavePositions() layout.Positions {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.global.Clone()
}

func (ctl *Controller) advance(mode Mode, focusID string, active focus.ActiveSet, pos layout.Positions, selected string) Frame {
	show, hide := ctl.cur.Active.Diff(active)
	ctl.cur = Frame{
		Generation: ctl.cur.Generation + 1,
		Mode:       mode,
		Focus:      focusID,
		Active:     active,
		Positions:  pos,
		Selected:   selected,
		Show:       show,
		Hide:       hide,
	}
	debug.Log("view: gen %d %s focus=%q selected=%q (+%d/-%d nodes)",
		ctl.cur.Generation, mode, focusID, selected, show.Nodes.Len(), hide.Nodes.Len())
	return ctl.cur
}
