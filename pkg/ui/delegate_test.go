package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/testutil"
	"github.com/vanderheijden86/pitgraph/pkg/view"
)

func TestRenderRowWidth(t *testing.T) {
	d := NodeDelegate{Theme: TestTheme(), ShowPositions: true}
	long := NodeItem{
		Node:     model.Node{ID: "p", Name: strings.Repeat("Event Modeling ", 10), Kinds: model.Kinds(model.KindWorkingGroupPipeline)},
		Position: layout.Position{X: 120, Y: 40},
		Placed:   true,
	}
	for _, width := range []int{30, 60, 80, 140} {
		row := d.renderRow(long, false, width)
		if got := lipgloss.Width(row); got != width-1 {
			t.Errorf("width %d: row is %d cells: %q", width, got, row)
		}
		if !strings.Contains(row, "…") {
			t.Errorf("width %d: long name not truncated", width)
		}
	}
}

func TestRenderRowContent(t *testing.T) {
	d := NodeDelegate{Theme: TestTheme(), ShowPositions: true}
	tests := []struct {
		name     string
		item     NodeItem
		cursor   bool
		want     []string
		unwanted []string
	}{
		{
			name:   "cursor with position",
			item:   NodeItem{Node: model.Node{Name: "Astrometry", Kinds: model.Kinds(model.KindWorkingGroupPipeline)}, Position: layout.Position{X: 30, Y: 70}, Placed: true},
			cursor: true,
			want:   []string{"▸", "W", "Astrometry", "30", "70"},
		},
		{
			name:     "unplaced",
			item:     NodeItem{Node: model.Node{Name: "MSOS", Kinds: model.Kinds(model.KindExternalGroupPipeline)}},
			want:     []string{"E", "MSOS"},
			unwanted: []string{"▸", ","},
		},
		{
			name: "selected leaf",
			item: NodeItem{Node: model.Node{Name: "u1", Kinds: model.Kinds(model.KindDataLeaf)}, Depth: 1, Selected: true},
			want: []string{"L", "●", "  u1"},
		},
		{
			name: "focused flow",
			item: NodeItem{Node: model.Node{Name: "X", Kinds: model.Kinds(model.KindDataFlow, model.KindDataTree)}, Focus: true},
			want: []string{"F", "◆", "X"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := d.renderRow(tt.item, tt.cursor, 80)
			for _, w := range tt.want {
				if !strings.Contains(row, w) {
					t.Errorf("row %q missing %q", row, w)
				}
			}
			for _, w := range tt.unwanted {
				if strings.Contains(row, w) {
					t.Errorf("row %q has %q", row, w)
				}
			}
		})
	}
}

func TestNodeItem(t *testing.T) {
	wg := model.WorkingGroup{Number: 3, Name: "Event Modeling"}
	it := NodeItem{Node: model.Node{ID: "pipeline:x", Name: "Modeling", Kinds: model.Kinds(model.KindWorkingGroupPipeline), WorkingGroup: &wg}}
	if it.Title() != "Modeling" {
		t.Errorf("Title %q", it.Title())
	}
	if !strings.Contains(it.Description(), "pipeline:x") {
		t.Errorf("Description %q", it.Description())
	}
	if fv := it.FilterValue(); !strings.Contains(fv, "WG3") || !strings.Contains(fv, "working-group-pipeline") {
		t.Errorf("FilterValue %q", fv)
	}
}

func TestFrameItemsDepth(t *testing.T) {
	m := newTestModel(t, testutil.SiblingFixture(), nil, Options{})
	selectNamed(t, &m, "f1")
	m = press(t, m, enterKey)
	if m.Frame().Mode != view.DataFlowFocus {
		t.Fatalf("mode %v", m.Frame().Mode)
	}

	depth := map[string]int{}
	for _, n := range frameItems(m.comp.Store(), m.Frame()) {
		depth[n.Node.Name] = n.Depth
	}
	want := map[string]int{"A": 0, "B": 0, "f1": 0, "f1.t": 1, "f1.l": 1, "f1.t.a": 2, "f1.t.b": 2}
	if len(depth) != len(want) {
		t.Errorf("items %v", depth)
	}
	for name, d := range want {
		if got, ok := depth[name]; !ok || got != d {
			t.Errorf("%s depth %d (listed %v), want %d", name, got, ok, d)
		}
	}
}
