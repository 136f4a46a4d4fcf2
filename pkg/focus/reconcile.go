package focus

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/pitgraph/pkg/layout"
)

// ReconcileDataFlow merges the left-to-right flow layout and the top-to-bottom
// tree layout of a data-flow focus into one position map.
//
// The flow layout is translated by treePos[flow] - flowPos[flow] so the flow
// node sits where the tree layout put it. When the flow has descendants, the
// destinations are further shifted vertically by flowPos[flow].y minus the
// largest destination y, both taken from the untranslated flow layout. Flow
// positions win over tree positions on shared ids.
func ReconcileDataFlow(flowID string, flowPos, treePos layout.Positions, destinations map[string]struct{}, hasDescendants bool) (layout.Positions, error) {
	fp, ok := flowPos[flowID]
	if !ok {
		return nil, fmt.Errorf("reconcile: flow %q missing from flow layout", flowID)
	}
	tp, ok := treePos[flowID]
	if !ok {
		return nil, fmt.Errorf("reconcile: flow %q missing from tree layout", flowID)
	}

	moved := flowPos.Offset(tp.Sub(fp))

	if hasDescendants {
		maxY := math.Inf(-1)
		for id := range destinations {
			if p, ok := flowPos[id]; ok && p.Y > maxY {
				maxY = p.Y
			}
		}
		if !math.IsInf(maxY, -1) {
			shift := fp.Y - maxY
			for id := range destinations {
				if p, ok := moved[id]; ok {
					moved[id] = layout.Position{X: p.X, Y: p.Y + shift}
				}
			}
		}
	}
	return treePos.Merge(moved), nil
}
