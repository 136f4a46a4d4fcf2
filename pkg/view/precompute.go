package view

import (
	"fmt"

	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
)

// Precompute returns the global frame followed by the frame of every
// pipeline and data-flow focus, in store order. Each focus frame is entered
// from the global view, so its Show and Hide are relative to it. Static
// renderers use this to replay clicks without a live controller.
func Precompute(c *focus.Computer, saved layout.Positions) ([]Frame, error) {
	defer metrics.Timer(metrics.Precompute)()
	ctl := NewController(c, saved)
	frames := []Frame{ctl.Current()}
	for _, n := range c.Store().Nodes() {
		if !IsFocusable(n.Kinds) {
			continue
		}
		f, err := ctl.Click(n.ID)
		if err != nil {
			return nil, fmt.Errorf("precompute %s: %w", n.Name, err)
		}
		frames = append(frames, f)
		ctl.Back()
	}
	return frames, nil
}
