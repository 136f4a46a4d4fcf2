package export

import (
	"fmt"
	"image/color"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

const defaultViewerTitle = "RGES-PIT Data Flow"

// Node fills by kind.
var (
	colorWorkingGroup  = color.RGBA{0xc0, 0xbf, 0xfb, 0xff}
	colorExternalGroup = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	colorPublic        = color.RGBA{0xf6, 0xc1, 0xfc, 0xff}
	colorDataStructure = color.RGBA{0xff, 0xff, 0xc5, 0xff}
	colorDataFlow      = color.RGBA{0xcc, 0xfe, 0xc6, 0xff}
)

var (
	colorStroke   = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorText     = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colorSelected = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

const (
	edgeWidth         = 1.2
	borderWidth       = 1.0
	selectedBorder    = 2.0
	cornerRadius      = 10.0
	flowDash          = 10.0
	arrowLength       = 9.0
	arrowHalfWidth    = 4.5
	labelFontSize     = 16
	labelCharsPerLine = 18
)

// NodeStyle is how a node is drawn.
type NodeStyle struct {
	Fill    color.RGBA
	Rounded bool
	Class   string // primary style class
}

// StyleFor returns the style of a node carrying kinds. A flow root that also
// heads a tree is drawn as a flow.
func StyleFor(k model.KindSet) NodeStyle {
	switch {
	case k.Has(model.KindDataFlow):
		return NodeStyle{Fill: colorDataFlow, Rounded: true, Class: model.KindDataFlow.String()}
	case k.Has(model.KindDataTree):
		return NodeStyle{Fill: colorDataStructure, Rounded: true, Class: model.KindDataTree.String()}
	case k.Has(model.KindDataLeaf):
		return NodeStyle{Fill: colorDataStructure, Rounded: true, Class: model.KindDataLeaf.String()}
	case k.Has(model.KindWorkingGroupPipeline):
		return NodeStyle{Fill: colorWorkingGroup, Class: model.KindWorkingGroupPipeline.String()}
	case k.Has(model.KindExternalGroupPipeline):
		return NodeStyle{Fill: colorExternalGroup, Class: model.KindExternalGroupPipeline.String()}
	case k.Has(model.KindPublic):
		return NodeStyle{Fill: colorPublic, Class: model.KindPublic.String()}
	}
	return NodeStyle{Fill: colorBackdrop}
}

// legendEntries lists the kinds shown in snapshot legends, in display order.
var legendEntries = []struct {
	kind  model.Kind
	label string
}{
	{model.KindWorkingGroupPipeline, "Working group pipeline"},
	{model.KindExternalGroupPipeline, "External group pipeline"},
	{model.KindPublic, "Public"},
	{model.KindDataFlow, "Data flow"},
	{model.KindDataTree, "Data collection / element"},
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
