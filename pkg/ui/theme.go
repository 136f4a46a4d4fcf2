package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Node kinds. The dark variants are the graph fills; light terminals get
	// deeper shades so the badges stay readable on white.
	WorkingGroup  lipgloss.AdaptiveColor
	ExternalGroup lipgloss.AdaptiveColor
	Public        lipgloss.AdaptiveColor
	DataFlow      lipgloss.AdaptiveColor
	DataStructure lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed delegate styles, created once instead of per row
	MutedText     lipgloss.Style // positions, kind names
	SecondaryText lipgloss.Style // breadcrumb separators
	PrimaryBold   lipgloss.Style // cursor and focus marker
	SelectedMark  lipgloss.Style // selected node dot
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		WorkingGroup:  lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#C0BFFB"},
		ExternalGroup: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#CCCCCC"},
		Public:        lipgloss.AdaptiveColor{Light: "#A0269F", Dark: "#F6C1FC"},
		DataFlow:      lipgloss.AdaptiveColor{Light: "#007700", Dark: "#CCFEC6"},
		DataStructure: lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#FFFFC5"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(ColorMuted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.SelectedMark = r.NewStyle().Foreground(ThemeFg("#FFB86C")).Bold(true)

	return t
}

// KindBadge returns the one-letter badge and color for a node. A flow root
// that also heads a tree shows as a flow.
func (t Theme) KindBadge(k model.KindSet) (string, lipgloss.AdaptiveColor) {
	switch {
	case k.Has(model.KindDataFlow):
		return "F", t.DataFlow
	case k.Has(model.KindDataTree):
		return "T", t.DataStructure
	case k.Has(model.KindDataLeaf):
		return "L", t.DataStructure
	case k.Has(model.KindWorkingGroupPipeline):
		return "W", t.WorkingGroup
	case k.Has(model.KindExternalGroupPipeline):
		return "E", t.ExternalGroup
	case k.Has(model.KindPublic):
		return "P", t.Public
	default:
		return "·", t.Subtext
	}
}

// WithBackground forces the light or dark variant of every adaptive color.
// "auto" and unknown values keep the renderer's detection.
func WithBackground(r *lipgloss.Renderer, theme string) *lipgloss.Renderer {
	switch theme {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
	return r
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
