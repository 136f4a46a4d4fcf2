package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders panel markdown for the detail viewport.
type MarkdownRenderer struct {
	tr    *glamour.TermRenderer
	style string
	width int
}

// NewMarkdownRenderer creates a renderer wrapping at width. style is a
// glamour standard style name; "auto" and "" detect the terminal background.
func NewMarkdownRenderer(width int, style string) *MarkdownRenderer {
	r := &MarkdownRenderer{style: style}
	r.SetWidth(width)
	return r
}

// SetWidth rebuilds the renderer for a new wrap width.
func (r *MarkdownRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if r.tr != nil && width == r.width {
		return
	}
	styleOpt := glamour.WithAutoStyle()
	if r.style != "" && r.style != "auto" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		tr = nil
	}
	r.tr = tr
	r.width = width
}

// Render returns md rendered for the terminal, or md itself when glamour
// cannot render it.
func (r *MarkdownRenderer) Render(md string) string {
	if r.tr == nil {
		return md
	}
	out, err := r.tr.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
