package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// NodeDelegate renders node items in the list
type NodeDelegate struct {
	Theme Theme
	// ShowPositions adds the node's coordinates on the right.
	ShowPositions bool
}

func (d NodeDelegate) Height() int {
	return 1
}

func (d NodeDelegate) Spacing() int {
	return 0
}

func (d NodeDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d NodeDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(NodeItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderRow(i, index == m.Index(), m.Width()))
}

// renderRow lays out [cursor] [badge] [indent+name...] [position] in width
// cells.
func (d NodeDelegate) renderRow(i NodeItem, isCursor bool, width int) string {
	t := d.Theme
	if width <= 0 {
		width = 80
	}
	// Reduce width by 1 to prevent terminal wrapping on the exact edge
	width--

	cursor := "  "
	if isCursor {
		cursor = t.PrimaryBold.Render("▸ ")
	}
	badge, color := t.KindBadge(i.Node.Kinds)
	left := cursor + t.Renderer.NewStyle().Foreground(color).Bold(true).Render(badge) + " "
	leftWidth := 4

	mark := "  "
	switch {
	case i.Selected:
		mark = t.SelectedMark.Render("● ")
	case i.Focus:
		mark = t.PrimaryBold.Render("◆ ")
	}
	leftWidth += 2

	right := ""
	rightWidth := 0
	if d.ShowPositions && i.Placed && width > 50 {
		pos := fmt.Sprintf("%6.0f,%-6.0f", i.Position.X, i.Position.Y)
		right = " " + t.MutedText.Render(pos)
		rightWidth = 1 + runewidth.StringWidth(pos)
	}

	indent := strings.Repeat("  ", i.Depth)
	nameWidth := width - leftWidth - rightWidth
	if nameWidth < 1 {
		nameWidth = 1
	}
	name := runewidth.Truncate(indent+i.Node.Name, nameWidth, "…")
	name = runewidth.FillRight(name, nameWidth)

	style := t.Base
	if i.Focus {
		style = t.PrimaryBold
	}
	return left + mark + style.Render(name) + right
}
