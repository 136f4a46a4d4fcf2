// Package ui is the terminal explorer: a node list for the current view next
// to the information panel of the selected node.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pitgraph/pkg/config"
	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/panel"
	"github.com/vanderheijden86/pitgraph/pkg/positions"
	"github.com/vanderheijden86/pitgraph/pkg/view"
	"github.com/vanderheijden86/pitgraph/pkg/watcher"
)

const (
	defaultWidth  = 120
	defaultHeight = 40
	// moveStep matches the rounding applied to stored positions.
	moveStep = 10
)

// pane is the element with keyboard focus.
type pane int

const (
	paneList pane = iota
	paneDetail
)

// PositionsChangedMsg carries a freshly loaded positions file.
type PositionsChangedMsg struct {
	Positions layout.Positions
}

// PositionsErrorMsg reports a positions file that could not be loaded.
type PositionsErrorMsg struct {
	Err error
}

// ReadyTimeoutMsg marks the model ready when the terminal is slow to report
// its size.
type ReadyTimeoutMsg struct{}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// waitForEventCmd delivers the next watcher event.
func waitForEventCmd(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// Options configure a Model.
type Options struct {
	// PositionsPath is where "s" saves the global layout and which the
	// explorer watches for outside edits. Empty disables both.
	PositionsPath string
	UI            config.UIConfig
}

// Model is the bubbletea model of the explorer.
type Model struct {
	comp  *focus.Computer
	ctl   *view.Controller
	frame view.Frame

	list     list.Model
	viewport viewport.Model
	renderer *MarkdownRenderer
	theme    Theme
	delegate NodeDelegate

	focused   pane
	width     int
	height    int
	ready     bool
	listRatio float64
	wordWrap  int

	panelMarkdown string

	positionsPath string
	watcher       *watcher.Watcher
	events        chan tea.Msg

	statusMsg     string
	statusIsError bool
}

// NewModel opens the explorer on the global view. saved holds previously
// stored global positions.
func NewModel(c *focus.Computer, saved layout.Positions, opts Options) Model {
	r := WithBackground(lipgloss.DefaultRenderer(), opts.UI.Theme)
	theme := DefaultTheme(r)
	delegate := NodeDelegate{Theme: theme, ShowPositions: true}

	l := list.New(nil, delegate, defaultWidth, defaultHeight-4)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles = list.Styles{}

	ratio := opts.UI.ListRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = config.DefaultConfig().UI.ListRatio
	}

	m := Model{
		comp:          c,
		ctl:           view.NewController(c, saved),
		list:          l,
		viewport:      viewport.New(defaultWidth/2, defaultHeight-4),
		renderer:      NewMarkdownRenderer(defaultWidth/2, opts.UI.Theme),
		theme:         theme,
		delegate:      delegate,
		listRatio:     ratio,
		wordWrap:      opts.UI.WordWrap,
		positionsPath: opts.PositionsPath,
	}
	m.resize(defaultWidth, defaultHeight)
	m.applyFrame(m.ctl.Current())
	return m
}

// WatchPositions reloads the global layout whenever the positions file
// changes on disk.
func (m *Model) WatchPositions(ctx context.Context, opts ...watcher.Option) error {
	if m.positionsPath == "" {
		return nil
	}
	events := make(chan tea.Msg, 1)
	send := func(msg tea.Msg) {
		// Keep only the newest event; an older reload is already stale.
		for {
			select {
			case events <- msg:
				return
			default:
			}
			select {
			case <-events:
			default:
			}
		}
	}
	w, err := positions.Watch(ctx, m.positionsPath, m.comp.Store().Has,
		func(p layout.Positions) { send(PositionsChangedMsg{Positions: p}) },
		func(err error) { send(PositionsErrorMsg{Err: err}) },
		opts...)
	if err != nil {
		return fmt.Errorf("watch %s: %w", m.positionsPath, err)
	}
	m.watcher = w
	m.events = events
	return nil
}

// Stop releases the positions watcher.
func (m Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) Init() tea.Cmd {
	if m.events != nil {
		return waitForEventCmd(m.events)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ReadyTimeoutMsg:
		m.ready = true
		return m, nil

	case PositionsChangedMsg:
		m.applyFrame(m.ctl.ReplacePositions(msg.Positions))
		m.setStatus(fmt.Sprintf("Reloaded positions (%d nodes)", len(msg.Positions)), false)
		if m.events != nil {
			cmds = append(cmds, waitForEventCmd(m.events))
		}
		return m, tea.Batch(cmds...)

	case PositionsErrorMsg:
		m.setStatus(fmt.Sprintf("Positions reload failed: %v", msg.Err), true)
		if m.events != nil {
			cmds = append(cmds, waitForEventCmd(m.events))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		// While the filter prompt is open every key belongs to it.
		if m.list.FilterState() == list.Filtering {
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		if handled, c := m.handleKey(msg); handled {
			return m, c
		}
	}

	if m.focused == paneDetail {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// handleKey applies explorer keys. Unhandled keys fall through to the list
// or viewport.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return true, tea.Quit
	case "tab":
		if m.focused == paneList {
			m.focused = paneDetail
		} else {
			m.focused = paneList
		}
		return true, nil
	case "enter":
		m.clickHighlighted()
		return true, nil
	case "esc", "backspace":
		if m.focused == paneDetail {
			m.focused = paneList
			return true, nil
		}
		if m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
			return true, nil
		}
		m.back()
		return true, nil
	case "y":
		m.copyIDToClipboard()
		return true, nil
	case "s":
		m.savePositions()
		return true, nil
	case "r":
		m.reloadPositions()
		return true, nil
	case "shift+up":
		m.moveHighlighted(layout.Position{Y: -moveStep})
		return true, nil
	case "shift+down":
		m.moveHighlighted(layout.Position{Y: moveStep})
		return true, nil
	case "shift+left":
		m.moveHighlighted(layout.Position{X: -moveStep})
		return true, nil
	case "shift+right":
		m.moveHighlighted(layout.Position{X: moveStep})
		return true, nil
	}
	return false, nil
}

// highlighted returns the node under the list cursor.
func (m Model) highlighted() (NodeItem, bool) {
	item, ok := m.list.SelectedItem().(NodeItem)
	return item, ok
}

func (m *Model) clickHighlighted() {
	item, ok := m.highlighted()
	if !ok {
		return
	}
	f, err := m.ctl.Click(item.Node.ID)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.list.ResetFilter()
	m.applyFrame(f)
	m.clearStatus()
}

func (m *Model) back() {
	if !m.ctl.BackEnabled() {
		m.setStatus("Already at the global view", false)
		return
	}
	m.list.ResetFilter()
	m.applyFrame(m.ctl.Back())
	m.clearStatus()
}

func (m *Model) moveHighlighted(d layout.Position) {
	item, ok := m.highlighted()
	if !ok {
		return
	}
	f, moved := m.ctl.Move(item.Node.ID, item.Position.Add(d))
	if !moved {
		m.setStatus("Nodes can only be moved in the global view", true)
		return
	}
	m.applyFrame(f)
	p := f.Positions[item.Node.ID]
	m.setStatus(fmt.Sprintf("Moved %s to %.0f,%.0f", item.Node.Name, p.X, p.Y), false)
}

func (m *Model) savePositions() {
	if m.positionsPath == "" {
		m.setStatus("No positions file configured", true)
		return
	}
	p := m.ctl.SavePositions()
	if err := positions.SaveFile(m.positionsPath, p); err != nil {
		m.setStatus(fmt.Sprintf("Save failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Saved %d positions to %s", len(p), m.positionsPath), false)
}

func (m *Model) reloadPositions() {
	if m.positionsPath == "" {
		m.setStatus("No positions file configured", true)
		return
	}
	p, err := positions.LoadFile(m.positionsPath, m.comp.Store().Has)
	if err != nil {
		m.setStatus(fmt.Sprintf("Reload failed: %v", err), true)
		return
	}
	m.applyFrame(m.ctl.ReplacePositions(p))
	m.setStatus(fmt.Sprintf("Reloaded positions (%d nodes)", len(p)), false)
}

func (m *Model) copyIDToClipboard() {
	item, ok := m.highlighted()
	if !ok {
		m.setStatus("❌ No node selected", true)
		return
	}
	if err := clipboard.WriteAll(item.Node.ID); err != nil {
		m.setStatus(fmt.Sprintf("❌ Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("📋 Copied %s to clipboard", item.Node.ID), false)
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

func (m *Model) clearStatus() {
	m.statusMsg = ""
	m.statusIsError = false
}

// applyFrame shows f unless a newer frame is already showing.
func (m *Model) applyFrame(f view.Frame) {
	if f.Generation < m.frame.Generation {
		debug.Log("ui: dropping stale frame %d (showing %d)", f.Generation, m.frame.Generation)
		return
	}
	keep := ""
	if item, ok := m.highlighted(); ok {
		keep = item.Node.ID
	}
	m.frame = f

	nodes := frameItems(m.comp.Store(), f)
	items := make([]list.Item, len(nodes))
	cursor, keepIdx := -1, -1
	for i, n := range nodes {
		items[i] = n
		switch n.Node.ID {
		case f.Selected:
			cursor = i
		case f.Focus:
			if cursor < 0 {
				cursor = i
			}
		case keep:
			keepIdx = i
		}
	}
	if cursor < 0 {
		cursor = max(keepIdx, 0)
	}
	m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(cursor)
	}
	m.updatePanel()
}

// updatePanel renders the frame's panel node into the viewport.
func (m *Model) updatePanel() {
	md := panel.Placeholder
	if id := m.frame.PanelNode(); id != "" {
		md = panel.Markdown(m.comp.Store(), id)
	}
	m.panelMarkdown = md
	m.viewport.SetContent(m.renderer.Render(md))
	m.viewport.GotoTop()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	bodyHeight := height - 2 // header and footer rows
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	// Two bordered panels, 2 columns of border each.
	avail := width - 4
	if avail < 20 {
		avail = 20
	}
	listWidth := int(float64(avail) * m.listRatio)
	detailWidth := avail - listWidth

	m.list.SetSize(listWidth, bodyHeight-2)
	m.viewport.Width = detailWidth
	m.viewport.Height = bodyHeight - 2

	wrap := detailWidth - 2
	if m.wordWrap > 0 && m.wordWrap < wrap {
		wrap = m.wordWrap
	}
	m.renderer.SetWidth(wrap)
	if m.frame.Generation > 0 {
		m.updatePanel()
	}
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	if !m.ready {
		return "Initializing..."
	}

	listStyle, detailStyle := FocusedPanelStyle, PanelStyle
	if m.focused == paneDetail {
		listStyle, detailStyle = PanelStyle, FocusedPanelStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Render(m.list.View()),
		detailStyle.Render(m.viewport.View()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

// renderHeader shows where in the view hierarchy the explorer is.
func (m Model) renderHeader() string {
	t := m.theme
	crumbs := "Global"
	if m.frame.Focus != "" {
		name := m.frame.Focus
		if n, ok := m.comp.Store().Node(m.frame.Focus); ok {
			name = n.Name
		}
		label := "Pipeline"
		if m.frame.Mode == view.DataFlowFocus {
			label = "Data flow"
		}
		crumbs += t.SecondaryText.Render(" › ") + label + ": " + name
	}
	s := m.comp.Store()
	counts := fmt.Sprintf("%d/%d nodes", m.frame.Active.Nodes.Len(), s.NodeCount())
	return t.Header.Render("pitgraph") + " " + crumbs + "  " + t.MutedText.Render(counts)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		if m.statusIsError {
			return StatusErrorStyle.Render(m.statusMsg)
		}
		return StatusBarStyle.Render(m.statusMsg)
	}
	hints := []string{"enter", "open"}
	if m.frame.BackEnabled() {
		hints = append(hints, "esc", "back")
	}
	hints = append(hints, "tab", "panel", "y", "copy id", "/", "filter")
	if m.frame.Mode == view.Global {
		hints = append(hints, "shift+←↑↓→", "move")
	}
	if m.positionsPath != "" {
		hints = append(hints, "s", "save", "r", "reload")
	}
	hints = append(hints, "q", "quit")
	return renderKeyHints(hints...)
}

// Frame returns the frame being shown.
func (m Model) Frame() view.Frame { return m.frame }

// SelectedNode returns the selected node, if any.
func (m Model) SelectedNode() (model.Node, bool) {
	if m.frame.Selected == "" {
		return model.Node{}, false
	}
	return m.comp.Store().Node(m.frame.Selected)
}
