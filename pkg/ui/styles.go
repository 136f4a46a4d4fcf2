package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Chrome colors shared by every theme. Node colors live on Theme.
var (
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary     = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo        = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorDanger      = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

var (
	// PanelStyle frames the pane without keyboard focus.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle frames the pane with keyboard focus.
	FocusedPanelStyle = PanelStyle.
				BorderForeground(ColorPrimary)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext).
			Background(ColorBgSubtle).
			Padding(0, 1)

	StatusErrorStyle = StatusBarStyle.
				Foreground(ColorDanger).
				Bold(true)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// renderKeyHints renders "key desc" pairs separated by two spaces.
func renderKeyHints(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, HelpKeyStyle.Render(pairs[i])+" "+HelpDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
