package export

// Interactive setup for `pitgraph bundle --wizard`.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/vanderheijden86/pitgraph/pkg/config"
)

// Wizard asks for the bundle settings, starting from the saved export
// configuration.
type Wizard struct {
	cfg      config.ExportConfig
	remember bool
	out      io.Writer
}

// NewWizard creates a wizard seeded with defaults.
func NewWizard(defaults config.ExportConfig) *Wizard {
	return &Wizard{cfg: defaults, out: os.Stdout}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run collects the settings. The second result reports whether the user
// asked to keep them in the config file.
func (w *Wizard) Run() (config.ExportConfig, bool, error) {
	w.printBanner()

	title := w.cfg.ViewerTitle
	dir := w.cfg.OutputDir
	format := strings.ToLower(w.cfg.SnapshotFormat)
	if format == "" {
		format = config.FormatSVG
	}

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Viewer title").
				Value(&title).
				Placeholder(defaultViewerTitle),
			huh.NewInput().
				Title("Output directory").
				Value(&dir).
				Placeholder(config.DefaultConfig().Export.OutputDir).
				Validate(validateOutputDir),
			huh.NewSelect[string]().
				Title("Snapshot format").
				Options(
					huh.NewOption("SVG (scalable, small)", config.FormatSVG),
					huh.NewOption("PNG (raster)", config.FormatPNG),
				).
				Value(&format),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Remember these settings?").
				Description("Writes them to " + config.ConfigPath()).
				Value(&w.remember),
		),
	)
	if err := form.Run(); err != nil {
		return w.cfg, false, err
	}

	w.cfg = normalizeExportConfig(config.ExportConfig{
		OutputDir:      dir,
		ViewerTitle:    title,
		SnapshotFormat: format,
	})
	fmt.Fprintln(w.out)
	return w.cfg, w.remember, nil
}

// normalizeExportConfig fills blanks with defaults.
func normalizeExportConfig(c config.ExportConfig) config.ExportConfig {
	def := config.DefaultConfig().Export
	c.ViewerTitle = strings.TrimSpace(c.ViewerTitle)
	if c.ViewerTitle == "" {
		c.ViewerTitle = def.ViewerTitle
	}
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	c.SnapshotFormat = strings.ToLower(strings.TrimSpace(c.SnapshotFormat))
	if c.SnapshotFormat == "" {
		c.SnapshotFormat = def.SnapshotFormat
	}
	return c
}

// validateOutputDir rejects a path that exists and is not a directory.
func validateOutputDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func (w *Wizard) printBanner() {
	fmt.Fprint(w.out, box([]string{
		"pitgraph bundle",
		"Writes the viewer, public table, database,",
		"graph exports and a snapshot to one directory.",
		"",
		"Press Ctrl+C anytime to cancel",
	}))
}

// PrintSuccess reports a finished bundle.
func (w *Wizard) PrintSuccess(res *BundleResult) {
	lines := []string{"Bundle written", "Directory: " + res.Dir}
	for _, f := range res.Files {
		lines = append(lines, "  "+f)
	}
	lines = append(lines, "", "Open "+filepath.Join(res.Dir, ViewerFileName)+" in a browser.")
	fmt.Fprint(w.out, box(lines))
}

// box frames lines, centering the first as a title.
func box(lines []string) string {
	width := 50
	for _, l := range lines {
		if n := runewidth.StringWidth(l) + 4; n > width {
			width = n
		}
	}
	bar := strings.Repeat("═", width)

	var sb strings.Builder
	sb.WriteString("\n╔" + bar + "╗\n")
	title := lines[0]
	pad := (width - runewidth.StringWidth(title)) / 2
	sb.WriteString("║" + strings.Repeat(" ", pad) + title + strings.Repeat(" ", width-pad-runewidth.StringWidth(title)) + "║\n")
	sb.WriteString("╠" + bar + "╣\n")
	for _, l := range lines[1:] {
		sb.WriteString("║  " + l + strings.Repeat(" ", width-2-runewidth.StringWidth(l)) + "║\n")
	}
	sb.WriteString("╚" + bar + "╝\n\n")
	return sb.String()
}
