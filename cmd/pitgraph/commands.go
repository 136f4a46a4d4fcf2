package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/vanderheijden86/pitgraph/internal/datasource"
	"github.com/vanderheijden86/pitgraph/pkg/config"
	"github.com/vanderheijden86/pitgraph/pkg/export"
	"github.com/vanderheijden86/pitgraph/pkg/hooks"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/positions"
	"github.com/vanderheijden86/pitgraph/pkg/ui"
	"github.com/vanderheijden86/pitgraph/pkg/version"
	"github.com/vanderheijden86/pitgraph/pkg/view"
)

// newFlagSet returns a flag set that reports to the app's stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("pitgraph "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return errUsage
	}
	return nil
}

// savedPositions loads the positions file. A broken file is reported and
// ignored so the layout falls back to the computed one.
func (a *app) savedPositions() layout.Positions {
	path := a.cfg.Positions()
	p, err := positions.LoadFile(path, a.comp.Store().Has)
	if err != nil {
		fmt.Fprintf(a.stderr, "Warning: ignoring positions file: %v\n", err)
		return nil
	}
	return p
}

// output opens path for writing; "-" is stdout.
func (a *app) output(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return a.stdout, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func (a *app) wrote(path string) {
	if path != "-" {
		fmt.Fprintf(a.stdout, "Wrote %s\n", path)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runExplore(a *app, args []string) error {
	fs := a.newFlagSet("explore")
	noWatch := fs.Bool("no-watch", false, "do not reload when the positions file changes")
	if err := parse(fs, args); err != nil {
		return err
	}

	m := ui.NewModel(a.comp, a.savedPositions(), ui.Options{
		PositionsPath: a.cfg.Positions(),
		UI:            a.cfg.UI,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !*noWatch {
		if err := m.WatchPositions(ctx); err != nil {
			// Non-fatal: explore without live reload
			fmt.Fprintf(a.stderr, "Warning: %v\n", err)
		}
	}
	defer m.Stop()

	return runTUIProgram(m)
}

func runBundle(a *app, args []string) error {
	fs := a.newFlagSet("bundle")
	dir := fs.String("o", a.cfg.Export.OutputDir, "output directory")
	title := fs.String("title", a.cfg.Export.ViewerTitle, "viewer and report title")
	format := fs.String("format", a.cfg.Export.SnapshotFormat, "snapshot format: svg or png")
	wizard := fs.Bool("wizard", false, "choose the settings interactively")
	noHooks := fs.Bool("no-hooks", false, "skip the hooks in "+filepath.Join(hooks.Dir, hooks.FileName))
	if err := parse(fs, args); err != nil {
		return err
	}

	settings := config.ExportConfig{OutputDir: *dir, ViewerTitle: *title, SnapshotFormat: *format}
	var w *export.Wizard
	if *wizard {
		w = export.NewWizard(settings)
		chosen, remember, err := w.Run()
		if err != nil {
			return err
		}
		settings = chosen
		if remember {
			a.cfg.Export = chosen
			if err := a.saveConfig(); err != nil {
				fmt.Fprintf(a.stderr, "Warning: settings not saved: %v\n", err)
			}
		}
	}

	hookCtx := hooks.ExportContext{
		ExportDir:      settings.OutputDir,
		SnapshotFormat: settings.SnapshotFormat,
		NodeCount:      a.comp.Store().NodeCount(),
		Timestamp:      time.Now(),
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	executor, err := hooks.RunHooks(cwd, hookCtx, *noHooks)
	if err != nil {
		return err
	}
	if executor != nil {
		err := executor.RunPreExport()
		fmt.Fprint(a.stderr, executor.Summary())
		if err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()
	res, err := export.Bundle(ctx, export.BundleOptions{
		Dir:            settings.OutputDir,
		Title:          settings.ViewerTitle,
		Declarations:   a.decls.Flows,
		Computer:       a.comp,
		Positions:      a.savedPositions(),
		SnapshotFormat: settings.SnapshotFormat,
	})
	if err != nil {
		return err
	}

	if w != nil {
		w.PrintSuccess(res)
	} else {
		fmt.Fprintf(a.stdout, "Wrote %d files (%d views) from %s to %s\n", len(res.Files), res.Frames, a.sourceLabel(), res.Dir)
		for _, f := range res.Files {
			fmt.Fprintf(a.stdout, "  %s\n", f)
		}
	}

	if executor == nil {
		return nil
	}
	done := len(executor.Results())
	hookCtx.FileCount = len(res.Files)
	executor.SetContext(hookCtx)
	err = executor.RunPostExport()
	for _, r := range executor.Results()[done:] {
		if !r.Success {
			fmt.Fprintf(a.stderr, "Warning: post-export hook %s failed: %v\n", r.Hook.Name, r.Error)
		}
	}
	return err
}

func runViewer(a *app, args []string) error {
	fs := a.newFlagSet("viewer")
	out := fs.String("o", filepath.Join(a.cfg.Export.OutputDir, export.ViewerFileName), "output file")
	title := fs.String("title", a.cfg.Export.ViewerTitle, "page title")
	if err := parse(fs, args); err != nil {
		return err
	}

	frames, err := view.Precompute(a.comp, a.savedPositions())
	if err != nil {
		return err
	}
	path, err := export.WriteViewerHTML(export.ViewerOptions{
		Title:  *title,
		Store:  a.comp.Store(),
		Frames: frames,
		Path:   *out,
	})
	if err != nil {
		return err
	}
	a.wrote(path)
	return nil
}

func runPublicTable(a *app, args []string) error {
	fs := a.newFlagSet("public-table")
	out := fs.String("o", "-", "output file, - for stdout")
	format := fs.String("format", "markdown", "markdown or html")
	if err := parse(fs, args); err != nil {
		return err
	}

	var body string
	switch strings.ToLower(*format) {
	case "markdown", "md":
		body = export.PublicTableMarkdown(a.decls.Flows)
	case "html":
		var err error
		if body, err = export.GeneratePublicTableHTML(a.decls.Flows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (want markdown or html)", *format)
	}
	return a.writeText(*out, body)
}

func runSnapshot(a *app, args []string) error {
	fs := a.newFlagSet("snapshot")
	out := fs.String("o", "", "output file (default global.<format> in the output directory)")
	format := fs.String("format", "", "svg or png (default from -o, then config)")
	focusRef := fs.String("focus", "", "pipeline or data-flow id or name to focus")
	title := fs.String("title", a.cfg.Export.ViewerTitle, "header title")
	if err := parse(fs, args); err != nil {
		return err
	}

	ctl := view.NewController(a.comp, a.savedPositions())
	name := "global"
	if *focusRef != "" {
		n, err := resolveNode(a.comp.Store(), *focusRef)
		if err != nil {
			return err
		}
		if !view.IsFocusable(n.Kinds) {
			return fmt.Errorf("node %q (%s) has no focus view", n.Name, n.Kinds)
		}
		if _, err := ctl.Click(n.ID); err != nil {
			return err
		}
		name = n.Name
	}

	path := *out
	if path == "" {
		ext := *format
		if ext == "" {
			ext = a.cfg.Export.SnapshotFormat
		}
		path = filepath.Join(a.cfg.Export.OutputDir, snapshotName(name)+"."+strings.ToLower(ext))
	}
	err := export.SaveGraphSnapshot(export.GraphSnapshotOptions{
		Path:   path,
		Format: *format,
		Title:  *title,
		Graph:  a.comp.Store(),
		Frame:  ctl.Current(),
	})
	if err != nil {
		return err
	}
	a.wrote(path)
	return nil
}

// snapshotName turns a node name into a file name stem.
func snapshotName(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
		} else if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(sb.String(), "-")
	if s == "" {
		return "snapshot"
	}
	return s
}

func runGraph(a *app, args []string) error {
	fs := a.newFlagSet("graph")
	format := fs.String("format", "json", "json, dot or mermaid")
	focusRef := fs.String("focus", "", "pipeline or data-flow id or name to focus")
	all := fs.Bool("all", false, "every node and edge, ignoring -focus")
	out := fs.String("o", "-", "output file, - for stdout")
	if err := parse(fs, args); err != nil {
		return err
	}

	cfg := export.GraphExportConfig{Format: export.GraphExportFormat(strings.ToLower(*format)), All: *all}
	if *focusRef != "" && !*all {
		n, err := resolveNode(a.comp.Store(), *focusRef)
		if err != nil {
			return err
		}
		cfg.Focus = n.ID
	}
	res, err := export.ExportGraph(a.comp, cfg)
	if err != nil {
		return err
	}

	body := res.Graph
	if res.Adjacency != nil {
		data, err := res.JSON()
		if err != nil {
			return err
		}
		body = string(data) + "\n"
	}
	return a.writeText(*out, body)
}

func runReport(a *app, args []string) error {
	fs := a.newFlagSet("report")
	out := fs.String("o", "-", "output file, - for stdout")
	title := fs.String("title", a.cfg.Export.ViewerTitle, "report title")
	if err := parse(fs, args); err != nil {
		return err
	}
	md, err := export.GenerateMarkdown(a.comp, *title)
	if err != nil {
		return err
	}
	return a.writeText(*out, md)
}

func runDump(a *app, args []string) error {
	fs := a.newFlagSet("dump")
	format := fs.String("format", "yaml", "yaml or json")
	out := fs.String("o", "-", "output file, - for stdout")
	if err := parse(fs, args); err != nil {
		return err
	}

	var typ datasource.SourceType
	switch strings.ToLower(*format) {
	case "yaml", "yml":
		typ = datasource.SourceTypeYAML
	case "json":
		typ = datasource.SourceTypeJSON
	default:
		return fmt.Errorf("unsupported format %q (want yaml or json)", *format)
	}

	w, closeFn, err := a.output(*out)
	if err != nil {
		return err
	}
	if err := datasource.Encode(w, a.decls, typ); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	a.wrote(*out)
	return nil
}

// errSourcesDiffer makes diff exit non-zero when the sources disagree.
var errSourcesDiffer = errors.New("sources differ")

func runDiff(a *app, args []string) error {
	fs := a.newFlagSet("diff")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fmt.Fprintln(a.stderr, "usage: pitgraph diff <source-a> [source-b]  (\"compiled\" names the built-in dataset; source-b defaults to it)")
		return errUsage
	}
	refs := append(append([]string{}, fs.Args()...), "compiled")
	srcA, err := detectSource(refs[0])
	if err != nil {
		return err
	}
	srcB, err := detectSource(refs[1])
	if err != nil {
		return err
	}

	diff, err := datasource.CompareSources(srcA, srcB)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, strings.TrimRight(diff.Summary(), "\n"))
	if diff.HasInconsistencies() {
		return errSourcesDiffer
	}
	return nil
}

func detectSource(ref string) (datasource.Source, error) {
	if ref == "compiled" {
		return datasource.Compiled, nil
	}
	return datasource.Detect(ref)
}

func runVersion(a *app, args []string) error {
	fmt.Fprintf(a.stdout, "pitgraph %s\n", version.Version)
	return nil
}

// sourceLabel names where the declarations came from without the file stats.
func (a *app) sourceLabel() string {
	if a.source.Path == "" {
		return a.source.String()
	}
	return filepath.Base(a.source.Path)
}

// saveConfig writes the config back where it was read from.
func (a *app) saveConfig() error {
	if a.configPath != "" {
		return config.SaveTo(a.cfg, a.configPath)
	}
	return config.Save(a.cfg)
}

func (a *app) writeText(path, body string) error {
	w, closeFn, err := a.output(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	a.wrote(path)
	return nil
}
