package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/positions"
	"github.com/vanderheijden86/pitgraph/pkg/view"
)

// BundleOptions configures a full export.
type BundleOptions struct {
	Dir            string
	Title          string
	Declarations   []model.DataFlowDeclaration
	Computer       *focus.Computer
	Positions      layout.Positions // saved global positions
	SnapshotFormat string           // "svg" (default) or "png"
}

// BundleResult lists what a bundle export wrote.
type BundleResult struct {
	Dir    string
	Files  []string // relative to Dir, sorted
	Frames int
}

// Bundle writes every artifact into opts.Dir: the viewer page, the public
// data table, the SQLite database, the graph in JSON, DOT and Mermaid, the
// Markdown report, a snapshot of the global view and the global positions
// file. Artifacts are
// written concurrently; the first failure cancels the rest.
func Bundle(ctx context.Context, opts BundleOptions) (*BundleResult, error) {
	if opts.Computer == nil {
		return nil, fmt.Errorf("bundle: no graph")
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("bundle: output dir is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer debug.LogEnterExit("export.Bundle")()
	defer metrics.TimerWithCallback(metrics.BundleWrite, func(d time.Duration) {
		debug.LogTiming("export.Bundle "+opts.Dir, d)
	})()

	frames, err := view.Precompute(opts.Computer, opts.Positions)
	if err != nil {
		return nil, err
	}
	global := frames[0]
	s := opts.Computer.Store()

	format := opts.SnapshotFormat
	if format == "" {
		format = "svg"
	}

	var (
		mu    sync.Mutex
		files []string
	)
	wrote := func(name string) {
		mu.Lock()
		files = append(files, name)
		mu.Unlock()
	}
	path := func(name string) string { return filepath.Join(opts.Dir, name) }

	tasks := []struct {
		name string
		run  func() error
	}{
		{ViewerFileName, func() error {
			_, err := WriteViewerHTML(ViewerOptions{Title: opts.Title, Store: s, Frames: frames, Path: path(ViewerFileName)})
			return err
		}},
		{PublicTableFileName, func() error {
			page, err := GeneratePublicTableHTML(opts.Declarations)
			if err != nil {
				return err
			}
			return os.WriteFile(path(PublicTableFileName), []byte(page), 0o644)
		}},
		{SQLiteFileName, func() error {
			e := NewSQLiteExporter(s, frames, global.Positions)
			e.Title = opts.Title
			return e.Export(path(SQLiteFileName))
		}},
		{"graph.json", func() error { return writeGraph(opts.Computer, GraphFormatJSON, path("graph.json")) }},
		{"graph.dot", func() error { return writeGraph(opts.Computer, GraphFormatDOT, path("graph.dot")) }},
		{"graph.mmd", func() error { return writeGraph(opts.Computer, GraphFormatMermaid, path("graph.mmd")) }},
		{"global." + format, func() error {
			return SaveGraphSnapshot(GraphSnapshotOptions{
				Path:   path("global." + format),
				Format: format,
				Title:  opts.Title,
				Graph:  s,
				Frame:  global,
			})
		}},
		{ReportFileName, func() error { return SaveMarkdownToFile(opts.Computer, opts.Title, path(ReportFileName)) }},
		{positions.FileName, func() error { return positions.SaveFile(path(positions.FileName), global.Positions) }},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := t.run(); err != nil {
				return fmt.Errorf("%s: %w", t.name, err)
			}
			wrote(t.name)
			debug.Log("export: wrote %s", t.name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return &BundleResult{Dir: opts.Dir, Files: files, Frames: len(frames)}, nil
}

func writeGraph(c *focus.Computer, format GraphExportFormat, path string) error {
	res, err := ExportGraph(c, GraphExportConfig{Format: format, All: true})
	if err != nil {
		return err
	}
	if format == GraphFormatJSON {
		data, err := res.JSON()
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(data, '\n'), 0o644)
	}
	return os.WriteFile(path, []byte(res.Graph), 0o644)
}
