// Command pitgraph explores the RGES-PIT data-flow graph in the terminal and
// exports it as a browser viewer, snapshots, tables and graph files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/vanderheijden86/pitgraph/internal/datasource"
	"github.com/vanderheijden86/pitgraph/pkg/config"
	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/focus"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
	"github.com/vanderheijden86/pitgraph/pkg/model"
	"github.com/vanderheijden86/pitgraph/pkg/version"
)

// errUsage marks a bad command line; the message has already been printed.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globals are the flags accepted before the command name.
type globals struct {
	configPath     string
	dataPath       string
	positionsPath  string
	publicAsSource bool
	randomIDs      bool
	debug          bool
	cpuProfile     string
	stats          bool
}

// app is what every command works from.
type app struct {
	cfg        config.Config
	configPath string // set when -config names the file
	decls      datasource.Declarations
	source     datasource.Source
	comp       *focus.Computer
	stdout     io.Writer
	stderr     io.Writer
}

type command struct {
	name    string
	summary string
	run     func(a *app, args []string) error
	// needsGraph is false for commands that work without the config and
	// the data source.
	needsGraph bool
}

var commands = []command{
	{"explore", "browse the graph in the terminal (default)", runExplore, true},
	{"bundle", "write viewer, tables, database and snapshots to a directory", runBundle, true},
	{"viewer", "write the self-contained HTML viewer", runViewer, true},
	{"public-table", "write the table of data released to Public", runPublicTable, true},
	{"snapshot", "render one view as SVG or PNG", runSnapshot, true},
	{"graph", "print a view as JSON, DOT or Mermaid", runGraph, true},
	{"report", "write a Markdown report of every pipeline and flow", runReport, true},
	{"dump", "print the declarations as YAML or JSON", runDump, true},
	{"diff", "compare two declaration sources", runDiff, false},
	{"version", "print the version", runVersion, false},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func run(args []string, stdout, stderr io.Writer) int {
	var g globals
	fs := flag.NewFlagSet("pitgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	fs.StringVar(&g.dataPath, "data", "", "load declarations from a YAML, JSON or SQLite file instead of the built-in dataset")
	fs.StringVar(&g.positionsPath, "positions", "", "saved global positions file (default from config)")
	fs.BoolVar(&g.publicAsSource, "public-as-source", false, "let Public act as a data-flow source")
	fs.BoolVar(&g.randomIDs, "random-ids", false, "give tree elements random ids instead of content-derived ones")
	fs.BoolVar(&g.debug, "debug", false, "log to stderr (same as "+debug.EnvVar+"=1)")
	fs.StringVar(&g.cpuProfile, "cpu-profile", "", "write a CPU profile to file")
	fs.BoolVar(&g.stats, "stats", false, "print timing metrics to stderr on exit")
	versionFlag := fs.Bool("version", false, "show version")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "pitgraph %s\n", version.Version)
		return 0
	}
	if g.debug {
		debug.SetEnabled(true)
		debug.SetOutput(stderr)
	}

	if g.cpuProfile != "" {
		f, err := os.Create(g.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if g.stats {
		metrics.SetEnabled(true)
		defer func() {
			if stats := metrics.AllTimingStats(); len(stats) > 0 {
				_ = metrics.WriteTable(stderr, stats)
			}
		}()
	}

	rest := fs.Args()
	name := "explore"
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "pitgraph: unknown command %q\n\n", name)
		printUsage(stderr, fs)
		return 2
	}

	debug.Section(name)
	a := &app{stdout: stdout, stderr: stderr, configPath: g.configPath}
	if cmd.needsGraph {
		if err := a.loadConfig(g); err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
		if err := a.loadGraph(g); err != nil {
			fmt.Fprintf(stderr, "Error loading data: %v\n", err)
			return 1
		}
	}

	if err := cmd.run(a, rest); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "pitgraph %s: %v\n", name, err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: pitgraph [options] [command] [command options]")
	fmt.Fprintln(w, "\nExplore and export the RGES-PIT data-flow graph.")
	fmt.Fprintln(w, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-13s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nOptions:")
	fs.PrintDefaults()
}

// loadConfig reads the config file and applies the global flag overrides.
func (a *app) loadConfig(g globals) error {
	var (
		cfg config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFrom(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if g.dataPath != "" {
		cfg.DataPath = g.dataPath
	}
	if g.positionsPath != "" {
		cfg.PositionsPath = g.positionsPath
	}
	if g.publicAsSource {
		cfg.PublicAsSource = true
	}
	debug.Dump("config", cfg)
	a.cfg = cfg
	return nil
}

func (a *app) loadGraph(g globals) error {
	decls, src, err := datasource.LoadPath(a.cfg.DataPath)
	if err != nil {
		return err
	}
	var opts []graph.BuildOption
	if !g.randomIDs {
		opts = append(opts, graph.WithContentDerivedIDs())
	}
	s, err := decls.Build(opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	debug.Log("pitgraph: loaded %s: %d nodes, %d edges", src, s.NodeCount(), s.EdgeCount())

	a.decls = decls
	a.source = src
	a.comp = focus.NewComputer(s, focus.Policy{PublicAsSource: a.cfg.PublicAsSource})
	return nil
}

// resolveNode accepts a node id or, failing that, a pipeline or data-flow
// name.
func resolveNode(s *graph.Store, ref string) (model.Node, error) {
	if n, ok := s.Node(ref); ok {
		return n, nil
	}
	var matches []model.Node
	for _, n := range s.Nodes() {
		if strings.EqualFold(n.Name, ref) && (n.IsPipeline() || n.Is(model.KindDataFlow)) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return model.Node{}, &focus.UnknownNodeError{ID: ref}
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, n := range matches {
		ids[i] = n.ID
	}
	return model.Node{}, fmt.Errorf("%q is ambiguous: %s", ref, strings.Join(ids, ", "))
}
