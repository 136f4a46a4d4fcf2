package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vanderheijden86/pitgraph/pkg/config"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/positions"
	"github.com/vanderheijden86/pitgraph/pkg/testutil"
)

func TestBundle(t *testing.T) {
	decls := publicFixture()
	c := newComputer(t, decls)
	dir := filepath.Join(t.TempDir(), "bundle")
	saved := layout.Positions{graph.PipelineID("Alerts"): {X: 33, Y: 47}}

	res, err := Bundle(context.Background(), BundleOptions{
		Dir:          dir,
		Title:        "Bundle Test",
		Declarations: decls,
		Computer:     c,
		Positions:    saved,
	})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	want := []string{
		"global.svg",
		"graph.dot",
		"graph.json",
		"graph.mmd",
		ViewerFileName,
		SQLiteFileName,
		positions.FileName,
		PublicTableFileName,
		ReportFileName,
	}
	if len(res.Files) != len(want) {
		t.Errorf("wrote %v", res.Files)
	}
	for _, name := range want {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	for i := 1; i < len(res.Files); i++ {
		if res.Files[i-1] > res.Files[i] {
			t.Errorf("files not sorted: %v", res.Files)
			break
		}
	}
	// global plus Alerts, Modeling, Public and the three flows
	if res.Frames != 7 {
		t.Errorf("frames = %d, want 7", res.Frames)
	}

	got, err := positions.LoadFile(filepath.Join(dir, positions.FileName), c.Store().Has)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if p := got[graph.PipelineID("Alerts")]; p.X != 30 || p.Y != 50 {
		t.Errorf("saved position not carried: %+v", p)
	}

	page, err := os.ReadFile(filepath.Join(dir, ViewerFileName))
	if err != nil || !bytes.Contains(page, []byte("<title>Bundle Test</title>")) {
		t.Errorf("viewer title missing (%v)", err)
	}
}

func TestBundle_Errors(t *testing.T) {
	if _, err := Bundle(context.Background(), BundleOptions{Dir: t.TempDir()}); err == nil {
		t.Error("expected error without a graph")
	}
	c := newComputer(t, testutil.ChainFixture())
	if _, err := Bundle(context.Background(), BundleOptions{Computer: c}); err == nil {
		t.Error("expected error without a directory")
	}
	_, err := Bundle(context.Background(), BundleOptions{Dir: t.TempDir(), Computer: c, SnapshotFormat: "gif"})
	if err == nil || !strings.Contains(err.Error(), "global.gif") {
		t.Errorf("bad snapshot format: %v", err)
	}
}

func TestBundle_Cancelled(t *testing.T) {
	c := newComputer(t, testutil.ChainFixture())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Bundle(ctx, BundleOptions{Dir: t.TempDir(), Computer: c}); err == nil {
		t.Error("expected error from a cancelled context")
	}
}

func TestGenerateMarkdown(t *testing.T) {
	c := newComputer(t, testutil.SiblingFixture())
	md, err := GenerateMarkdown(c, "Siblings")
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}
	for _, want := range []string{
		"# Siblings\n",
		"| Working groups | 2 |",
		"| External groups | 1 |",
		"| Data flows | 2 |",
		"| Data leaves | 4 |",
		"- [A](#a)",
		"- [f1](#f1)",
		"```mermaid\ngraph LR\n",
		`<a id="f2"></a>`,
		"### Sends",
		"- [f2](#f2)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	counts := map[string]int{}
	got := []string{
		uniqueSlug(createSlug("Light Curves"), counts),
		uniqueSlug(createSlug("light curves!"), counts),
		uniqueSlug(createSlug("***"), counts),
		uniqueSlug(createSlug("Light-Curves"), counts),
	}
	want := []string{"light-curves", "light-curves-1", "section", "light-curves-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeExportConfig(t *testing.T) {
	def := config.DefaultConfig().Export
	got := normalizeExportConfig(config.ExportConfig{SnapshotFormat: " PNG "})
	if got.OutputDir != def.OutputDir || got.ViewerTitle != def.ViewerTitle || got.SnapshotFormat != "png" {
		t.Errorf("got %+v", got)
	}
	got = normalizeExportConfig(config.ExportConfig{OutputDir: " out ", ViewerTitle: "T"})
	if got.OutputDir != "out" || got.ViewerTitle != "T" || got.SnapshotFormat != def.SnapshotFormat {
		t.Errorf("got %+v", got)
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFile(t, dir, "file.txt", []byte("x"))
	if err := validateOutputDir(dir); err != nil {
		t.Errorf("existing dir: %v", err)
	}
	if err := validateOutputDir(filepath.Join(dir, "new")); err != nil {
		t.Errorf("missing dir: %v", err)
	}
	if err := validateOutputDir(file); err == nil {
		t.Error("expected error for a file")
	}
}

func TestWizardPrintSuccess(t *testing.T) {
	var buf bytes.Buffer
	w := NewWizard(config.DefaultConfig().Export)
	w.out = &buf
	w.PrintSuccess(&BundleResult{Dir: "out", Files: []string{"index.html", "public.html"}})

	out := strings.TrimSpace(buf.String())
	lines := strings.Split(out, "\n")
	width := utf8.RuneCountInString(lines[0])
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n != width {
			t.Errorf("ragged box line (%d vs %d): %q", n, width, l)
		}
	}
	for _, want := range []string{"Bundle written", "Directory: out", "  public.html", filepath.Join("out", ViewerFileName)} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}
