package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// NodeLookup resolves node ids. *graph.Store satisfies it.
type NodeLookup interface {
	Node(id string) (model.Node, bool)
}

// EdgeLookup resolves edge and node ids. *graph.Store satisfies it.
type EdgeLookup interface {
	NodeLookup
	Edge(id string) (model.Edge, bool)
}

// Names maps a set of node ids to their sorted display names. Unknown ids are
// reported as "?<id>".
func Names(lookup NodeLookup, ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		if n, ok := lookup.Node(id); ok {
			out = append(out, n.Name)
		} else {
			out = append(out, "?"+id)
		}
	}
	sort.Strings(out)
	return out
}

// EdgeNames maps a set of edge ids to sorted "Source->Target" name pairs.
func EdgeNames(lookup EdgeLookup, ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		e, ok := lookup.Edge(id)
		if !ok {
			out = append(out, "?"+id)
			continue
		}
		src, _ := lookup.Node(e.Source)
		dst, _ := lookup.Node(e.Target)
		out = append(out, src.Name+"->"+dst.Name)
	}
	sort.Strings(out)
	return out
}

// AssertNodeNames verifies a node set by display name.
func AssertNodeNames(t *testing.T, lookup NodeLookup, ids map[string]struct{}, want ...string) {
	t.Helper()
	assertStrings(t, "nodes", Names(lookup, ids), want)
}

// AssertEdgeNames verifies an edge set by "Source->Target" display names.
func AssertEdgeNames(t *testing.T, lookup EdgeLookup, ids map[string]struct{}, want ...string) {
	t.Helper()
	assertStrings(t, "edges", EdgeNames(lookup, ids), want)
}

func assertStrings(t *testing.T, what string, got, want []string) {
	t.Helper()
	want = append([]string(nil), want...)
	sort.Strings(want)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("%s mismatch:\nexpected: %v\nactual:   %v", what, want, got)
	}
}

// AssertErrorIs verifies errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Errorf("expected error wrapping %v, got %v", target, err)
	}
}

// AssertJSONEqual compares two values after JSON encoding.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file, or rewrites it
// when GENERATE_GOLDEN is set.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()
	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}
	if string(expected) == actual {
		return
	}
	expectedLines := strings.Split(string(expected), "\n")
	actualLines := strings.Split(actual, "\n")
	for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}
		if expLine != actLine {
			g.t.Errorf("golden file %s mismatch at line %d:\nexpected: %s\nactual:   %s", g.name, i+1, expLine, actLine)
			return
		}
	}
}

// WriteFile writes data under dir and returns the path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
