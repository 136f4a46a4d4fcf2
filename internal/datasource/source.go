// Package datasource locates and loads data-flow declarations: the compiled
// RGES-PIT dataset by default, or a YAML, JSON or SQLite file with the same
// content.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies where declarations come from.
type SourceType string

const (
	SourceTypeCompiled SourceType = "compiled"
	SourceTypeYAML     SourceType = "yaml"
	SourceTypeJSON     SourceType = "json"
	// SourceTypeSQLite is a database written by the SQLite exporter.
	SourceTypeSQLite SourceType = "sqlite"
)

// Source describes one declaration source.
type Source struct {
	Type    SourceType `json:"type"`
	Path    string     `json:"path,omitempty"`
	ModTime time.Time  `json:"mod_time,omitempty"`
	Size    int64      `json:"size,omitempty"`
}

func (s Source) String() string {
	if s.Type == SourceTypeCompiled {
		return "compiled dataset"
	}
	return fmt.Sprintf("%s (%s, %d bytes, modified %s)", s.Path, s.Type, s.Size, s.ModTime.Format(time.RFC3339))
}

// Compiled is the built-in dataset.
var Compiled = Source{Type: SourceTypeCompiled}

// Detect returns the source for path. An empty path selects the compiled
// dataset; otherwise the file must exist and its extension picks the format.
func Detect(path string) (Source, error) {
	if path == "" {
		return Compiled, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Source{}, fmt.Errorf("data source: %w", err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("data source %s is a directory", abs)
	}

	src := Source{Path: abs, ModTime: info.ModTime(), Size: info.Size()}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".yaml", ".yml":
		src.Type = SourceTypeYAML
	case ".json":
		src.Type = SourceTypeJSON
	case ".db", ".sqlite", ".sqlite3":
		src.Type = SourceTypeSQLite
	default:
		return Source{}, fmt.Errorf("data source %s: unknown extension (want .yaml, .yml, .json or .db)", abs)
	}
	return src, nil
}
