// Package positions reads and writes the saved node-positions file: a JSON
// object mapping node id to {"x": .., "y": ..}.
package positions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/watcher"
)

// FileName is the default name of the positions file.
const FileName = "positions.json"

type entry struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// Load decodes a positions document. Coordinates are rounded to the nearest
// 10. Entries for ids that known rejects, and entries without two numeric
// coordinates, are skipped. A nil known accepts every id.
func Load(r io.Reader, known func(id string) bool) (layout.Positions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	out := layout.Positions{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	skipped := 0
	for id, msg := range raw {
		if known != nil && !known(id) {
			skipped++
			continue
		}
		var e entry
		if err := json.Unmarshal(msg, &e); err != nil || e.X == nil || e.Y == nil {
			skipped++
			continue
		}
		out[id] = layout.Position{X: layout.RoundTo10(*e.X), Y: layout.RoundTo10(*e.Y)}
	}
	debug.LogIf(skipped > 0, "positions: skipped %d entries", skipped)
	return out, nil
}

// LoadFile is Load on a file. A missing file yields an empty map.
func LoadFile(path string, known func(id string) bool) (layout.Positions, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return layout.Positions{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Load(f, known)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes p as JSON indented by two spaces with keys in sorted order.
func Save(w io.Writer, p layout.Positions) error {
	if p == nil {
		p = layout.Positions{}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SaveFile writes p to path atomically (temp file + rename) so a watcher
// never sees a half-written file.
func SaveFile(path string, p layout.Positions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Save(tmp, p); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Watch reloads path whenever it changes and passes the result to onChange.
// Load failures are passed to onError, which may be nil. The returned
// watcher is already started; stop it with Stop or by cancelling ctx.
func Watch(ctx context.Context, path string, known func(id string) bool, onChange func(layout.Positions), onError func(error), opts ...watcher.Option) (*watcher.Watcher, error) {
	if onError == nil {
		onError = func(error) {}
	}
	reload := func() {
		p, err := LoadFile(path, known)
		if err != nil {
			onError(err)
			return
		}
		onChange(p)
	}
	opts = append([]watcher.Option{
		watcher.WithOnChange(reload),
		watcher.WithOnError(onError),
	}, opts...)

	w, err := watcher.New(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
