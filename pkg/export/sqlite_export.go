package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/version"
	"github.com/vanderheijden86/pitgraph/pkg/view"

	_ "modernc.org/sqlite"
)

// SQLiteFileName is the database name used inside export bundles.
const SQLiteFileName = "pitgraph.sqlite3"

// SQLiteExporter writes the graph, the saved global positions and the
// precomputed views to a SQLite database.
type SQLiteExporter struct {
	Store     *graph.Store
	Frames    []view.Frame
	Positions layout.Positions
	Title     string

	now func() time.Time
}

// NewSQLiteExporter creates an exporter for s.
func NewSQLiteExporter(s *graph.Store, frames []view.Frame, positions layout.Positions) *SQLiteExporter {
	return &SQLiteExporter{Store: s, Frames: frames, Positions: positions, now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if e.Store == nil {
		return fmt.Errorf("no graph to export")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertNodes(db); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	if err := e.insertEdges(db); err != nil {
		return fmt.Errorf("insert edges: %w", err)
	}
	if err := e.insertPositions(db); err != nil {
		return fmt.Errorf("insert positions: %w", err)
	}
	if err := e.insertFrames(db); err != nil {
		return fmt.Errorf("insert frames: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertNodes(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, seq, name, kinds, wg_number, wg_name, information)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, n := range e.Store.Nodes() {
		info, err := json.Marshal(n.Info)
		if err != nil {
			return fmt.Errorf("marshal information of %s: %w", n.Name, err)
		}
		var wgNumber *int
		var wgName *string
		if n.WorkingGroup != nil {
			wgNumber, wgName = &n.WorkingGroup.Number, &n.WorkingGroup.Name
		}
		if _, err := stmt.Exec(n.ID, i, n.Name, strings.Join(n.Kinds.Classes(), ","), wgNumber, wgName, string(info)); err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertEdges(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO edges (id, seq, source, target, kind)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, edge := range e.Store.Edges() {
		if _, err := stmt.Exec(edge.ID, i, edge.Source, edge.Target, edge.Kind.String()); err != nil {
			return fmt.Errorf("insert edge %s->%s: %w", edge.Source, edge.Target, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertPositions(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO positions (node_id, x, y) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range e.Positions.IDs() {
		if !e.Store.Has(id) {
			continue
		}
		p := e.Positions[id]
		if _, err := stmt.Exec(id, p.X, p.Y); err != nil {
			return fmt.Errorf("insert position %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertFrames(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	frameStmt, err := tx.Prepare(`INSERT INTO frames (id, mode, focus, selected) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer frameStmt.Close()
	nodeStmt, err := tx.Prepare(`INSERT INTO frame_nodes (frame_id, node_id, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()
	edgeStmt, err := tx.Prepare(`INSERT INTO frame_edges (frame_id, edge_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for i, f := range e.Frames {
		if _, err := frameStmt.Exec(i, f.Mode.String(), nullable(f.Focus), nullable(f.Selected)); err != nil {
			return fmt.Errorf("insert frame %d: %w", i, err)
		}
		for _, id := range f.Active.Nodes.Sorted() {
			p := f.Positions[id]
			if _, err := nodeStmt.Exec(i, id, p.X, p.Y); err != nil {
				return fmt.Errorf("insert frame %d node %s: %w", i, id, err)
			}
		}
		for _, id := range f.Active.Edges.Sorted() {
			if _, err := edgeStmt.Exec(i, id); err != nil {
				return fmt.Errorf("insert frame %d edge %s: %w", i, id, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	meta := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"version":        version.Version,
		"generated_at":   now().UTC().Format(time.RFC3339),
		"node_count":     strconv.Itoa(e.Store.NodeCount()),
		"edge_count":     strconv.Itoa(e.Store.EdgeCount()),
		"frame_count":    strconv.Itoa(len(e.Frames)),
		"title":          e.Title,
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO export_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
