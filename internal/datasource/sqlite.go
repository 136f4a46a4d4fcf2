package datasource

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/layout"
	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// supportedSchema is the export schema version this reader understands.
const supportedSchema = 1

// SQLiteReader reads declarations back from a database written by the
// SQLite exporter.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite export for reading.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA temp_store = MEMORY"); err != nil {
		debug.Log("datasource: pragma on %s: %v", path, err)
	}
	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Meta returns the export_meta key/value pairs.
func (r *SQLiteReader) Meta() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM export_meta`)
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()
	meta := make(map[string]string)
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v.String
	}
	return meta, rows.Err()
}

// Positions returns the saved global positions stored with the export.
func (r *SQLiteReader) Positions() (layout.Positions, error) {
	rows, err := r.db.Query(`SELECT node_id, x, y FROM positions`)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()
	out := make(layout.Positions)
	for rows.Next() {
		var id string
		var p layout.Position
		if err := rows.Scan(&id, &p.X, &p.Y); err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, rows.Err()
}

type sqlNode struct {
	id    string
	name  string
	kinds model.KindSet
	wg    *model.WorkingGroup
	info  model.Information
}

type sqlEdge struct {
	source, target string
	kind           string
}

// Declarations rebuilds the declarations from the nodes and edges tables.
// Pipelines and flows keep the order they were exported in; a flow's
// destinations and a tree's elements follow edge order.
func (r *SQLiteReader) Declarations() (Declarations, error) {
	var d Declarations
	if err := r.checkSchema(); err != nil {
		return d, err
	}
	nodes, order, err := r.loadNodes()
	if err != nil {
		return d, err
	}
	out, in, err := r.loadEdges()
	if err != nil {
		return d, err
	}

	pipelines := make(map[string]*model.Pipeline)
	for _, id := range order {
		n := nodes[id]
		if !n.kinds.Matches(model.PipelineKinds) {
			continue
		}
		p := &model.Pipeline{Name: n.name, Kind: pipelineKind(n.kinds), WorkingGroup: n.wg}
		pipelines[id] = p
		d.Pipelines = append(d.Pipelines, p)
	}

	for _, id := range order {
		n := nodes[id]
		if !n.kinds.Has(model.KindDataFlow) {
			continue
		}
		decl := model.DataFlowDeclaration{}
		for _, e := range in[id] {
			if p, ok := pipelines[e.source]; ok && e.kind == model.EdgeDataFlow.String() {
				decl.Source = p
				break
			}
		}
		if decl.Source == nil {
			return d, fmt.Errorf("%s: flow %q has no source pipeline", r.path, n.name)
		}
		for _, e := range out[id] {
			if p, ok := pipelines[e.target]; ok && e.kind == model.EdgeDataFlow.String() {
				decl.Destinations = append(decl.Destinations, p)
			}
		}
		decl.Data = record(nodes, out, id, map[string]bool{})
		d.Flows = append(d.Flows, decl)
	}
	debug.Log("datasource: %s: %d pipelines, %d flows", r.path, len(d.Pipelines), len(d.Flows))
	return d, nil
}

func (r *SQLiteReader) checkSchema() error {
	var v string
	err := r.db.QueryRow(`SELECT value FROM export_meta WHERE key = 'schema_version'`).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: read schema version: %w", r.path, err)
	}
	if n, _ := strconv.Atoi(v); n != supportedSchema {
		return fmt.Errorf("%s: unsupported schema version %q (want %d)", r.path, v, supportedSchema)
	}
	return nil
}

func (r *SQLiteReader) loadNodes() (map[string]sqlNode, []string, error) {
	rows, err := r.db.Query(`
		SELECT id, name, kinds, wg_number, wg_name, information
		FROM nodes
		ORDER BY seq
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make(map[string]sqlNode)
	var order []string
	for rows.Next() {
		var (
			n        sqlNode
			kinds    string
			wgNumber sql.NullInt64
			wgName   sql.NullString
			info     string
		)
		if err := rows.Scan(&n.id, &n.name, &kinds, &wgNumber, &wgName, &info); err != nil {
			return nil, nil, err
		}
		for _, class := range strings.Split(kinds, ",") {
			k, err := model.ParseKind(class)
			if err != nil {
				return nil, nil, fmt.Errorf("node %s: %w", n.id, err)
			}
			n.kinds = n.kinds.With(k)
		}
		if wgNumber.Valid {
			n.wg = &model.WorkingGroup{Number: int(wgNumber.Int64), Name: wgName.String}
		}
		if err := json.Unmarshal([]byte(info), &n.info); err != nil {
			return nil, nil, fmt.Errorf("node %s information: %w", n.id, err)
		}
		if n.info.Name == "" {
			n.info.Name = n.name
		}
		nodes[n.id] = n
		order = append(order, n.id)
	}
	return nodes, order, rows.Err()
}

func (r *SQLiteReader) loadEdges() (out, in map[string][]sqlEdge, err error) {
	rows, err := r.db.Query(`SELECT source, target, kind FROM edges ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	out = make(map[string][]sqlEdge)
	in = make(map[string][]sqlEdge)
	for rows.Next() {
		var e sqlEdge
		if err := rows.Scan(&e.source, &e.target, &e.kind); err != nil {
			return nil, nil, err
		}
		out[e.source] = append(out[e.source], e)
		in[e.target] = append(in[e.target], e)
	}
	return out, in, rows.Err()
}

// record rebuilds the payload rooted at id from its data-tree edges.
func record(nodes map[string]sqlNode, out map[string][]sqlEdge, id string, seen map[string]bool) model.DataRecord {
	seen[id] = true
	rec := model.DataRecord{Information: nodes[id].info}
	for _, e := range out[id] {
		if e.kind != model.EdgeDataTree.String() || seen[e.target] {
			continue
		}
		rec.Elements = append(rec.Elements, record(nodes, out, e.target, seen))
	}
	return rec
}

func pipelineKind(s model.KindSet) model.Kind {
	for _, k := range s.List() {
		if k.IsPipeline() {
			return k
		}
	}
	return 0
}
