package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in export_meta so readers can reject databases
// they do not understand.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createFrameTables(db); err != nil {
		return fmt.Errorf("create frame tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// createCoreTables creates the nodes, edges and positions tables.
func createCoreTables(db *sql.DB) error {
	// seq keeps declaration order so the graph can be rebuilt identically.
	nodesSQL := `
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			kinds TEXT NOT NULL,
			wg_number INTEGER,
			wg_name TEXT,
			information TEXT NOT NULL
		)
	`
	if _, err := db.Exec(nodesSQL); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}

	edgesSQL := `
		CREATE TABLE IF NOT EXISTS edges (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			kind TEXT NOT NULL,
			FOREIGN KEY (source) REFERENCES nodes(id),
			FOREIGN KEY (target) REFERENCES nodes(id)
		)
	`
	if _, err := db.Exec(edgesSQL); err != nil {
		return fmt.Errorf("create edges table: %w", err)
	}

	positionsSQL := `
		CREATE TABLE IF NOT EXISTS positions (
			node_id TEXT PRIMARY KEY,
			x REAL NOT NULL,
			y REAL NOT NULL,
			FOREIGN KEY (node_id) REFERENCES nodes(id)
		)
	`
	if _, err := db.Exec(positionsSQL); err != nil {
		return fmt.Errorf("create positions table: %w", err)
	}
	return nil
}

// createFrameTables stores precomputed views: one row per view plus its
// visible nodes (with positions) and edges.
func createFrameTables(db *sql.DB) error {
	stmts := []struct{ name, sql string }{
		{"frames", `
			CREATE TABLE IF NOT EXISTS frames (
				id INTEGER PRIMARY KEY,
				mode TEXT NOT NULL,
				focus TEXT,
				selected TEXT
			)
		`},
		{"frame_nodes", `
			CREATE TABLE IF NOT EXISTS frame_nodes (
				frame_id INTEGER NOT NULL,
				node_id TEXT NOT NULL,
				x REAL NOT NULL,
				y REAL NOT NULL,
				PRIMARY KEY (frame_id, node_id),
				FOREIGN KEY (frame_id) REFERENCES frames(id),
				FOREIGN KEY (node_id) REFERENCES nodes(id)
			)
		`},
		{"frame_edges", `
			CREATE TABLE IF NOT EXISTS frame_edges (
				frame_id INTEGER NOT NULL,
				edge_id TEXT NOT NULL,
				PRIMARY KEY (frame_id, edge_id),
				FOREIGN KEY (frame_id) REFERENCES frames(id),
				FOREIGN KEY (edge_id) REFERENCES edges(id)
			)
		`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s table: %w", s.name, err)
		}
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_nodes_seq ON nodes(seq)",
		"CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source)",
		"CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target)",
		"CREATE INDEX IF NOT EXISTS idx_frames_focus ON frames(focus)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}
	return nil
}
