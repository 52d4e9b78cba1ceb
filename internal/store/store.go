package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/scene-memory/internal/events"
	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/scene"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	version_id     TEXT PRIMARY KEY,
	parent_id      TEXT,
	schema_version INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	frame_count    INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (parent_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS memory_nodes (
	version_id    TEXT NOT NULL,
	position      INTEGER NOT NULL,
	label         TEXT NOT NULL,
	context_json  TEXT NOT NULL,
	PRIMARY KEY (version_id, label),
	FOREIGN KEY (version_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS memory_edges (
	version_id    TEXT NOT NULL,
	source        TEXT NOT NULL,
	target        TEXT NOT NULL,
	position      INTEGER NOT NULL,
	value_json    TEXT NOT NULL,
	PRIMARY KEY (version_id, source, target),
	FOREIGN KEY (version_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS scene_groups (
	version_id    TEXT NOT NULL,
	group_label   TEXT NOT NULL,
	position      INTEGER NOT NULL,
	context_json  TEXT NOT NULL,
	PRIMARY KEY (version_id, group_label, position),
	FOREIGN KEY (version_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS temporal_edges (
	version_id      TEXT NOT NULL,
	group_label     TEXT NOT NULL,
	pair_key        TEXT NOT NULL,
	initial_weight  REAL NOT NULL,
	decay_rate      REAL NOT NULL,
	last_similarity REAL NOT NULL,
	updated_at      TEXT NOT NULL,
	PRIMARY KEY (version_id, group_label, pair_key),
	FOREIGN KEY (version_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS active_snapshot (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS commit_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	frame_seq     INTEGER NOT NULL,
	label         TEXT NOT NULL,
	kind          TEXT NOT NULL,
	members_json  TEXT,
	evicted       INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// Store keeps versioned snapshots of working memory and scene state in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the commit log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region save
// Save writes snap as a new version whose parent is the current active
// snapshot, then makes it active. The returned Info carries the new id.
func (s *Store) Save(snap Snapshot) (Info, error) {
	info, err := s.save(snap)
	if err != nil {
		capitan.Error(context.Background(), events.SnapshotFailed, events.FieldError.Field(err))
		log.Printf("[STORE] snapshot failed: %v", err)
		return Info{}, err
	}
	capitan.Emit(context.Background(), events.SnapshotSaved,
		events.FieldVersionID.Field(info.VersionID),
		events.FieldNodeCount.Field(info.NodeCount),
	)
	log.Printf("[STORE] snapshot %s saved: nodes=%d groups=%d edges=%d",
		info.VersionID[:8], info.NodeCount, len(snap.Scene.Groups), len(snap.Scene.Edges))
	return info, nil
}

func (s *Store) save(snap Snapshot) (Info, error) {
	info := Info{
		VersionID:     uuid.New().String(),
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC(),
		FrameCount:    snap.Scene.FrameCount,
		NodeCount:     len(snap.Nodes),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Info{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parent sql.NullString
	err = tx.QueryRow(`SELECT version_id FROM active_snapshot WHERE id = 1`).Scan(&parent)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("get active: %w", err)
	}
	info.ParentID = parent.String

	var parentPtr interface{}
	if parent.Valid {
		parentPtr = parent.String
	}
	_, err = tx.Exec(
		`INSERT INTO snapshots (version_id, parent_id, schema_version, created_at, frame_count)
		 VALUES (?, ?, ?, ?, ?)`,
		info.VersionID, parentPtr, info.SchemaVersion,
		info.CreatedAt.Format(time.RFC3339Nano), info.FrameCount,
	)
	if err != nil {
		return Info{}, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := insertNodes(tx, info.VersionID, snap.Nodes); err != nil {
		return Info{}, err
	}
	if err := insertScene(tx, info.VersionID, snap.Scene); err != nil {
		return Info{}, err
	}

	_, err = tx.Exec(
		`INSERT INTO active_snapshot (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		info.VersionID,
	)
	if err != nil {
		return Info{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Info{}, fmt.Errorf("commit: %w", err)
	}
	return info, nil
}

func insertNodes(tx *sql.Tx, versionID string, nodes []*memory.MemoryNode) error {
	for i, n := range nodes {
		ctxJSON, err := json.Marshal(n.Context())
		if err != nil {
			return fmt.Errorf("marshal context %s: %w", n.Label(), err)
		}
		_, err = tx.Exec(
			`INSERT INTO memory_nodes (version_id, position, label, context_json) VALUES (?, ?, ?, ?)`,
			versionID, i, n.Label(), string(ctxJSON),
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.Label(), err)
		}

		for j, e := range n.Edges().Entries() {
			valJSON, err := json.Marshal(e.Value)
			if err != nil {
				return fmt.Errorf("marshal edge %s->%s: %w", n.Label(), e.Target, err)
			}
			_, err = tx.Exec(
				`INSERT INTO memory_edges (version_id, source, target, position, value_json) VALUES (?, ?, ?, ?, ?)`,
				versionID, n.Label(), e.Target, j, string(valJSON),
			)
			if err != nil {
				return fmt.Errorf("insert edge %s->%s: %w", n.Label(), e.Target, err)
			}
		}
	}
	return nil
}

func insertScene(tx *sql.Tx, versionID string, st scene.State) error {
	for _, g := range st.Groups {
		for i, m := range g.Members {
			ctxJSON, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal group member: %w", err)
			}
			_, err = tx.Exec(
				`INSERT INTO scene_groups (version_id, group_label, position, context_json) VALUES (?, ?, ?, ?)`,
				versionID, g.Label, i, string(ctxJSON),
			)
			if err != nil {
				return fmt.Errorf("insert group %s: %w", g.Label, err)
			}
		}
	}
	for _, e := range st.Edges {
		_, err := tx.Exec(
			`INSERT INTO temporal_edges (version_id, group_label, pair_key, initial_weight, decay_rate, last_similarity, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			versionID, e.Group, e.Pair, e.Edge.InitialWeight, e.Edge.DecayRate,
			e.Edge.LastSimilarity, e.Edge.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert temporal edge %s/%s: %w", e.Group, e.Pair, err)
		}
	}
	return nil
}
// #endregion save

// #region load
// LoadActive reads the active snapshot. Returns ErrNoSnapshot when none has
// been saved.
func (s *Store) LoadActive() (Snapshot, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_snapshot WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get active: %w", err)
	}
	return s.Load(versionID)
}

// Load reads a specific snapshot by version id.
func (s *Store) Load(id string) (Snapshot, error) {
	info, err := s.info(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Info: info}

	if snap.Nodes, err = s.loadNodes(id); err != nil {
		return Snapshot{}, err
	}
	if snap.Scene, err = s.loadScene(id); err != nil {
		return Snapshot{}, err
	}
	snap.Scene.FrameCount = info.FrameCount
	return snap, nil
}

func (s *Store) info(id string) (Info, error) {
	var info Info
	var parentID sql.NullString
	var createdStr string
	err := s.db.QueryRow(
		`SELECT s.version_id, s.parent_id, s.schema_version, s.created_at, s.frame_count,
		        (SELECT COUNT(*) FROM memory_nodes n WHERE n.version_id = s.version_id)
		 FROM snapshots s WHERE s.version_id = ?`, id,
	).Scan(&info.VersionID, &parentID, &info.SchemaVersion, &createdStr, &info.FrameCount, &info.NodeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("snapshot %s: %w", id, ErrNoSnapshot)
	}
	if err != nil {
		return Info{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	info.ParentID = parentID.String
	info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return info, nil
}

func (s *Store) loadNodes(id string) ([]*memory.MemoryNode, error) {
	edges, err := s.loadEdges(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT label, context_json FROM memory_nodes WHERE version_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*memory.MemoryNode
	for rows.Next() {
		var label, ctxJSON string
		if err := rows.Scan(&label, &ctxJSON); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		ctx := memory.NewContext()
		if err := json.Unmarshal([]byte(ctxJSON), ctx); err != nil {
			return nil, fmt.Errorf("node %s: %w", label, err)
		}
		nodes = append(nodes, memory.NewMemoryNode(label, edges[label], ctx))
	}
	return nodes, rows.Err()
}

func (s *Store) loadEdges(id string) (map[string]*memory.Edges, error) {
	rows, err := s.db.Query(
		`SELECT source, target, value_json FROM memory_edges WHERE version_id = ? ORDER BY source, position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*memory.Edges)
	for rows.Next() {
		var source, target, valJSON string
		if err := rows.Scan(&source, &target, &valJSON); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		var v any
		if err := json.Unmarshal([]byte(valJSON), &v); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", source, target, err)
		}
		e, ok := out[source]
		if !ok {
			e = memory.NewEdges()
			out[source] = e
		}
		e.Set(target, v)
	}
	return out, rows.Err()
}

func (s *Store) loadScene(id string) (scene.State, error) {
	groups, err := s.loadGroups(id)
	if err != nil {
		return scene.State{}, err
	}
	edges, err := s.loadTemporalEdges(id)
	if err != nil {
		return scene.State{}, err
	}
	return scene.State{Groups: groups, Edges: edges}, nil
}

func (s *Store) loadGroups(id string) ([]scene.GroupState, error) {
	rows, err := s.db.Query(
		`SELECT group_label, context_json FROM scene_groups WHERE version_id = ? ORDER BY rowid`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	defer rows.Close()

	var groups []scene.GroupState
	index := make(map[string]int)
	for rows.Next() {
		var label, ctxJSON string
		if err := rows.Scan(&label, &ctxJSON); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		ctx := memory.NewContext()
		if err := json.Unmarshal([]byte(ctxJSON), ctx); err != nil {
			return nil, fmt.Errorf("group %s: %w", label, err)
		}
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, scene.GroupState{Label: label})
		}
		groups[i].Members = append(groups[i].Members, ctx)
	}
	return groups, rows.Err()
}

func (s *Store) loadTemporalEdges(id string) ([]scene.EdgeState, error) {
	rows, err := s.db.Query(
		`SELECT group_label, pair_key, initial_weight, decay_rate, last_similarity, updated_at
		 FROM temporal_edges WHERE version_id = ? ORDER BY group_label, pair_key`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load temporal edges: %w", err)
	}
	defer rows.Close()

	var edges []scene.EdgeState
	for rows.Next() {
		var es scene.EdgeState
		var updated string
		if err := rows.Scan(&es.Group, &es.Pair, &es.Edge.InitialWeight, &es.Edge.DecayRate,
			&es.Edge.LastSimilarity, &updated); err != nil {
			return nil, fmt.Errorf("scan temporal edge: %w", err)
		}
		es.Edge.Timestamp, _ = time.Parse(time.RFC3339Nano, updated)
		edges = append(edges, es)
	}
	return edges, rows.Err()
}
// #endregion load

// #region list
// List returns the most recent snapshots, newest first.
func (s *Store) List(limit int) ([]Info, error) {
	rows, err := s.db.Query(
		`SELECT s.version_id, s.parent_id, s.schema_version, s.created_at, s.frame_count,
		        (SELECT COUNT(*) FROM memory_nodes n WHERE n.version_id = s.version_id)
		 FROM snapshots s ORDER BY s.rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var parentID sql.NullString
		var createdStr string
		if err := rows.Scan(&info.VersionID, &parentID, &info.SchemaVersion, &createdStr,
			&info.FrameCount, &info.NodeCount); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		info.ParentID = parentID.String
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, info)
	}
	return out, rows.Err()
}
// #endregion list

// #region rollback
// Rollback makes a previous snapshot active.
func (s *Store) Rollback(versionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM snapshots WHERE version_id = ?`, versionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("snapshot %s: %w", versionID, ErrNoSnapshot)
	}

	_, err = s.db.Exec(`UPDATE active_snapshot SET version_id = ? WHERE id = 1`, versionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	log.Printf("[STORE] active snapshot rolled back to %s", versionID)
	return nil
}
// #endregion rollback
