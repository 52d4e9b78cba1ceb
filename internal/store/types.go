package store

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/scene"
)

// SchemaVersion is written to every snapshot row.
const SchemaVersion = 1

// ErrNoSnapshot is returned when a requested or active snapshot does not exist.
var ErrNoSnapshot = errors.New("store: no snapshot")

// #region snapshot-info
// Info describes a stored snapshot without its contents.
type Info struct {
	VersionID     string    `json:"version_id"`
	ParentID      string    `json:"parent_id,omitempty"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	FrameCount    int       `json:"frame_count"`
	NodeCount     int       `json:"node_count"`
}
// #endregion snapshot-info

// #region snapshot
// Snapshot is the persisted state of one WorkingMemory and its Scene.
type Snapshot struct {
	Info
	Nodes []*memory.MemoryNode
	Scene scene.State
}

// Capture copies the current state of mem and sc. sc may be nil.
func Capture(mem *memory.WorkingMemory, sc *scene.Scene) Snapshot {
	var snap Snapshot
	for _, n := range mem.Nodes() {
		snap.Nodes = append(snap.Nodes, memory.NewMemoryNode(n.Label(), n.Edges().Clone(), n.Context().Clone()))
	}
	if sc != nil {
		snap.Scene = sc.Export()
		snap.FrameCount = snap.Scene.FrameCount
	}
	snap.NodeCount = len(snap.Nodes)
	return snap
}

// Memory rebuilds a WorkingMemory from the snapshot's nodes, in stored order.
func (s Snapshot) Memory() (*memory.WorkingMemory, error) {
	mem := memory.NewWorkingMemory()
	for _, n := range s.Nodes {
		if err := mem.AddMemory(n.Label(), n.Context().Clone(), n.Edges()); err != nil {
			return nil, err
		}
	}
	return mem, nil
}
// #endregion snapshot
