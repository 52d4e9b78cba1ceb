// Package orchestrator owns the live WorkingMemory and Scene of a memoryd
// process and ties them to the snapshot store and the commit log.
package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/danielpatrickdp/scene-memory/internal/config"
	"github.com/danielpatrickdp/scene-memory/internal/logging"
	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/scene"
	"github.com/danielpatrickdp/scene-memory/internal/store"
)

// #endregion

// #region orchestrator-struct

// Orchestrator serializes ingest against checkpoint and restore. Reads go
// straight to the WorkingMemory and Scene, which are safe for concurrent use.
type Orchestrator struct {
	mu       sync.RWMutex
	cfg      config.Config
	store    *store.Store // nil: nothing is persisted
	mem      *memory.WorkingMemory
	scene    *scene.Scene
	frameSeq int64
	version  string // snapshot the live state was loaded from or last saved as
}

// #endregion

// #region constructor

// New builds an orchestrator. With a store, the active snapshot (if any) is
// loaded and the frame sequence resumes from the commit log.
func New(cfg config.Config, st *store.Store) (*Orchestrator, error) {
	o := &Orchestrator{cfg: cfg, store: st}
	o.mem = memory.NewWorkingMemory()
	o.scene = scene.NewScene(o.mem, cfg.SceneOptions()...)
	if st == nil {
		return o, nil
	}

	snap, err := st.LoadActive()
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		log.Printf("[ORCH] no active snapshot, starting empty")
	case err != nil:
		return nil, fmt.Errorf("load active snapshot: %w", err)
	default:
		if err := o.apply(snap); err != nil {
			return nil, err
		}
	}

	seq, err := logging.LastFrameSeq(st.DB())
	if err != nil {
		return nil, err
	}
	o.frameSeq = seq
	return o, nil
}

// apply swaps in the state of snap. Caller holds mu or owns o exclusively.
func (o *Orchestrator) apply(snap store.Snapshot) error {
	mem, err := snap.Memory()
	if err != nil {
		return fmt.Errorf("restore memory %s: %w", snap.VersionID, err)
	}
	return o.applyMemory(snap, mem)
}

func (o *Orchestrator) applyMemory(snap store.Snapshot, mem *memory.WorkingMemory) error {
	sc := scene.NewScene(mem, o.cfg.SceneOptions()...)
	sc.Restore(snap.Scene)

	o.mem = mem
	o.scene = sc
	o.version = snap.VersionID
	log.Printf("[ORCH] restored snapshot %s: nodes=%d groups=%d",
		snap.VersionID, mem.Len(), len(snap.Scene.Groups))
	return nil
}

// #endregion

// #region accessors

// Memory returns the live working memory.
func (o *Orchestrator) Memory() *memory.WorkingMemory {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mem
}

// Scene returns the live scene.
func (o *Orchestrator) Scene() *scene.Scene {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scene
}

// Version returns the snapshot id the live state corresponds to, if any.
func (o *Orchestrator) Version() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}

// Config returns the settings the orchestrator was built with.
func (o *Orchestrator) Config() config.Config {
	return o.cfg
}

// #endregion

// #region ingest

// Ingest builds a frame from in and adds it to the scene. Each commit is
// written to the commit log when a store is attached.
func (o *Orchestrator) Ingest(ctx context.Context, in FrameInput) (IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return IngestResult{}, err
	}
	frame, err := in.Build(o.cfg.FrameOptions()...)
	if err != nil {
		return IngestResult{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	report, err := o.scene.AddFrame(frame)
	if err != nil {
		return IngestResult{}, fmt.Errorf("add frame: %w", err)
	}
	// The commit log holds one row per commit, so frames that commit nothing
	// leave no trace and a restart resumes from the last committing frame.
	o.frameSeq++
	res := IngestResult{FrameSeq: o.frameSeq, Report: report}

	if o.store != nil {
		if err := logging.LogReport(o.store.DB(), o.frameSeq, report); err != nil {
			log.Printf("[ORCH] failed to log commits for frame %d: %v", o.frameSeq, err)
		}
	}
	return res, nil
}

// IngestBatch ingests frames in order and stops at the first error. With
// autosave enabled a checkpoint follows every non-empty prefix, including the
// frames ingested before a failing one, so the commit log never runs ahead of
// the newest snapshot.
func (o *Orchestrator) IngestBatch(ctx context.Context, frames []FrameInput) ([]IngestResult, error) {
	var out []IngestResult
	var ingestErr error
	for i, in := range frames {
		res, err := o.Ingest(ctx, in)
		if err != nil {
			ingestErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
		out = append(out, res)
	}
	if len(out) > 0 && o.cfg.Autosave && o.store != nil {
		if _, err := o.Checkpoint(); err != nil {
			return out, errors.Join(ingestErr, err)
		}
	}
	return out, ingestErr
}

// #endregion

// #region checkpoint

// Checkpoint saves the live state as a new snapshot.
func (o *Orchestrator) Checkpoint() (store.Info, error) {
	if o.store == nil {
		return store.Info{}, errors.New("checkpoint: no store attached")
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	info, err := o.store.Save(store.Capture(o.mem, o.scene))
	if err != nil {
		return store.Info{}, fmt.Errorf("checkpoint: %w", err)
	}
	o.version = info.VersionID
	log.Printf("[ORCH] checkpoint %s at frame %d", info.VersionID, o.frameSeq)
	return info, nil
}

// Restore makes versionID the active snapshot and swaps the live state for it.
// The frame buffer starts empty.
func (o *Orchestrator) Restore(versionID string) error {
	if o.store == nil {
		return errors.New("restore: no store attached")
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	snap, err := o.store.Load(versionID)
	if err != nil {
		return err
	}
	mem, err := snap.Memory()
	if err != nil {
		return fmt.Errorf("restore memory %s: %w", versionID, err)
	}
	if err := o.store.Rollback(versionID); err != nil {
		return err
	}
	return o.applyMemory(snap, mem)
}

// Snapshots lists up to limit stored snapshots, newest first.
func (o *Orchestrator) Snapshots(limit int) ([]store.Info, error) {
	if o.store == nil {
		return nil, nil
	}
	return o.store.List(limit)
}

// RecentCommits returns up to limit commit log entries, newest first.
func (o *Orchestrator) RecentCommits(limit int) ([]logging.CommitEntry, error) {
	if o.store == nil {
		return nil, nil
	}
	return logging.RecentCommits(o.store.DB(), limit)
}

// #endregion
