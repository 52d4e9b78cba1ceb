// Package scene clusters streamed frames into working memory. A Scene keeps
// a bounded window of recent frames, commits each frame's entities as single
// or grouped memories, and tracks decaying temporal edges between entities
// that keep co-occurring.
package scene

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/danielpatrickdp/scene-memory/internal/events"
	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/similarity"
	"github.com/danielpatrickdp/scene-memory/internal/vecmath"
)

// ErrNilFrame is returned by AddFrame when given a nil frame.
var ErrNilFrame = errors.New("scene: nil frame")

// #region types

// CommitKind distinguishes single-entity commits from group commits.
type CommitKind string

const (
	CommitSingle CommitKind = "single"
	CommitGroup  CommitKind = "group"
)

// Commit describes one memory written by AddFrame.
type Commit struct {
	Label   string     `json:"label"`
	Kind    CommitKind `json:"kind"`
	Members []string   `json:"members,omitempty"`
}

// CommitReport summarises one AddFrame call.
type CommitReport struct {
	Commits    []Commit `json:"commits"`
	Evicted    int      `json:"evicted"`
	BufferLen  int      `json:"buffer_len"`
	NewEdges   int      `json:"new_edges"`
	Reinforced int      `json:"reinforced_edges"`
}

// FrameCluster is a set of buffered frames whose hash vectors are similar.
type FrameCluster struct {
	Indices []int       `json:"indices"` // positions in the buffer, oldest first
	Vectors [][]float64 `json:"-"`
}

// GroupMatch is one member returned by RecallFromGroup.
type GroupMatch struct {
	Label   string          `json:"label"`
	Context *memory.Context `json:"context"`
}

// Scene is a bounded window of frames bound to a working memory. The memory
// may be shared with other callers. All methods are safe for concurrent use.
type Scene struct {
	mu         sync.Mutex
	memory     *memory.WorkingMemory
	bufferSize int
	tolerance  float64
	decayRate  float64
	now        func() time.Time
	strategy   similarity.Strategy

	frames     []*Frame
	groups     map[string][]*memory.Context
	groupOrder []string
	edges      map[string]map[string]*TemporalEdge // group label -> pair key -> edge
}

// #endregion types

// #region constructor

// NewScene binds a scene to mem. A nil mem gets a fresh WorkingMemory.
func NewScene(mem *memory.WorkingMemory, opts ...Option) *Scene {
	if mem == nil {
		mem = memory.NewWorkingMemory()
	}
	s := &Scene{
		memory:     mem,
		bufferSize: DefaultBufferSize,
		tolerance:  DefaultVarianceTolerance,
		decayRate:  DefaultEdgeDecayRate,
		now:        time.Now,
		strategy:   similarity.Cosine{},
		groups:     make(map[string][]*memory.Context),
		edges:      make(map[string]map[string]*TemporalEdge),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// #endregion constructor

// #region add-frame

// AddFrame appends frame to the buffer (evicting the oldest frame when full),
// turns its extracted entities into contexts, groups similar contexts and
// commits each group to working memory. Multi-member groups are stored under
// their deterministic group label and get temporal edges between members.
func (s *Scene) AddFrame(frame *Frame) (CommitReport, error) {
	if frame == nil {
		return CommitReport{}, ErrNilFrame
	}
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	var report CommitReport
	for len(s.frames) >= s.bufferSize {
		s.frames = s.frames[1:]
		report.Evicted++
	}
	s.frames = append(s.frames, frame)
	report.BufferLen = len(s.frames)

	if report.Evicted > 0 {
		capitan.Emit(ctx, events.FrameEvicted, events.FieldBufferLen.Field(len(s.frames)))
	}
	capitan.Emit(ctx, events.FrameAdded, events.FieldBufferLen.Field(len(s.frames)))

	var contexts []*memory.Context
	for _, e := range frame.Extract() {
		contexts = append(contexts, memory.NewContext().
			Set("label", e.Label).
			Set("value", e.Value).
			Set("weight", e.Weight))
	}

	vectors := make([][]float64, len(contexts))
	for i, c := range contexts {
		vectors[i] = ContextVector(c)
	}

	for _, idx := range greedyCluster(vectors, s.tolerance) {
		if len(idx) == 1 {
			c := contexts[idx[0]]
			label := labelOf(c)
			if err := s.memory.AddMemory(label, c, nil); err != nil {
				return report, err
			}
			report.Commits = append(report.Commits, Commit{Label: label, Kind: CommitSingle})
			capitan.Emit(ctx, events.MemoryCommitted, events.FieldLabel.Field(label))
			continue
		}

		members := make([]*memory.Context, len(idx))
		for i, j := range idx {
			members[i] = contexts[j]
		}
		commit, created, reinforced, err := s.commitGroup(ctx, members)
		if err != nil {
			return report, err
		}
		report.Commits = append(report.Commits, commit)
		report.NewEdges += created
		report.Reinforced += reinforced
	}
	return report, nil
}

// commitGroup merges members into one context, stores it under the group
// label and updates the group's temporal edges. Caller holds mu.
func (s *Scene) commitGroup(ctx context.Context, members []*memory.Context) (Commit, int, int, error) {
	labels := make([]string, len(members))
	for i, m := range members {
		labels[i] = labelOf(m)
	}
	group := GroupLabel(labels)
	sortedLabels := append([]string(nil), labels...)
	sort.Strings(sortedLabels)

	merged := memory.NewContext()
	for _, m := range members {
		merged.Merge(m)
	}
	merged.Set("label", group)
	merged.Set("members", sortedLabels)

	if err := s.memory.AddMemory(group, merged, nil); err != nil {
		return Commit{}, 0, 0, err
	}

	if _, ok := s.groups[group]; !ok {
		s.groupOrder = append(s.groupOrder, group)
	}
	s.groups[group] = members

	created, reinforced := s.linkMembers(ctx, group, members)

	log.Printf("[SCENE] group %s committed: members=%v new_edges=%d reinforced=%d",
		group[:len(GroupPrefix)+8], sortedLabels, created, reinforced)
	capitan.Emit(ctx, events.GroupCommitted,
		events.FieldGroup.Field(group),
		events.FieldMemberCount.Field(len(members)),
	)
	return Commit{Label: group, Kind: CommitGroup, Members: sortedLabels}, created, reinforced, nil
}

// linkMembers creates or reinforces the temporal edge of every member pair.
// An existing edge's similarity is decayed by the edge's age before it is
// recorded. Caller holds mu.
func (s *Scene) linkMembers(ctx context.Context, group string, members []*memory.Context) (created, reinforced int) {
	now := s.now()
	edges, ok := s.edges[group]
	if !ok {
		edges = make(map[string]*TemporalEdge)
		s.edges[group] = edges
	}

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sim := vecmath.Cosine(ContextVector(members[i]), ContextVector(members[j]))
			key := PairKey(i, j)

			if edge, ok := edges[key]; ok {
				edge.LastSimilarity = sim * edge.decayAt(now)
				edge.ReinforceAt(DefaultEdgeWeight, now)
				reinforced++
				capitan.Emit(ctx, events.EdgeReinforced,
					events.FieldGroup.Field(group),
					events.FieldPairKey.Field(key),
					events.FieldWeight.Field(float32(edge.InitialWeight)),
				)
				continue
			}
			edge := NewTemporalEdge(DefaultEdgeWeight, s.decayRate, now)
			edge.LastSimilarity = sim
			edges[key] = edge
			created++
		}
	}
	return created, reinforced
}

// #endregion add-frame

// #region cluster-frames

// ClusterEntities groups the buffered frames by the cosine similarity of
// their hash vectors, greedily: each frame joins the first cluster holding a
// member at or above the variance tolerance. Empty buffers yield no clusters.
func (s *Scene) ClusterEntities() []FrameCluster {
	s.mu.Lock()
	vectors := make([][]float64, len(s.frames))
	for i, f := range s.frames {
		vectors[i] = f.HashArray()
	}
	tolerance := s.tolerance
	s.mu.Unlock()

	var out []FrameCluster
	for _, idx := range greedyCluster(vectors, tolerance) {
		fc := FrameCluster{Indices: idx}
		for _, i := range idx {
			fc.Vectors = append(fc.Vectors, vectors[i])
		}
		out = append(out, fc)
	}
	return out
}

// #endregion cluster-frames

// #region recall-group

// RecallFromGroup compares every pair of the group's members with strategy
// (the scene default when nil) and returns each member that appears in at
// least one pair scoring >= tolerance, in member order. Unknown groups yield
// nil.
func (s *Scene) RecallFromGroup(group string, tolerance float64, strategy similarity.Strategy) []GroupMatch {
	s.mu.Lock()
	members := append([]*memory.Context(nil), s.groups[group]...)
	if strategy == nil {
		strategy = s.strategy
	}
	s.mu.Unlock()

	vectors := make([][]float64, len(members))
	for i, m := range members {
		vectors[i] = ContextVector(m)
	}

	matched := make([]bool, len(members))
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if strategy.Score(vectors[i], vectors[j], members[i], members[j]) >= tolerance {
				matched[i], matched[j] = true, true
			}
		}
	}

	var out []GroupMatch
	seen := make(map[string]bool)
	for i, m := range members {
		label := labelOf(m)
		if !matched[i] || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, GroupMatch{Label: label, Context: m})
	}
	return out
}

// #endregion recall-group

// #region accessors

// Memory returns the bound working memory.
func (s *Scene) Memory() *memory.WorkingMemory {
	return s.memory
}

// Frames returns the buffered frames, oldest first.
func (s *Scene) Frames() []*Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Frame(nil), s.frames...)
}

// Groups returns every recorded group keyed by group label.
func (s *Scene) Groups() map[string][]*memory.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]*memory.Context, len(s.groups))
	for k, v := range s.groups {
		out[k] = append([]*memory.Context(nil), v...)
	}
	return out
}

// GroupLabels returns group labels in first-commit order.
func (s *Scene) GroupLabels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.groupOrder...)
}

// TemporalEdge returns a copy of the edge between members i and j of group.
func (s *Scene) TemporalEdge(group string, i, j int) (TemporalEdge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edges[group][PairKey(i, j)]
	if !ok {
		return TemporalEdge{}, false
	}
	return *e, true
}

// EdgeCount returns the total number of temporal edges.
func (s *Scene) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.edges {
		n += len(m)
	}
	return n
}

// PruneEdges removes temporal edges whose current weight is below minWeight
// and returns how many were removed. Edges are otherwise kept forever.
func (s *Scene) PruneEdges(minWeight float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for group, m := range s.edges {
		for key, e := range m {
			if w := e.WeightAt(now); w < minWeight || math.IsNaN(w) {
				delete(m, key)
				removed++
			}
		}
		if len(m) == 0 {
			delete(s.edges, group)
		}
	}
	if removed > 0 {
		log.Printf("[SCENE] pruned %d temporal edges below %.3f", removed, minWeight)
	}
	return removed
}

// #endregion accessors
