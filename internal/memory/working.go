package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zoobzio/capitan"

	"github.com/danielpatrickdp/scene-memory/internal/events"
	"github.com/danielpatrickdp/scene-memory/internal/graph"
)

// DefaultAssociationLimit caps RecallWithAssociations when no positive limit is given.
const DefaultAssociationLimit = 10

// DefaultSimilarityThreshold is the conventional RecallSimilar cut-off.
const DefaultSimilarityThreshold = 0.5

// #region types

// Association is one direct neighbour returned by RecallWithAssociations.
type Association struct {
	Label   string   `json:"label"`
	Context *Context `json:"context"`
}

// SimilarMemory is one RecallSimilar hit.
type SimilarMemory struct {
	Label      string   `json:"label"`
	Context    *Context `json:"context"`
	Similarity float64  `json:"similarity"`
}

// WorkingMemory is a labelled graph of MemoryNodes. Nodes live in a
// label-indexed arena mirrored into a graph.Graph for path search. All
// methods are safe for concurrent use; each call holds the instance lock.
type WorkingMemory struct {
	mu    sync.RWMutex
	nodes map[string]*MemoryNode
	order []string
	graph *graph.Graph
}

// #endregion types

// #region constructor

// NewWorkingMemory returns an empty working memory.
func NewWorkingMemory() *WorkingMemory {
	return &WorkingMemory{
		nodes: make(map[string]*MemoryNode),
		graph: graph.New(),
	}
}

// #endregion constructor

// #region add

// AddMemory stores a node for label, overwriting any previous node with the
// same label in place. Returns ErrNegativeWeight if any edge has an unusable
// cost.
func (m *WorkingMemory) AddMemory(label string, ctx *Context, edges *Edges) error {
	if err := edges.Validate(); err != nil {
		return fmt.Errorf("add memory %q: %w", label, err)
	}
	node := NewMemoryNode(label, edges.Clone(), ctx)

	m.mu.Lock()
	m.store(node)
	count := len(m.order)
	m.mu.Unlock()

	capitan.Emit(context.Background(), events.NodeAdded,
		events.FieldLabel.Field(label),
		events.FieldNodeCount.Field(count),
	)
	return nil
}

// store writes node into both the label index and the graph. Caller holds mu.
func (m *WorkingMemory) store(node *MemoryNode) {
	if _, ok := m.nodes[node.label]; !ok {
		m.order = append(m.order, node.label)
	}
	m.nodes[node.label] = node

	targets := node.edges.Targets()
	edges := make([]graph.Edge, 0, len(targets))
	for _, t := range targets {
		cost, _ := node.edges.Cost(t)
		edges = append(edges, graph.Edge{TargetID: t, Weight: cost})
	}
	m.graph.SetVertex(node.label, edges)
}

// #endregion add

// #region lookup

// GetMemory returns the node for label, or nil.
func (m *WorkingMemory) GetMemory(label string) *MemoryNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[label]
}

// Recall returns the context stored under label, or nil.
func (m *WorkingMemory) Recall(label string) *Context {
	if n := m.GetMemory(label); n != nil {
		return n.context
	}
	return nil
}

// Contents returns a snapshot of every stored node keyed by label.
func (m *WorkingMemory) Contents() map[string]*MemoryNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*MemoryNode, len(m.nodes))
	for k, v := range m.nodes {
		out[k] = v
	}
	return out
}

// Nodes returns every stored node in insertion order.
func (m *WorkingMemory) Nodes() []*MemoryNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*MemoryNode, 0, len(m.order))
	for _, l := range m.order {
		out = append(out, m.nodes[l])
	}
	return out
}

// Len returns the number of stored nodes.
func (m *WorkingMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// #endregion lookup

// #region associate

// Associate links a and b with a reciprocal edge of the given weight,
// replacing any prior weight for the pair. No-op if either label is missing.
func (m *WorkingMemory) Associate(a, b string, weight float64) error {
	if err := validateWeight(weight); err != nil {
		return fmt.Errorf("associate %q-%q: %w", a, b, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	na, okA := m.nodes[a]
	nb, okB := m.nodes[b]
	if !okA || !okB {
		return nil
	}

	m.store(NewMemoryNode(a, na.edges.Clone().Set(b, weight), na.context))
	// Re-read b in case a == b and the node was just replaced.
	nb = m.nodes[b]
	m.store(NewMemoryNode(b, nb.edges.Clone().Set(a, weight), nb.context))
	return nil
}

// #endregion associate

// #region reinforce-path

// ReinforcePath finds the fewest-hop path from start to end, ignoring edge
// weights, and reinforces every node on it by 1.0 (endpoints included). Each
// reinforced node is re-stored as a new node. Returns nil if no path exists.
func (m *WorkingMemory) ReinforcePath(start, end string) []string {
	m.mu.Lock()
	res := m.graph.ShortestPath(start, end)
	for _, label := range res.IDs {
		old := m.nodes[label]
		node := NewMemoryNode(label, old.edges, old.context.Clone())
		node.Reinforce(1.0)
		m.store(node)
	}
	m.mu.Unlock()

	if len(res.IDs) > 0 {
		capitan.Emit(context.Background(), events.PathReinforced,
			events.FieldLabel.Field(start),
			events.FieldPathLength.Field(len(res.IDs)),
		)
	}
	return res.IDs
}

// ContextSwitchPath is an alias for ReinforcePath.
func (m *WorkingMemory) ContextSwitchPath(from, to string) []string {
	return m.ReinforcePath(from, to)
}

// #endregion reinforce-path

// #region shortest-association

// ShortestAssociation returns the cheapest path from start to end where each
// edge costs its weight (see EdgeCost). Returns nil if no path exists.
func (m *WorkingMemory) ShortestAssociation(start, end string) []string {
	path, _ := m.ShortestAssociationCost(start, end)
	return path
}

// ShortestAssociationCost is ShortestAssociation plus the total path cost.
func (m *WorkingMemory) ShortestAssociationCost(start, end string) ([]string, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := m.graph.CheapestPath(start, end)
	return res.IDs, res.Cost
}

// #endregion shortest-association

// #region recall

// RecallWithAssociations returns the direct neighbours of label in edge
// order, capped at max (DefaultAssociationLimit when max <= 0). Edges to
// forgotten labels are skipped.
func (m *WorkingMemory) RecallWithAssociations(label string, max int) []Association {
	if max <= 0 {
		max = DefaultAssociationLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[label]
	if !ok {
		return nil
	}
	var out []Association
	for _, t := range node.edges.Targets() {
		if len(out) >= max {
			break
		}
		if n, ok := m.nodes[t]; ok {
			out = append(out, Association{Label: t, Context: n.context})
		}
	}
	return out
}

// RecallSimilar scores query against every stored node with
// MemoryNode.Similarity and returns those scoring at least threshold,
// highest first. Ties keep insertion order.
func (m *WorkingMemory) RecallSimilar(query *Context, threshold float64) []SimilarMemory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []SimilarMemory
	for _, l := range m.order {
		n := m.nodes[l]
		score := n.Similarity(query)
		if score >= threshold {
			out = append(out, SimilarMemory{Label: l, Context: n.context, Similarity: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

// #endregion recall

// #region forget

// Forget removes label from the index and the graph. No-op if absent.
func (m *WorkingMemory) Forget(label string) {
	m.mu.Lock()
	_, ok := m.nodes[label]
	if ok {
		delete(m.nodes, label)
		m.order = removeString(m.order, label)
		m.graph.RemoveVertex(label)
	}
	m.mu.Unlock()

	if ok {
		capitan.Emit(context.Background(), events.NodeForgotten,
			events.FieldLabel.Field(label),
		)
	}
}

// #endregion forget
