package memory

import (
	"encoding/json"
	"strings"

	"github.com/danielpatrickdp/scene-memory/internal/vecmath"
)

// ReinforcementKey is the Context field holding a node's reinforcement count.
const ReinforcementKey = "reinforcement"

// #region node

// MemoryNode is a labelled vertex in working memory. Its label never changes;
// WorkingMemory replaces the whole node when its edges change.
type MemoryNode struct {
	label   string
	edges   *Edges
	context *Context
}

// NewMemoryNode builds a node. Nil edges or context default to empty ones.
// The node takes ownership of both.
func NewMemoryNode(label string, edges *Edges, ctx *Context) *MemoryNode {
	if edges == nil {
		edges = NewEdges()
	}
	if ctx == nil {
		ctx = NewContext()
	}
	return &MemoryNode{label: label, edges: edges, context: ctx}
}

// Label returns the node's label.
func (n *MemoryNode) Label() string { return n.label }

// Edges returns the node's adjacency. Callers must treat it as read-only.
func (n *MemoryNode) Edges() *Edges { return n.edges }

// Context returns the node's payload.
func (n *MemoryNode) Context() *Context { return n.context }

// Reinforcement returns the current reinforcement counter.
func (n *MemoryNode) Reinforcement() float64 {
	return n.context.Float(ReinforcementKey, 0)
}

// Reinforce bumps the reinforcement counter by amount, creating it at 0 first
// if absent.
func (n *MemoryNode) Reinforce(amount float64) {
	n.context.Set(ReinforcementKey, n.Reinforcement()+amount)
}

// MarshalJSON encodes the node for inspection surfaces.
func (n *MemoryNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label   string   `json:"label"`
		Edges   *Edges   `json:"edges"`
		Context *Context `json:"context"`
	}{n.label, n.edges, n.context})
}

// #endregion node

// #region similarity

// Similarity scores the node's context against other, dispatching on the
// shape of both value lists:
//   - both all-numeric: cosine over matching positions
//   - both all-string: normalized Levenshtein of the space-joined values
//   - otherwise: equal key/value pairs over the union of keys
//
// Two empty contexts score 1.0.
func (n *MemoryNode) Similarity(other *Context) float64 {
	if other == nil {
		other = NewContext()
	}
	a, b := n.context.Values(), other.Values()
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	if va, ok := numericValues(a); ok {
		if vb, ok := numericValues(b); ok {
			return vecmath.Cosine(va, vb)
		}
	}
	if sa, ok := stringValues(a); ok {
		if sb, ok := stringValues(b); ok {
			return vecmath.LevenshteinSimilarity(strings.Join(sa, " "), strings.Join(sb, " "))
		}
	}
	return pairOverlap(n.context, other)
}

func numericValues(values []any) ([]float64, bool) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := AsFloat(v)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func stringValues(values []any) ([]string, bool) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func pairOverlap(a, b *Context) float64 {
	union := make(map[string]struct{}, a.Len()+b.Len())
	shared := 0
	for _, f := range a.All() {
		union[f.Key] = struct{}{}
		if b.Has(f.Key) && looseEqual(f.Value, b.Get(f.Key, nil)) {
			shared++
		}
	}
	for _, k := range b.Keys() {
		union[k] = struct{}{}
	}
	if len(union) == 0 {
		return 1.0
	}
	return float64(shared) / float64(len(union))
}

// #endregion similarity
