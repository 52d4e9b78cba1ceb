package memory

import (
	"errors"
	"fmt"
	"math"
)

// ErrNegativeWeight is returned when an edge weight is negative, NaN or
// infinite. Path search requires non-negative finite costs.
var ErrNegativeWeight = errors.New("edge weight must be a non-negative finite number")

// DefaultEdgeCost is used for edges whose value carries no usable weight.
const DefaultEdgeCost = 1.0

// #region edges

// Edges is an insertion-ordered adjacency map from target label to edge
// value. A value is normally a float64 weight but may also be a structured
// payload such as map[string]any{"weight": 0.5}.
type Edges struct {
	order  []string
	values map[string]any
}

// NewEdges returns an empty edge set.
func NewEdges() *Edges {
	return &Edges{values: make(map[string]any)}
}

// EdgesOf builds an edge set from plain weights, ordered by the targets slice.
func EdgesOf(targets []string, weights map[string]float64) *Edges {
	e := NewEdges()
	for _, t := range targets {
		e.Set(t, weights[t])
	}
	return e
}

// Set stores value for target, replacing any prior value in place.
func (e *Edges) Set(target string, value any) *Edges {
	if _, ok := e.values[target]; !ok {
		e.order = append(e.order, target)
	}
	e.values[target] = value
	return e
}

// Get returns the raw edge value for target.
func (e *Edges) Get(target string) (any, bool) {
	v, ok := e.values[target]
	return v, ok
}

// Delete removes the edge to target, if present.
func (e *Edges) Delete(target string) {
	if _, ok := e.values[target]; !ok {
		return
	}
	delete(e.values, target)
	e.order = removeString(e.order, target)
}

// Targets returns edge targets in insertion order.
func (e *Edges) Targets() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.order...)
}

// Len returns the number of edges.
func (e *Edges) Len() int {
	if e == nil {
		return 0
	}
	return len(e.order)
}

// Cost returns the traversal cost of the edge to target and whether it exists.
func (e *Edges) Cost(target string) (float64, bool) {
	v, ok := e.values[target]
	if !ok {
		return 0, false
	}
	return EdgeCost(v), true
}

// Clone returns an independent copy of the edge set.
func (e *Edges) Clone() *Edges {
	out := NewEdges()
	if e == nil {
		return out
	}
	for _, t := range e.order {
		out.Set(t, e.values[t])
	}
	return out
}

// Validate checks that every edge has a usable cost.
func (e *Edges) Validate() error {
	if e == nil {
		return nil
	}
	for _, t := range e.order {
		if err := validateWeight(EdgeCost(e.values[t])); err != nil {
			return fmt.Errorf("edge to %q: %w", t, err)
		}
	}
	return nil
}

// #endregion edges

// #region cost

// EdgeCost resolves an edge value to a path cost: the value itself when
// numeric, else a numeric "weight" field of a structured payload, else
// DefaultEdgeCost.
func EdgeCost(v any) float64 {
	if f, ok := AsFloat(v); ok {
		return f
	}
	if m, ok := v.(map[string]any); ok {
		if f, ok := AsFloat(m["weight"]); ok {
			return f
		}
	}
	return DefaultEdgeCost
}

func validateWeight(w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: %v", ErrNegativeWeight, w)
	}
	return nil
}

// #endregion cost
