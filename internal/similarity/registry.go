package similarity

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
)

// #region registry

// Registry maps strategy names to instances. It is constructed explicitly and
// passed where needed; there is no package-level default.
type Registry struct {
	byName map[string]Strategy
}

// NewRegistry returns a registry holding the five built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Strategy)}
	for _, s := range []Strategy{
		Cosine{},
		WeightedCosine{},
		SemanticDistance{},
		TemporalDecay{},
		LevenshteinLabel{},
	} {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a strategy under its Name.
func (r *Registry) Register(s Strategy) {
	r.byName[s.Name()] = s
}

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (Strategy, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown similarity strategy %q", name)
	}
	return s, nil
}

// Names returns registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// #endregion registry

// #region blend

// Part is one weighted member of a Blend.
type Part struct {
	Strategy Strategy
	Weight   float64
}

// Blend combines strategies as a weight-normalized sum. Parts with
// non-positive weight are ignored; an empty blend scores 0.
type Blend struct {
	Parts []Part
}

func (Blend) Name() string { return "blend" }

func (b Blend) Score(vecA, vecB []float64, ctxA, ctxB *memory.Context) float64 {
	var sum, total float64
	for _, p := range b.Parts {
		if p.Weight <= 0 || p.Strategy == nil {
			continue
		}
		sum += p.Weight * p.Strategy.Score(vecA, vecB, ctxA, ctxB)
		total += p.Weight
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// #endregion blend
