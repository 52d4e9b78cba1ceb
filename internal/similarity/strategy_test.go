package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
)

var (
	vecA = []float64{1, 2, 3}
	vecB = []float64{3, 1, 0.5}
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %.9f, got %.9f", name, want, got)
	}
}

func cosine(a, b []float64) float64 {
	return Cosine{}.Score(a, b, nil, nil)
}

func TestCosineSelfIsOne(t *testing.T) {
	approx(t, "cosine(v,v)", Cosine{}.Score(vecA, vecA, nil, nil), 1.0)
}

func TestWeightedCosine_DefaultsToCosine(t *testing.T) {
	ctx := memory.NewContext()
	got := WeightedCosine{}.Score(vecA, vecB, ctx, memory.NewContext())
	approx(t, "unset weights", got, cosine(vecA, vecB))
}

func TestWeightedCosine_Scales(t *testing.T) {
	a := memory.NewContext().Set("weight", 4)
	b := memory.NewContext().Set("weight", 0.25)
	approx(t, "sqrt(4*0.25)=1", WeightedCosine{}.Score(vecA, vecB, a, b), cosine(vecA, vecB))

	b.Set("weight", 1)
	approx(t, "sqrt(4)=2", WeightedCosine{}.Score(vecA, vecB, a, b), 2*cosine(vecA, vecB))
}

func TestWeightedCosine_ZeroWeightIsNeutral(t *testing.T) {
	a := memory.NewContext().Set("weight", 0)
	b := memory.NewContext().Set("weight", 9)
	approx(t, "zero product", WeightedCosine{}.Score(vecA, vecB, a, b), cosine(vecA, vecB))

	a.Set("weight", -3)
	approx(t, "negative clamps to zero", WeightedCosine{}.Score(vecA, vecB, a, b), cosine(vecA, vecB))
}

func TestSemanticDistance(t *testing.T) {
	a := memory.NewContext().Set("tag", "person")
	b := memory.NewContext().Set("tag", "person")
	approx(t, "matching tag", SemanticDistance{}.Score(vecA, vecB, a, b), cosine(vecA, vecB)+SemanticBoost)

	b.Set("tag", "place")
	approx(t, "different tag", SemanticDistance{}.Score(vecA, vecB, a, b), cosine(vecA, vecB))

	approx(t, "missing tag", SemanticDistance{}.Score(vecA, vecB, a, memory.NewContext()), cosine(vecA, vecB))

	b.Set("tag", "person")
	approx(t, "clamped", SemanticDistance{}.Score(vecA, vecA, a, b), 1.0)
}

func TestTemporalDecay(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := TemporalDecay{HalfLife: time.Hour, Now: func() time.Time { return now }}

	fresh := memory.NewContext()
	approx(t, "no timestamps", s.Score(vecA, vecB, fresh, fresh), cosine(vecA, vecB))

	old := memory.NewContext().Set("timestamp", now.Add(-2*time.Hour).Unix())
	want := cosine(vecA, vecB) * math.Sqrt(math.Exp(-2)*1)
	approx(t, "one aged", s.Score(vecA, vecB, old, fresh), want)

	oldTime := memory.NewContext().Set("timestamp", now.Add(-time.Hour))
	want = cosine(vecA, vecB) * math.Sqrt(math.Exp(-2)*math.Exp(-1))
	approx(t, "time.Time timestamp", s.Score(vecA, vecB, old, oldTime), want)
}

func TestTemporalDecay_DefaultHalfLife(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := TemporalDecay{Now: func() time.Time { return now }}
	ctx := memory.NewContext().Set("timestamp", float64(now.Unix()-3600))
	want := cosine(vecA, vecB) * math.Sqrt(math.Exp(-1)*math.Exp(-1))
	approx(t, "default half-life", s.Score(vecA, vecB, ctx, ctx), want)
}

func TestLevenshteinLabel(t *testing.T) {
	s := LevenshteinLabel{}
	a := memory.NewContext().Set("label", "kitten")
	b := memory.NewContext().Set("label", "sitting")
	approx(t, "kitten/sitting", s.Score(nil, nil, a, b), 1-3.0/7.0)
	approx(t, "exact", s.Score(nil, nil, a, a), 1.0)
	approx(t, "both empty", s.Score(nil, nil, memory.NewContext(), memory.NewContext()), 1.0)
	// vectors are ignored entirely
	approx(t, "ignores vectors", s.Score([]float64{1}, []float64{-1}, a, a), 1.0)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"cosine", "weighted_cosine", "semantic", "temporal_decay", "levenshtein_label"} {
		s, err := r.Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%s): %v", name, err)
			continue
		}
		if s.Name() != name {
			t.Errorf("expected name %s, got %s", name, s.Name())
		}
	}
	if _, err := r.Lookup("nope"); err == nil {
		t.Error("expected error for unknown strategy")
	}
	if n := len(r.Names()); n != 5 {
		t.Errorf("expected 5 names, got %d", n)
	}
}

func TestBlend(t *testing.T) {
	a := memory.NewContext().Set("label", "abc")
	b := memory.NewContext().Set("label", "abd")
	blend := Blend{Parts: []Part{
		{Strategy: Cosine{}, Weight: 3},
		{Strategy: LevenshteinLabel{}, Weight: 1},
		{Strategy: SemanticDistance{}, Weight: 0},
	}}
	want := (3*cosine(vecA, vecB) + 1*(1-1.0/3.0)) / 4
	approx(t, "blend", blend.Score(vecA, vecB, a, b), want)

	if got := (Blend{}).Score(vecA, vecB, a, b); got != 0 {
		t.Errorf("empty blend: expected 0, got %f", got)
	}
}
