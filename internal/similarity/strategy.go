// Package similarity provides pluggable scoring policies comparing two feature
// vectors together with the Contexts they were derived from. Each strategy is
// a distinct, fixed formula; callers choose or blend them.
package similarity

import (
	"math"
	"time"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/vecmath"
)

// #region interface

// Strategy scores two vectors and their source contexts. Scores are
// conceptually in [0,1] but not every strategy clamps.
type Strategy interface {
	Name() string
	Score(vecA, vecB []float64, ctxA, ctxB *memory.Context) float64
}

// Context field names read by the strategies.
const (
	FieldWeight    = "weight"
	FieldTag       = "tag"
	FieldTimestamp = "timestamp"
	FieldLabel     = "label"
)

// DefaultHalfLife is TemporalDecay's default decay constant.
const DefaultHalfLife = time.Hour

// SemanticBoost is added by SemanticDistance when both tags match.
const SemanticBoost = 0.1

// #endregion interface

// #region cosine

// Cosine is plain vector cosine over the overlapping prefix.
type Cosine struct{}

func (Cosine) Name() string { return "cosine" }

func (Cosine) Score(vecA, vecB []float64, _, _ *memory.Context) float64 {
	return vecmath.Cosine(vecA, vecB)
}

// #endregion cosine

// #region weighted-cosine

// WeightedCosine scales cosine by sqrt(max(wA,0) * max(wB,0)), reading each
// context's "weight" field (default 1). A zero product leaves the cosine
// unscaled rather than suppressing it.
type WeightedCosine struct{}

func (WeightedCosine) Name() string { return "weighted_cosine" }

func (WeightedCosine) Score(vecA, vecB []float64, ctxA, ctxB *memory.Context) float64 {
	wA := math.Max(fieldFloat(ctxA, FieldWeight, 1), 0)
	wB := math.Max(fieldFloat(ctxB, FieldWeight, 1), 0)
	scale := 1.0
	if p := wA * wB; p != 0 {
		scale = math.Sqrt(p)
	}
	return vecmath.Cosine(vecA, vecB) * scale
}

// #endregion weighted-cosine

// #region semantic

// SemanticDistance adds SemanticBoost to cosine when both contexts carry the
// same non-nil "tag" value, capped at 1.0.
type SemanticDistance struct{}

func (SemanticDistance) Name() string { return "semantic" }

func (SemanticDistance) Score(vecA, vecB []float64, ctxA, ctxB *memory.Context) float64 {
	score := vecmath.Cosine(vecA, vecB)
	if sameTag(ctxA, ctxB) {
		score += SemanticBoost
	}
	return math.Min(score, 1.0)
}

func sameTag(a, b *memory.Context) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := a.Get(FieldTag, nil), b.Get(FieldTag, nil)
	if ta == nil || tb == nil {
		return false
	}
	sa, errA := memory.Stringify(ta)
	sb, errB := memory.Stringify(tb)
	return errA == nil && errB == nil && sa == sb
}

// #endregion semantic

// #region temporal-decay

// TemporalDecay scales cosine by sqrt(decay(ageA) * decay(ageB)) with
// decay(age) = exp(-age/HalfLife). Age comes from each context's "timestamp"
// field (unix seconds or time.Time); a missing timestamp means age zero.
type TemporalDecay struct {
	HalfLife time.Duration
	Now      func() time.Time
}

func (TemporalDecay) Name() string { return "temporal_decay" }

func (s TemporalDecay) Score(vecA, vecB []float64, ctxA, ctxB *memory.Context) float64 {
	halfLife := s.HalfLife
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	decay := func(ctx *memory.Context) float64 {
		age := now.Sub(timestampOf(ctx, now)).Seconds()
		return math.Exp(-age / halfLife.Seconds())
	}
	return vecmath.Cosine(vecA, vecB) * math.Sqrt(decay(ctxA)*decay(ctxB))
}

func timestampOf(ctx *memory.Context, now time.Time) time.Time {
	if ctx == nil {
		return now
	}
	switch v := ctx.Get(FieldTimestamp, nil).(type) {
	case nil:
		return now
	case time.Time:
		return v
	default:
		if f, ok := memory.AsFloat(v); ok {
			sec, frac := math.Modf(f)
			return time.Unix(int64(sec), int64(frac*1e9))
		}
		return now
	}
}

// #endregion temporal-decay

// #region levenshtein-label

// LevenshteinLabel ignores the vectors and returns 1 - normalized edit
// distance between the contexts' "label" fields.
type LevenshteinLabel struct{}

func (LevenshteinLabel) Name() string { return "levenshtein_label" }

func (LevenshteinLabel) Score(_, _ []float64, ctxA, ctxB *memory.Context) float64 {
	return vecmath.LevenshteinSimilarity(labelOf(ctxA), labelOf(ctxB))
}

func labelOf(ctx *memory.Context) string {
	if ctx == nil {
		return ""
	}
	s, err := memory.Stringify(ctx.Get(FieldLabel, nil))
	if err != nil {
		return ""
	}
	return s
}

// #endregion levenshtein-label

// #region helpers

func fieldFloat(ctx *memory.Context, key string, def float64) float64 {
	if ctx == nil {
		return def
	}
	return ctx.Float(key, def)
}

// #endregion helpers
