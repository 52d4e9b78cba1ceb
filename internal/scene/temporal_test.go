package scene

import (
	"math"
	"testing"
	"time"
)

func TestTemporalEdgeDecay(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	e := NewTemporalEdge(2.0, 0.001, t0)

	if got := e.WeightAt(t0); got != 2.0 {
		t.Errorf("weight at creation: expected 2.0, got %v", got)
	}
	want := 2.0 * math.Exp(-1)
	if got := e.WeightAt(t0.Add(1000 * time.Second)); math.Abs(got-want) > 1e-9 {
		t.Errorf("weight after 1000s: expected %v, got %v", want, got)
	}
}

func TestTemporalEdgeReinforceResetsClock(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	e := NewTemporalEdge(1.0, 0.01, t0)
	t1 := t0.Add(time.Minute)
	e.ReinforceAt(0.5, t1)

	if e.InitialWeight != 1.5 {
		t.Errorf("expected weight 1.5, got %v", e.InitialWeight)
	}
	if !e.Timestamp.Equal(t1) {
		t.Errorf("expected timestamp reset to %v, got %v", t1, e.Timestamp)
	}
	if got := e.WeightAt(t1); got != 1.5 {
		t.Errorf("expected undecayed 1.5 right after reinforcement, got %v", got)
	}
}

func TestTemporalEdgeZeroRateNeverDecays(t *testing.T) {
	t0 := time.Unix(0, 0)
	e := NewTemporalEdge(1.0, 0, t0)
	if got := e.WeightAt(t0.Add(24 * time.Hour)); got != 1.0 {
		t.Errorf("expected 1.0, got %v", got)
	}
}
