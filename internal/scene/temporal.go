package scene

import (
	"math"
	"time"
)

// #region temporal-edge

// TemporalEdge is a decaying association between two co-occurring entities of
// a group. Its weight decays exponentially with time since the last
// reinforcement.
type TemporalEdge struct {
	InitialWeight  float64   `json:"initial_weight"`
	DecayRate      float64   `json:"decay_rate"` // per second
	Timestamp      time.Time `json:"timestamp"`
	LastSimilarity float64   `json:"last_similarity"`
}

// NewTemporalEdge returns an edge stamped at the given time.
func NewTemporalEdge(initialWeight, decayRate float64, at time.Time) *TemporalEdge {
	return &TemporalEdge{
		InitialWeight: initialWeight,
		DecayRate:     decayRate,
		Timestamp:     at,
	}
}

// WeightAt returns InitialWeight * exp(-DecayRate * age) at the given time.
func (e *TemporalEdge) WeightAt(now time.Time) float64 {
	return e.InitialWeight * e.decayAt(now)
}

// WeightNow is WeightAt(time.Now()).
func (e *TemporalEdge) WeightNow() float64 {
	return e.WeightAt(time.Now())
}

// decayAt returns the multiplicative decay factor for the edge's age.
func (e *TemporalEdge) decayAt(now time.Time) float64 {
	age := now.Sub(e.Timestamp).Seconds()
	return math.Exp(-e.DecayRate * age)
}

// ReinforceAt adds amount to InitialWeight and resets the timestamp.
func (e *TemporalEdge) ReinforceAt(amount float64, at time.Time) {
	e.InitialWeight += amount
	e.Timestamp = at
}

// Reinforce is ReinforceAt(amount, time.Now()).
func (e *TemporalEdge) Reinforce(amount float64) {
	e.ReinforceAt(amount, time.Now())
}

// #endregion temporal-edge
