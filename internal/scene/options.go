package scene

import (
	"time"

	"github.com/danielpatrickdp/scene-memory/internal/similarity"
)

// Defaults for a new Scene.
const (
	DefaultBufferSize        = 10
	DefaultVarianceTolerance = 0.7
	DefaultEdgeDecayRate     = 0.001
	DefaultEdgeWeight        = 1.0
)

// Option configures a Scene.
type Option func(*Scene)

// WithBufferSize sets the frame buffer capacity. Values below 1 are ignored.
func WithBufferSize(n int) Option {
	return func(s *Scene) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithVarianceTolerance sets the cosine threshold used by both clustering passes.
func WithVarianceTolerance(t float64) Option {
	return func(s *Scene) { s.tolerance = t }
}

// WithEdgeDecayRate sets the per-second decay rate of new temporal edges.
func WithEdgeDecayRate(r float64) Option {
	return func(s *Scene) {
		if r >= 0 {
			s.decayRate = r
		}
	}
}

// WithClock replaces time.Now for edge timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scene) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGroupStrategy sets the strategy RecallFromGroup uses when none is given.
func WithGroupStrategy(st similarity.Strategy) Option {
	return func(s *Scene) {
		if st != nil {
			s.strategy = st
		}
	}
}
