package scene

import (
	"fmt"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/vecmath"
)

// #region constants

const (
	// ExtractLimit caps how many entries each experience contributes to Extract.
	ExtractLimit = 5
	// HashSlots is the per-experience slot count of the hash vector.
	HashSlots = 5
	// LegacyFirstHashLimit is how many entries the first experience may hash
	// under the legacy layout.
	LegacyFirstHashLimit = 20
	// HashLength is the minimum length of a non-empty hash vector.
	HashLength = 54
)

// #endregion constants

// #region frame

// Frame is one observation: experiences keyed by source, in insertion order.
// The empty source key is a valid key; at most one experience can use it.
type Frame struct {
	keys        []string
	experiences map[string]*Experience
	legacyHash  bool
}

// FrameOption configures a Frame.
type FrameOption func(*Frame)

// WithLegacyHashLayout lets the first experience hash up to 20 entries while
// later experiences stay at 5. Only needed to match vectors produced by the
// older layout.
func WithLegacyHashLayout() FrameOption {
	return func(f *Frame) { f.legacyHash = true }
}

// NewFrame returns an empty frame.
func NewFrame(opts ...FrameOption) *Frame {
	f := &Frame{experiences: make(map[string]*Experience)}
	for _, o := range opts {
		o(f)
	}
	return f
}

// AddExperience stores exp under sourceKey, overwriting any experience with
// the same key. Returns ErrInvalidFeatureValue if a value is not a scalar.
func (f *Frame) AddExperience(exp *Experience, sourceKey string) error {
	if exp == nil {
		exp = NewExperience()
	}
	if err := exp.Validate(); err != nil {
		return fmt.Errorf("add experience %q: %w", sourceKey, err)
	}
	if _, ok := f.experiences[sourceKey]; !ok {
		f.keys = append(f.keys, sourceKey)
	}
	f.experiences[sourceKey] = exp
	return nil
}

// Experience returns the experience stored under sourceKey.
func (f *Frame) Experience(sourceKey string) (*Experience, bool) {
	e, ok := f.experiences[sourceKey]
	return e, ok
}

// Sources returns the source keys in insertion order.
func (f *Frame) Sources() []string {
	return append([]string(nil), f.keys...)
}

// Len returns the number of experiences.
func (f *Frame) Len() int {
	return len(f.keys)
}

// #endregion frame

// #region extract

// Extract flattens the frame: each experience contributes its first
// ExtractLimit entries, merged in experience order. A later experience
// overwrites an earlier entry with the same label, which keeps its position.
func (f *Frame) Extract() []Entry {
	index := make(map[string]int)
	var out []Entry
	for _, k := range f.keys {
		entries := f.experiences[k].Entries()
		if len(entries) > ExtractLimit {
			entries = entries[:ExtractLimit]
		}
		for _, e := range entries {
			if i, ok := index[e.Label]; ok {
				out[i] = e
				continue
			}
			index[e.Label] = len(out)
			out = append(out, e)
		}
	}
	return out
}

// #endregion extract

// #region hash

// HashArray returns the frame's fixed-layout feature vector. Each experience
// hashes up to HashSlots entry values (CRC32 x 1e-10) and is zero-padded to
// HashSlots. A non-empty result is right-padded with zeros to HashLength.
func (f *Frame) HashArray() []float64 {
	var vec []float64
	limit := HashSlots
	if f.legacyHash {
		limit = LegacyFirstHashLimit
	}

	for _, k := range f.keys {
		n := 0
		for _, e := range f.experiences[k].Entries() {
			if n >= limit {
				break
			}
			// Experience.Set bypasses Validate, so a non-scalar can still get
			// here. It keeps its slot as 0.
			s, err := memory.Stringify(e.Value)
			if err != nil {
				vec = append(vec, 0)
			} else {
				vec = append(vec, vecmath.HashFeature(s))
			}
			n++
		}
		for ; n < HashSlots; n++ {
			vec = append(vec, 0)
		}
		limit = HashSlots
	}

	if len(vec) > 0 && len(vec) < HashLength {
		vec = append(vec, make([]float64, HashLength-len(vec))...)
	}
	return vec
}

// #endregion hash

// #region process

// Process aggregates every entry of every experience by label and returns
// them sorted by total weight with summary statistics.
func (f *Frame) Process() Collection {
	var all []Entry
	for _, k := range f.keys {
		all = append(all, f.experiences[k].Entries()...)
	}
	return organize(all)
}

// #endregion process
