package scene

import (
	"fmt"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
)

// #region types

// Entry is one labelled, weighted value inside an experience.
type Entry struct {
	Label  string  `json:"label"`
	Value  any     `json:"value"`
	Weight float64 `json:"weight"`
}

// Experience is an ordered set of entries keyed by label, as produced by an
// upstream scanner or reader.
type Experience struct {
	order  []string
	values map[string]Entry
}

// #endregion types

// #region constructor

// NewExperience returns an empty experience.
func NewExperience() *Experience {
	return &Experience{values: make(map[string]Entry)}
}

// ExperienceOf builds an experience from entries, in order.
func ExperienceOf(entries ...Entry) *Experience {
	e := NewExperience()
	for _, en := range entries {
		e.Set(en.Label, en.Value, en.Weight)
	}
	return e
}

// #endregion constructor

// #region access

// Set stores an entry for label. Overwriting keeps the original position.
func (e *Experience) Set(label string, value any, weight float64) *Experience {
	if _, ok := e.values[label]; !ok {
		e.order = append(e.order, label)
	}
	e.values[label] = Entry{Label: label, Value: value, Weight: weight}
	return e
}

// Entries returns the entries in insertion order.
func (e *Experience) Entries() []Entry {
	out := make([]Entry, 0, len(e.order))
	for _, l := range e.order {
		out = append(out, e.values[l])
	}
	return out
}

// Len returns the number of entries.
func (e *Experience) Len() int {
	return len(e.order)
}

// Validate checks every value is a scalar the feature hash can coerce.
func (e *Experience) Validate() error {
	for _, l := range e.order {
		if !memory.IsScalar(e.values[l].Value) {
			return fmt.Errorf("entry %q: %w: %T", l, memory.ErrInvalidFeatureValue, e.values[l].Value)
		}
	}
	return nil
}

// #endregion access
