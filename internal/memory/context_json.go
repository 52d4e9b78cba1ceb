package memory

import (
	"encoding/json"
	"fmt"
)

// #region wire

type contextJSON struct {
	Data           []Field         `json:"data"`
	Tags           []Tag           `json:"tags,omitempty"`
	Normalizations []Normalization `json:"normalizations,omitempty"`
}

// MarshalJSON encodes the Context as ordered lists so field order survives a
// round trip.
func (c *Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(contextJSON{
		Data:           c.All(),
		Tags:           c.Tags(),
		Normalizations: c.Normalizations(),
	})
}

// UnmarshalJSON replaces c's contents with the encoded Context. Numbers
// decode as float64.
func (c *Context) UnmarshalJSON(b []byte) error {
	var w contextJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("decode context: %w", err)
	}
	*c = *NewContext()
	for _, f := range w.Data {
		c.Set(f.Key, f.Value)
	}
	for _, t := range w.Tags {
		c.AddTag(t.Label, t.Score, t.Meta)
	}
	for _, n := range w.Normalizations {
		c.SetNormalization(n.Key, n.Value, n.Meta)
	}
	return nil
}

// #endregion wire

// #region edges-wire

// EdgeEntry is one encoded edge.
type EdgeEntry struct {
	Target string `json:"target"`
	Value  any    `json:"value"`
}

// Entries returns the edges as ordered entries.
func (e *Edges) Entries() []EdgeEntry {
	out := make([]EdgeEntry, 0, e.Len())
	for _, t := range e.Targets() {
		out = append(out, EdgeEntry{Target: t, Value: e.values[t]})
	}
	return out
}

// MarshalJSON encodes edges as an ordered list of entries.
func (e *Edges) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Entries())
}

// UnmarshalJSON replaces e's contents with the encoded entries.
func (e *Edges) UnmarshalJSON(b []byte) error {
	var entries []EdgeEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("decode edges: %w", err)
	}
	*e = *NewEdges()
	for _, en := range entries {
		e.Set(en.Target, en.Value)
	}
	return nil
}

// #endregion edges-wire
