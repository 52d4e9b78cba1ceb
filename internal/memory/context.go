package memory

// #region types

// Tag is a labelled score attached to a Context.
type Tag struct {
	Label string         `json:"label"`
	Score float64        `json:"score"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// Normalization is a canonical form recorded for one data key.
type Normalization struct {
	Key   string         `json:"key"`
	Value any            `json:"value"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// Field is one key/value pair of Context data.
type Field struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Context is an insertion-ordered key/value bag with tags and normalizations,
// attached to every memory and observation. The zero value is not usable;
// construct with NewContext.
type Context struct {
	keys      []string
	data      map[string]any
	tagOrder  []string
	tags      map[string]Tag
	normOrder []string
	norms     map[string]Normalization
}

// #endregion types

// #region constructor

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{
		data:  make(map[string]any),
		tags:  make(map[string]Tag),
		norms: make(map[string]Normalization),
	}
}

// ContextFrom builds a Context from fields, in order.
func ContextFrom(fields ...Field) *Context {
	c := NewContext()
	for _, f := range fields {
		c.Set(f.Key, f.Value)
	}
	return c
}

// #endregion constructor

// #region data

// Set stores value under key. Overwriting keeps the key's original position.
func (c *Context) Set(key string, value any) *Context {
	if _, ok := c.data[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.data[key] = value
	return c
}

// Get returns the value for key, or def on miss.
func (c *Context) Get(key string, def any) any {
	if v, ok := c.data[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is set.
func (c *Context) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Float returns the numeric value for key, or def when absent or non-numeric.
func (c *Context) Float(key string, def float64) float64 {
	if f, ok := AsFloat(c.data[key]); ok {
		return f
	}
	return def
}

// String returns the string value for key, or def when absent or not a string.
func (c *Context) String(key, def string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return def
}

// All returns the data fields in insertion order.
func (c *Context) All() []Field {
	out := make([]Field, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Field{Key: k, Value: c.data[k]})
	}
	return out
}

// Keys returns data keys in insertion order.
func (c *Context) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Values returns data values in insertion order.
func (c *Context) Values() []any {
	out := make([]any, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.data[k])
	}
	return out
}

// Len returns the number of data fields.
func (c *Context) Len() int {
	return len(c.keys)
}

// Merge copies every data field of other into c; other's values win.
func (c *Context) Merge(other *Context) *Context {
	if other == nil {
		return c
	}
	for _, k := range other.keys {
		c.Set(k, other.data[k])
	}
	return c
}

// #endregion data

// #region tags

// AddTag sets or replaces the tag for label.
func (c *Context) AddTag(label string, score float64, meta map[string]any) *Context {
	if _, ok := c.tags[label]; !ok {
		c.tagOrder = append(c.tagOrder, label)
	}
	c.tags[label] = Tag{Label: label, Score: score, Meta: meta}
	return c
}

// RemoveTag drops the tag for label, if present.
func (c *Context) RemoveTag(label string) *Context {
	if _, ok := c.tags[label]; !ok {
		return c
	}
	delete(c.tags, label)
	c.tagOrder = removeString(c.tagOrder, label)
	return c
}

// HasTag reports whether label is tagged.
func (c *Context) HasTag(label string) bool {
	_, ok := c.tags[label]
	return ok
}

// Tag returns the tag for label, or def on miss.
func (c *Context) Tag(label string, def Tag) Tag {
	if t, ok := c.tags[label]; ok {
		return t
	}
	return def
}

// SetTags replaces all tags.
func (c *Context) SetTags(tags []Tag) *Context {
	c.tagOrder = nil
	c.tags = make(map[string]Tag, len(tags))
	for _, t := range tags {
		c.AddTag(t.Label, t.Score, t.Meta)
	}
	return c
}

// Tags returns all tags in insertion order.
func (c *Context) Tags() []Tag {
	out := make([]Tag, 0, len(c.tagOrder))
	for _, l := range c.tagOrder {
		out = append(out, c.tags[l])
	}
	return out
}

// #endregion tags

// #region normalizations

// SetNormalization records the canonical value for key.
func (c *Context) SetNormalization(key string, value any, meta map[string]any) *Context {
	if _, ok := c.norms[key]; !ok {
		c.normOrder = append(c.normOrder, key)
	}
	c.norms[key] = Normalization{Key: key, Value: value, Meta: meta}
	return c
}

// Normalization returns the normalization for key, or def on miss.
func (c *Context) Normalization(key string, def Normalization) Normalization {
	if n, ok := c.norms[key]; ok {
		return n
	}
	return def
}

// NormalizedValue returns only the normalized value for key, or def on miss.
func (c *Context) NormalizedValue(key string, def any) any {
	if n, ok := c.norms[key]; ok {
		return n.Value
	}
	return def
}

// Normalizations returns all normalizations in insertion order.
func (c *Context) Normalizations() []Normalization {
	out := make([]Normalization, 0, len(c.normOrder))
	for _, k := range c.normOrder {
		out = append(out, c.norms[k])
	}
	return out
}

// #endregion normalizations

// #region clone

// Clone returns a copy of c. Values and meta maps are copied shallowly.
func (c *Context) Clone() *Context {
	out := NewContext()
	for _, k := range c.keys {
		out.Set(k, c.data[k])
	}
	for _, l := range c.tagOrder {
		t := c.tags[l]
		out.AddTag(t.Label, t.Score, t.Meta)
	}
	for _, k := range c.normOrder {
		n := c.norms[k]
		out.SetNormalization(n.Key, n.Value, n.Meta)
	}
	return out
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// #endregion clone
