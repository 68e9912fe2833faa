package metadata

import (
	"bytes"
	"encoding/json"
	"iter"

	"arrimeta/internal/failures"
)

// Metadata is an ordered, read-only mapping from field name to decoded value.
type Metadata struct {
	names  []string
	values map[string]Value
}

// Builder accumulates fields in insertion order. Setting an existing name
// replaces its value without changing its position.
type Builder struct {
	names  []string
	values map[string]Value
}

func NewBuilder(capacity int) *Builder {
	return &Builder{
		names:  make([]string, 0, capacity),
		values: make(map[string]Value, capacity),
	}
}

func (b *Builder) Set(name string, value Value) {
	if _, ok := b.values[name]; !ok {
		b.names = append(b.names, name)
	}
	b.values[name] = value
}

// Metadata freezes the builder contents. The builder must not be reused.
func (b *Builder) Metadata() *Metadata {
	m := &Metadata{names: b.names, values: b.values}
	b.names, b.values = nil, nil
	return m
}

func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Names returns the field names in order.
func (m *Metadata) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *Metadata) Get(name string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[name]
	return v, ok
}

// All iterates name/value pairs in order.
func (m *Metadata) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, name := range m.names {
			if !yield(name, m.values[name]) {
				return
			}
		}
	}
}

// Equal reports whether both mappings hold the same names in the same order
// with equal values.
func (m *Metadata) Equal(other *Metadata) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for i, name := range m.names {
		if other.names[i] != name {
			return false
		}
		if !m.values[name].Equal(other.values[name]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes an object whose keys follow field order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := m.values[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Select projects m down to names, in the order given. A name missing from m
// is an internal consistency fault: callers are expected to pass names already
// validated against the schema.
func Select(m *Metadata, names []string) (*Metadata, error) {
	b := NewBuilder(len(names))
	for _, name := range names {
		v, ok := m.Get(name)
		if !ok {
			return nil, failures.Wrap(failures.ErrUnknownField, "select", "", name, nil)
		}
		b.Set(name, v)
	}
	return b.Metadata(), nil
}
