// Package ordered implements an insertion-order-preserving associative
// container, the way github.com/buildkite/agent/v3/internal/ordered backs
// pipeline.Pipeline.Env. A plain Go map loses iteration order, which the
// engine's env-dump contract (§3 of the pipeline spec) depends on.
package ordered

// Map is a string-keyed map that remembers insertion order. Updating an
// existing key keeps its original position; new keys are appended.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// NewMap creates an empty Map with room for size entries.
func NewMap[V any](size int) *Map[V] {
	return &Map[V]{
		keys:   make([]string, 0, size),
		values: make(map[string]V, size),
	}
}

// Get returns the value for key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set upserts key, preserving its existing position if already present.
func (m *Map[V]) Set(key string, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key, if present.
func (m *Map[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// IsZero reports whether m is nil or empty, mirroring the teacher's
// ordered.MapSS.IsZero used to skip emitting an empty "env:" block.
func (m *Map[V]) IsZero() bool {
	return m.Len() == 0
}

// Keys returns the keys in insertion order. The slice must not be mutated.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Range calls f for every entry in insertion order, stopping early if f
// returns an error.
func (m *Map[V]) Range(f func(key string, value V) error) error {
	if m == nil {
		return nil
	}
	for _, k := range m.keys {
		if err := f(k, m.values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a shallow copy of m.
func (m *Map[V]) Clone() *Map[V] {
	if m == nil {
		return NewMap[V](0)
	}
	out := NewMap[V](m.Len())
	out.keys = append(out.keys[:0:0], m.keys...)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Extend upserts every entry of other into m, in other's order. Existing
// keys keep their position in m; new keys are appended.
func (m *Map[V]) Extend(other *Map[V]) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		m.Set(k, other.values[k])
	}
}
