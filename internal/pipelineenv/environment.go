// Package pipelineenv implements the engine's ordered key to JSON-value
// environment, the associative container threaded between commands,
// tasks and pipelines. It plays the role the teacher's shell.Environment
// plays for process execution, but values are arbitrary JSON rather than
// strings, and insertion order is part of the contract (env dumps must be
// deterministic).
package pipelineenv

import (
	"encoding/json"
	"strconv"

	"github.com/flowforge/agent/internal/ordered"
)

// Well-known reserved keys managed by the engine.
const (
	KeyCmdCurrentContent  = "CMD_CURRENT_CONTENT"
	KeyCmdPreviousContent = "CMD_PREVIOUS_CONTENT"
	KeyCmdPreviousType    = "CMD_PREVIOUS_TYPE"
	KeyTaskCurrentName    = "TASK_CURRENT_NAME"
	KeyTaskPreviousName   = "TASK_PREVIOUS_NAME"
)

// Environment is an ordered string-to-JSON-value map. The zero value is
// not usable; construct with New.
type Environment struct {
	m *ordered.Map[any]
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{m: ordered.NewMap[any](8)}
}

// FromMap builds an Environment from a plain map, in the iteration order
// Go's map range happens to produce. Callers that care about
// deterministic order should build the Environment key-by-key via Insert
// instead (used for decoding ordered YAML/JSON documents).
func FromMap(values map[string]any) *Environment {
	e := New()
	for k, v := range values {
		e.Insert(k, v)
	}
	return e
}

// Get returns the value for key and whether it is present.
func (e *Environment) Get(key string) (any, bool) {
	if e == nil {
		return nil, false
	}
	return e.m.Get(key)
}

// GetString returns the value for key if it is a JSON string.
func (e *Environment) GetString(key string) (string, bool) {
	v, ok := e.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Insert upserts key, preserving its existing position if already
// present.
func (e *Environment) Insert(key string, value any) {
	e.m.Set(key, value)
}

// Remove deletes key if present.
func (e *Environment) Remove(key string) {
	e.m.Delete(key)
}

// Len reports the number of entries.
func (e *Environment) Len() int {
	if e == nil {
		return 0
	}
	return e.m.Len()
}

// Keys returns the keys in insertion order.
func (e *Environment) Keys() []string {
	if e == nil {
		return nil
	}
	return e.m.Keys()
}

// Range iterates entries in insertion order.
func (e *Environment) Range(f func(key string, value any) error) error {
	if e == nil {
		return nil
	}
	return e.m.Range(f)
}

// Clone returns a shallow copy.
func (e *Environment) Clone() *Environment {
	if e == nil {
		return New()
	}
	return &Environment{m: e.m.Clone()}
}

// Extend merges other into e: A ⊕ B, copy of A then each (k,v) of B
// upserted, B's position used if k was absent from A.
func (e *Environment) Extend(other *Environment) {
	if other == nil {
		return
	}
	e.m.Extend(other.m)
}

// Merge returns a new Environment that is e extended by other, without
// mutating either operand. This is the `A ⊕ B` operator from the data
// model section: copy of A, then each (k,v) in B upserted.
func Merge(a, b *Environment) *Environment {
	out := a.Clone()
	out.Extend(b)
	return out
}

// ToJSONMap renders the environment as a plain map, suitable for
// json.Marshal. Order is not preserved by the result type; callers that
// need ordered output should iterate with Range instead.
func (e *Environment) ToJSONMap() map[string]any {
	out := make(map[string]any, e.Len())
	_ = e.Range(func(k string, v any) error {
		out[k] = v
		return nil
	})
	return out
}

// StringifyValue renders a single JSON value the way make_subst_map
// renders env entries for the interpolator: strings pass through
// verbatim, numbers stringify in decimal, everything else is compact
// JSON. See spec §4.1 — the canonical (non-ambiguous) rule, as opposed to
// the object-flattening variant observed in one source revision.
func StringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// SubstMap projects the environment into a flat string map for the
// interpolator, per make_subst_map in spec §4.1.
func (e *Environment) SubstMap() map[string]string {
	out := make(map[string]string, e.Len())
	_ = e.Range(func(k string, v any) error {
		out[k] = StringifyValue(v)
		return nil
	})
	return out
}
