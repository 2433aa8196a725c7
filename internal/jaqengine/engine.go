// Package jaqengine implements the jq-style filter oracle behind the
// Jaq command (spec §4.5), using github.com/itchyny/gojq as the
// evaluator. It is deliberately narrow: Compile/Run only, so the
// pipeline runner never depends on gojq types directly (spec §9, "filter
// engine as oracle").
package jaqengine

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/itchyny/gojq"

	"github.com/flowforge/agent/internal/pipelineerr"
)

// globalVars are the two implicit global variable names reserved for
// future binding by the filter, per spec §4.5 step 2.
var globalVars = []string{"$ARGS", "$ENV"}

// Program is a compiled filter, ready to Run against an input value.
type Program struct {
	code *gojq.Code
}

// Compile parses and compiles filter once, reserving the ARGS/ENV
// global variables. Compile failures are reported as a single error
// kind regardless of the underlying evaluator's own error type.
func Compile(filter string) (*Program, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindJaqCoreError, "invalid filter", err)
	}
	code, err := gojq.Compile(query, gojq.WithVariables(globalVars))
	if err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindJaqCoreError, "failed to compile filter", err)
	}
	return &Program{code: code}, nil
}

// Run evaluates the program against the single input value, binding the
// two reserved globals to empty objects (no ARGS/ENV values are bound
// yet; the names exist only so filters may reference them without a
// compile error). It concatenates the UTF-8 rendering of every value the
// filter yields, with no separator, per spec §4.5 step 3-4.
func (p *Program) Run(input any) ([]byte, error) {
	emptyArgs := map[string]any{}
	emptyEnv := map[string]any{}

	iter := p.code.Run(input, emptyArgs, emptyEnv)

	var buf bytes.Buffer
	count := 0
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, pipelineerr.Wrap(pipelineerr.KindJaqCoreError, "filter evaluation failed", err)
		}
		s, err := valueToString(v)
		if err != nil {
			return nil, err
		}
		buf.WriteString(s)
		count++
	}
	if count == 0 {
		return nil, pipelineerr.New(pipelineerr.KindJaqCoreError, "filter produced no output")
	}
	return buf.Bytes(), nil
}

// valueToString renders a single yielded value the way the oracle's
// value-to-string conversion does: every value, strings included, is
// rendered as compact JSON (ground truth: jaq_json::Val::to_string()),
// so a string output comes out quoted.
func valueToString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", pipelineerr.Wrap(pipelineerr.KindJaqJSONError, "rendering filter output", err)
	}
	return string(b), nil
}

// ResultValue implements spec §4.5 step 5: if the concatenated bytes are
// valid UTF-8, return as a JSON string; else as an array of byte-numbers.
func ResultValue(b []byte) any {
	if utf8.Valid(b) {
		return string(b)
	}
	out := make([]any, len(b))
	for i, c := range b {
		out[i] = float64(c)
	}
	return out
}
