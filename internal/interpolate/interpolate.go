// Package interpolate implements the engine's variable substitution and
// prior-output fallback, wrapping github.com/buildkite/interpolate (the
// same substitution primitive the teacher uses for pipeline.yml env
// blocks) with the fixed-point/fallback decision table from spec §4.2.
package interpolate

import (
	"encoding/json"
	"strings"

	bkinterpolate "github.com/buildkite/interpolate"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
)

// PreviousSentinel is the "-" string meaning "read previous output".
const PreviousSentinel = "-"

// maxPasses bounds the fixed-point iteration performed by the
// standalone Interpolate command.
const maxPasses = 10

// mapEnv adapts a plain string map to buildkite/interpolate's Env
// interface, the substitution map produced by pipelineenv's SubstMap.
type mapEnv map[string]string

func (m mapEnv) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapEnv) Exists(key string) bool {
	_, ok := m[key]
	return ok
}

// SubstituteOnce runs a single ${NAME}/$NAME substitution pass over s
// against env's projected substitution map. Used by the HTTP command,
// which interpolates method/URL/body exactly once (spec §4.4 step 2),
// as opposed to the standalone Interpolate command's fixed-point
// iteration.
func SubstituteOnce(s string, env *pipelineenv.Environment, ignoreErrors bool) (string, error) {
	return substitute(s, env.SubstMap(), ignoreErrors)
}

// SubstituteValueOnce applies one substitution pass to a non-string JSON
// value by serialising it, interpolating, then reparsing (spec §4.4
// step 2).
func SubstituteValueOnce(v any, env *pipelineenv.Environment, ignoreErrors bool) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "encoding value for interpolation", err)
	}
	out, err := substitute(string(b), env.SubstMap(), ignoreErrors)
	if err != nil {
		return nil, err
	}
	var result any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "reparsing interpolated value", err)
	}
	return result, nil
}

// substitute runs one pass of ${VAR}/$VAR substitution over s using
// subst. When ignoreErrors is true, a parse error from the underlying
// library is suppressed and s is returned verbatim. Note the divergence
// from spec §4.2 this carries: buildkite/interpolate.Interpolate (used
// here exactly as the teacher uses it) expands an unknown $NAME/${NAME}
// to the empty string rather than failing, so a missing name never
// actually reaches the ignoreErrors branch — see DESIGN.md's Open
// Question ledger.
func substitute(s string, subst map[string]string, ignoreErrors bool) (string, error) {
	out, err := bkinterpolate.Interpolate(mapEnv(subst), s)
	if err == nil {
		return out, nil
	}
	if ignoreErrors {
		return s, nil
	}
	return "", pipelineerr.Wrap(pipelineerr.KindSubstError, "variable substitution failed", err)
}

// Content mirrors the engine's CommonContent: an optional JSON value and
// an optional environment delta. Nil Content means absent; the zero
// value of Env means "no env delta".
type Content struct {
	Content any
	Env     *pipelineenv.Environment
}

// HasContent reports whether Content.Content is present (not absent —
// note that JSON null is itself a present value distinct from Go nil
// meaning "absent"; callers that need to distinguish should check
// ContentSet rather than this type alone). The engine represents
// "absent" as a Go nil interface since JSON null is a representable
// value in its own right (see InterpolateInputWithEnv below, which takes
// a present flag).
func (c Content) HasContent() bool {
	return c.Content != nil
}

// InterpolateInputWithEnv implements the decision table of spec §4.2.
// contentPresent distinguishes "field absent from the document" (false)
// from "field present and JSON null" (true, content == nil).
func InterpolateInputWithEnv(contentPresent bool, content any, env *pipelineenv.Environment, ignoreErrors bool) (any, error) {
	prevStr, havePrevStr := env.GetString(pipelineenv.KeyCmdPreviousContent)
	_, havePrev := env.Get(pipelineenv.KeyCmdPreviousContent)
	subst := env.SubstMap()

	if !contentPresent {
		if havePrev {
			if havePrevStr {
				out, err := substitute(prevStr, subst, ignoreErrors)
				if err != nil {
					return nil, err
				}
				return out, nil
			}
			return nil, nil
		}
		return nil, pipelineerr.NotFound("input to provide")
	}

	switch v := content.(type) {
	case string:
		if v == "" {
			return nil, pipelineerr.NotFound("input to provide")
		}
		if v == PreviousSentinel {
			if havePrevStr {
				out, err := substitute(prevStr, subst, ignoreErrors)
				if err != nil {
					return nil, err
				}
				return out, nil
			}
			out, err := substitute(v, subst, ignoreErrors)
			if err != nil {
				return nil, err
			}
			return out, nil
		}
		out, err := substitute(v, subst, ignoreErrors)
		if err != nil {
			return nil, err
		}
		return out, nil
	case nil:
		if havePrevStr {
			out, err := substitute(prevStr, subst, ignoreErrors)
			if err != nil {
				return nil, err
			}
			return out, nil
		}
		return nil, nil
	default:
		return v, nil
	}
}

// InterpolateInputElseGetPriorOutput is the canonical input-resolution
// helper used by Echo/Env/Jaq: call InterpolateInputWithEnv, and on a
// NotFound fall back to env[CMD_PREVIOUS_CONTENT] when present.
func InterpolateInputElseGetPriorOutput(contentPresent bool, content any, env *pipelineenv.Environment, ignoreErrors bool) (any, error) {
	out, err := InterpolateInputWithEnv(contentPresent, content, env, ignoreErrors)
	if err == nil {
		return out, nil
	}
	if pe, ok := pipelineerr.As(err); ok && pe.Kind == pipelineerr.KindNotFound {
		if prev, ok := env.Get(pipelineenv.KeyCmdPreviousContent); ok {
			return prev, nil
		}
	}
	return nil, err
}

// FixedPoint performs the standalone Interpolate command's substitution:
// up to maxPasses passes to reach a fixed point, preserving
// string-vs-JSON shape. Non-string content is serialized to JSON,
// interpolated, then reparsed each pass.
func FixedPoint(content any, env *pipelineenv.Environment, ignoreErrors bool) (any, error) {
	subst := env.SubstMap()

	isString := false
	var cur string
	if s, ok := content.(string); ok {
		isString = true
		cur = s
	} else {
		b, err := json.Marshal(content)
		if err != nil {
			return nil, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "encoding content for interpolation", err)
		}
		cur = string(b)
	}

	for i := 0; i < maxPasses; i++ {
		next, err := substitute(cur, subst, ignoreErrors)
		if err != nil {
			return nil, err
		}
		if next == cur {
			break
		}
		cur = next
	}

	if isString {
		return cur, nil
	}
	var out any
	if err := json.Unmarshal([]byte(cur), &out); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "reparsing interpolated content", err)
	}
	return out, nil
}

// LooksLikeJSON is a cheap heuristic used by the task runner's cache
// step: strings that start with a JSON-ish character are opportunistically
// reparsed, per spec §4.6 / §9. This is a footgun for numeric-looking
// strings: a command output of "42" is cached as the number 42.
func LooksLikeJSON(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	switch t[0] {
	case '{', '[', '"':
		return true
	}
	if t == "true" || t == "false" || t == "null" {
		return true
	}
	c := t[0]
	return c == '-' || (c >= '0' && c <= '9')
}
