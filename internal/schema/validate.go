// Package schema implements the optional JSON Schema validation of task
// input/output described as a supplemented feature in SPEC_FULL.md: the
// core engine treats input_schema/output_schema as opaque JSON (spec
// §3), but when a host enables validation, this package checks a value
// against one using github.com/qri-io/jsonschema, the teacher's own
// direct dependency.
package schema

import (
	"context"
	"encoding/json"

	"github.com/qri-io/jsonschema"

	"github.com/flowforge/agent/internal/pipelineerr"
)

// Validator wraps a compiled JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile parses raw (a JSON Schema document) into a Validator.
func Compile(raw json.RawMessage) (*Validator, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	s := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "decoding schema document", err)
	}
	return &Validator{schema: s}, nil
}

// Validate checks value against the compiled schema, returning a
// pipelineerr describing the first validation failure, if any.
func (v *Validator) Validate(ctx context.Context, value any) error {
	if v == nil || v.schema == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "encoding value for schema check", err)
	}

	errs, err := v.schema.ValidateBytes(ctx, raw)
	if err != nil {
		return pipelineerr.Wrap(pipelineerr.KindJSONExtensionsError, "schema validation", err)
	}
	if len(errs) > 0 {
		return pipelineerr.New(pipelineerr.KindJSONExtensionsError, errs[0].Error())
	}
	return nil
}
