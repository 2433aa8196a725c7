package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EmptyRawIsNoOp(t *testing.T) {
	t.Parallel()

	v, err := Compile(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
	require.NoError(t, v.Validate(context.Background(), map[string]any{"anything": true}))
}

func TestValidate_PassingValue(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`)
	v, err := Compile(raw)
	require.NoError(t, err)

	err = v.Validate(context.Background(), map[string]any{"name": "Omega"})
	assert.NoError(t, err)
}

func TestValidate_FailingValue(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`)
	v, err := Compile(raw)
	require.NoError(t, err)

	err = v.Validate(context.Background(), map[string]any{"age": 5})
	assert.Error(t, err)
}
