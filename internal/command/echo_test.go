package command

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

func TestEcho_S1(t *testing.T) {
	t.Parallel()

	env := pipelineenv.New()
	var buf bytes.Buffer

	cmd := pipelinemodel.EchoCommand{
		Content: pipelinemodel.CommonContent{
			ContentSet: true,
			Content:    "Hello ${VAR} var",
			Env:        envWith("VAR", "${weird}"),
		},
	}

	res, err := Echo(&buf, cmd, env)
	require.NoError(t, err)
	assert.Equal(t, "Hello ${weird} var", res.Content)
	assert.Equal(t, "Hello ${weird} var\n", buf.String())
}

func TestEcho_PrintsCompactJSONForNonString(t *testing.T) {
	t.Parallel()

	env := pipelineenv.New()
	var buf bytes.Buffer

	cmd := pipelinemodel.EchoCommand{
		Content: pipelinemodel.CommonContent{ContentSet: true, Content: float64(7)},
	}

	_, err := Echo(&buf, cmd, env)
	require.NoError(t, err)
	assert.Equal(t, "7\n", buf.String())
}

func envWith(k string, v any) *pipelineenv.Environment {
	e := pipelineenv.New()
	e.Insert(k, v)
	return e
}
