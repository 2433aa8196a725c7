package command

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

func TestEnvDump_PrintsKeyEqualsCompactJSONInOrder(t *testing.T) {
	t.Parallel()

	env := pipelineenv.New()
	env.Insert(pipelineenv.KeyCmdPreviousContent, "prior")
	env.Insert("FOO", "bar")
	env.Insert("COUNT", float64(3))

	var buf bytes.Buffer
	cmd := pipelinemodel.EnvCommand{
		Content: pipelinemodel.CommonContent{ContentSet: false},
	}

	_, err := EnvDump(&buf, cmd, env)
	require.NoError(t, err)

	expected := "CMD_PREVIOUS_CONTENT=\"prior\"\nFOO=\"bar\"\nCOUNT=3\n"
	assert.Equal(t, expected, buf.String())
}
