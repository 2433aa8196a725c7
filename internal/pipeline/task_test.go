package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// P2: a task with no commands fails with NotFound rather than silently
// succeeding.
func TestRunTask_EmptyCommandsFails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRunner(nil, &buf)
	task := &pipelinemodel.Task{}

	_, err := r.RunTask(context.Background(), "p", "t", task, pipelineenv.New())
	require.Error(t, err)
	pe, ok := pipelineerr.As(err)
	require.True(t, ok)
	assert.Equal(t, pipelineerr.KindNotFound, pe.Kind)
}

// P3/P8: each command sees the previous command's cached output under
// CMD_PREVIOUS_CONTENT, in order.
func TestRunTask_CommandsSeePriorCachedOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRunner(nil, &buf)

	task := &pipelinemodel.Task{
		Commands: []pipelinemodel.Command{
			pipelinemodel.EchoCommand{
				Content: pipelinemodel.CommonContent{ContentSet: true, Content: "first"},
			},
			pipelinemodel.JaqCommand{
				Content: pipelinemodel.CommonContent{ContentSet: true, Content: "."},
			},
		},
	}

	res, err := r.RunTask(context.Background(), "p", "t", task, pipelineenv.New())
	require.NoError(t, err)
	require.True(t, res.ContentSet)
	assert.Equal(t, `"first"`, res.Content)

	cached, ok := res.Env.Get("p__t[0]_CMD_CONTENT")
	require.True(t, ok)
	assert.Equal(t, "first", cached)

	cached1, ok := res.Env.Get("p__t[1]_CMD_CONTENT")
	require.True(t, ok)
	assert.Equal(t, `"first"`, cached1)
}

// Opportunistic reparse: a command that yields a JSON-looking string is
// cached as the parsed value, not the raw string.
func TestRunTask_OpportunisticJSONReparse(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRunner(nil, &buf)

	task := &pipelinemodel.Task{
		Commands: []pipelinemodel.Command{
			pipelinemodel.JaqCommand{
				Content: pipelinemodel.CommonContent{ContentSet: true, Content: "."},
			},
		},
	}

	env := pipelineenv.New()
	env.Insert(pipelineenv.KeyCmdPreviousContent, map[string]any{"a": float64(1)})

	res, err := r.RunTask(context.Background(), "p", "t", task, env)
	require.NoError(t, err)
	m, ok := res.Content.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), m["a"])
}
