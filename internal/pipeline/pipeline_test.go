package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agent/internal/logging"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// P1: an empty pipeline succeeds with no content set and an env seeded
// only from the pipeline's own Env block.
func TestRun_EmptyPipelineSucceeds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRunner(nil, &buf)
	p := &pipelinemodel.Pipeline{Name: "empty"}

	res, err := r.Run(context.Background(), logging.Nop(), p)
	require.NoError(t, err)
	assert.False(t, res.ContentSet)
	assert.Nil(t, res.Content)
}

// P4: pipeline-level env is visible to the first command of every task.
func TestRun_PipelineEnvVisibleToFirstTaskCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRunner(nil, &buf)

	pipelineEnv := pipelineenv.New()
	pipelineEnv.Insert("GREETING", "hello")

	p := &pipelinemodel.Pipeline{
		Name: "greet",
		Env:  pipelineEnv,
		Tasks: map[string]*pipelinemodel.Task{
			"say": {
				Commands: []pipelinemodel.Command{
					pipelinemodel.InterpolateCommand{
						Content: pipelinemodel.CommonContent{ContentSet: true, Content: "$GREETING"},
					},
				},
			},
		},
		TaskOrder: []string{"say"},
	}

	res, err := r.Run(context.Background(), logging.Nop(), p)
	require.NoError(t, err)
	assert.True(t, res.ContentSet)
	assert.Equal(t, "hello", res.Content)
}

// S3: an Echo task end to end, checking TASK_PREVIOUS_NAME and
// CMD_PREVIOUS_CONTENT are threaded to the next task.
func TestRun_EchoTaskThreadsPreviousNameAndContent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRunner(nil, &buf)

	p := &pipelinemodel.Pipeline{
		Name: "greetings",
		Tasks: map[string]*pipelinemodel.Task{
			"first": {
				Commands: []pipelinemodel.Command{
					pipelinemodel.EchoCommand{
						Content: pipelinemodel.CommonContent{ContentSet: true, Content: "greetings to Omega"},
					},
				},
			},
			"second": {
				Commands: []pipelinemodel.Command{
					pipelinemodel.EnvCommand{Content: pipelinemodel.CommonContent{ContentSet: false}},
				},
			},
		},
		TaskOrder: []string{"first", "second"},
	}

	res, err := r.Run(context.Background(), logging.Nop(), p)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "greetings to Omega")
	assert.Contains(t, out, `TASK_PREVIOUS_NAME="first"`)
	assert.Contains(t, out, `CMD_PREVIOUS_CONTENT="greetings to Omega"`)
	_ = res
}

// S6-style chain: SetEnv yields a JSON object as content, an HttpClient
// call posts its own JSON body and the server echoes the message back,
// then Jaq extracts a field from the response.
func TestRun_SetEnvHTTPJaqChain(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"message": body["message"]})
	}))
	defer srv.Close()

	var buf bytes.Buffer
	r := NewRunner(srv.Client(), &buf)

	p := &pipelinemodel.Pipeline{
		Name: "chain",
		Tasks: map[string]*pipelinemodel.Task{
			"run": {
				Commands: []pipelinemodel.Command{
					pipelinemodel.SetEnvCommand{
						Content: pipelinemodel.CommonContent{
							ContentSet: true,
							Content:    map[string]any{"message": "hi"},
							Env:        pipelineenv.New(),
						},
					},
					pipelinemodel.HTTPClientCommand{
						Args: pipelinemodel.HTTPCommandArgs{
							HTTPArgs: pipelinemodel.HTTPArgs{
								URL:    srv.URL,
								Method: "POST",
							},
							CommonContent: pipelinemodel.CommonContent{
								ContentSet: true,
								Content:    map[string]any{"message": "hi"},
							},
							Expectation: pipelinemodel.DefaultExpectation(),
						},
					},
					pipelinemodel.JaqCommand{
						Content: pipelinemodel.CommonContent{ContentSet: true, Content: ".message"},
					},
				},
			},
		},
		TaskOrder: []string{"run"},
	}

	res, err := r.Run(context.Background(), logging.Nop(), p)
	require.NoError(t, err)
	assert.True(t, res.ContentSet)
	assert.Equal(t, `"hi"`, res.Content)
}
