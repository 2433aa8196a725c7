// Package pipeline implements the task and pipeline runners: the
// two-level execution engine (spec §4.6-§4.7) that threads an
// environment through a pipeline's ordered tasks and each task's
// ordered commands, dispatching to internal/command for each command's
// behaviour and applying the caching/scoped-mirror rules itself.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flowforge/agent/internal/command"
	"github.com/flowforge/agent/internal/interpolate"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
	"github.com/flowforge/agent/internal/pipelinemodel"
	"github.com/flowforge/agent/internal/schema"
)

// Runner holds the dependencies command bodies need (an HTTP client and
// the writer Echo/Env print to), so the task/pipeline runners stay free
// of global state. ValidateSchemas additively enables the supplemented
// input/output schema check (off by default, so it never changes the
// documented P1-P8/S1-S6 behavior).
type Runner struct {
	Client          *http.Client
	Stdout          io.Writer
	ValidateSchemas bool
}

// NewRunner builds a Runner with a default HTTP client and os.Stdout-
// equivalent writer supplied by the caller (typically os.Stdout; tests
// pass a bytes.Buffer).
func NewRunner(client *http.Client, stdout io.Writer) *Runner {
	if client == nil {
		client = http.DefaultClient
	}
	return &Runner{Client: client, Stdout: stdout}
}

// validateAgainst compiles raw (if non-empty and validation is enabled)
// and checks value against it.
func (r *Runner) validateAgainst(ctx context.Context, raw []byte, value any) error {
	if !r.ValidateSchemas || len(raw) == 0 {
		return nil
	}
	v, err := schema.Compile(raw)
	if err != nil {
		return err
	}
	return v.Validate(ctx, value)
}

// dispatch runs one command's behaviour against the shared environment,
// the uniform contract of spec §4.3: each command merges its own env
// block into shared (done inside the command body) and returns a
// Result the caller is responsible for caching.
func (r *Runner) dispatch(ctx context.Context, cmd pipelinemodel.Command, shared *pipelineenv.Environment) (command.Result, error) {
	switch c := cmd.(type) {
	case pipelinemodel.EchoCommand:
		return command.Echo(r.Stdout, c, shared)
	case pipelinemodel.EnvCommand:
		return command.EnvDump(r.Stdout, c, shared)
	case pipelinemodel.SetEnvCommand:
		return command.SetEnv(c, shared)
	case pipelinemodel.InterpolateCommand:
		return command.Interpolate(c, shared)
	case pipelinemodel.JaqCommand:
		return command.Jaq(c, shared)
	case pipelinemodel.HTTPClientCommand:
		return command.HTTPClient(ctx, r.Client, c.Args, shared)
	default:
		return command.Result{}, pipelineerr.New(pipelineerr.KindNotInstalled, fmt.Sprintf("unsupported command type %T", cmd))
	}
}

// TaskResult is the outcome of running one task: its final environment
// and the last command's resolved content, if any.
type TaskResult struct {
	Env        *pipelineenv.Environment
	ContentSet bool
	Content    any
}

// RunTask implements Task.process (spec §4.6): run each command in
// order, caching its output under CMD_PREVIOUS_CONTENT and the two
// command-scoped mirror keys before the next command runs. The first
// command error aborts the task; no partial result is returned.
func (r *Runner) RunTask(ctx context.Context, pipelineName, taskName string, task *pipelinemodel.Task, startEnv *pipelineenv.Environment) (TaskResult, error) {
	if len(task.Commands) == 0 {
		return TaskResult{}, pipelineerr.NotFound("`Command`s")
	}

	if task.InputSchema != nil {
		input, _ := startEnv.Get(pipelineenv.KeyCmdPreviousContent)
		if err := r.validateAgainst(ctx, task.InputSchema, input); err != nil {
			return TaskResult{}, err
		}
	}

	shared := startEnv.Clone()
	var result TaskResult
	result.Env = shared

	for i, cmd := range task.Commands {
		res, err := r.dispatch(ctx, cmd, shared)
		if err != nil {
			return TaskResult{}, err
		}
		if res.Env != nil {
			shared.Extend(res.Env)
		}

		if !res.ContentSet {
			result.ContentSet = false
			continue
		}

		cached := res.Content
		if s, ok := cached.(string); ok && interpolate.LooksLikeJSON(s) {
			var parsed any
			if err := json.Unmarshal([]byte(s), &parsed); err == nil {
				// A JSON string literal (e.g. `"hi"`) parses right back to a
				// bare string, which would silently strip a command's own
				// quoting (spec S6 pins the quoted form). Only promote the
				// reparsed value when it's structurally richer than a string.
				if _, isString := parsed.(string); !isString {
					cached = parsed
				}
			}
		}

		shared.Insert(pipelineenv.KeyCmdPreviousContent, cached)
		shared.Insert(fmt.Sprintf("%s__%s_CMD_CONTENT", pipelineName, taskName), cached)
		shared.Insert(fmt.Sprintf("%s__%s[%d]_CMD_CONTENT", pipelineName, taskName, i), cached)

		result.ContentSet = true
		result.Content = cached
	}

	if task.OutputSchema != nil {
		if err := r.validateAgainst(ctx, task.OutputSchema, result.Content); err != nil {
			return TaskResult{}, err
		}
	}

	result.Env = shared
	return result, nil
}
