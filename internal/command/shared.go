// Package command implements the six fixed command bodies dispatched by
// the task runner (spec §4.3-§4.5): Echo, Env, SetEnv, Interpolate,
// HttpClient and Jaq. Each function receives the shared environment,
// merges the command's own env block into it (step 2 of the uniform
// command contract) and returns the command's resolved content plus any
// env delta the caller should fold back in.
package command

import (
	"github.com/flowforge/agent/internal/interpolate"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// Result is a command's outcome: its resolved content (if any) and an
// optional env delta to merge into the shared environment.
type Result struct {
	ContentSet bool
	Content    any
	Env        *pipelineenv.Environment
}

// resolveInput runs the spec §4.2 interpolate-or-fallback helper over a
// CommonContent, the canonical resolution used by Echo/Env/Jaq.
func resolveInput(c pipelinemodel.CommonContent, env *pipelineenv.Environment) (any, error) {
	return interpolate.InterpolateInputElseGetPriorOutput(c.ContentSet, c.Content, env, false)
}
