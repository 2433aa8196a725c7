package command

import (
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// SetEnv is a no-op on content: it merges its env block into shared
// (step 2 of the uniform command contract, spec §4.3) and returns its
// content unchanged.
func SetEnv(cmd pipelinemodel.SetEnvCommand, env *pipelineenv.Environment) (Result, error) {
	if cmd.Content.Env != nil {
		env.Extend(cmd.Content.Env)
	}
	return Result{ContentSet: cmd.Content.ContentSet, Content: cmd.Content.Content}, nil
}
