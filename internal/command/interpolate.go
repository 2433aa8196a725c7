package command

import (
	"github.com/flowforge/agent/internal/interpolate"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// Interpolate performs the standalone command's fixed-point substitution
// (spec §4.2, up to 10 passes), preserving string-vs-JSON shape.
func Interpolate(cmd pipelinemodel.InterpolateCommand, env *pipelineenv.Environment) (Result, error) {
	if cmd.Content.Env != nil {
		env.Extend(cmd.Content.Env)
	}

	input := cmd.Content.Content
	if !cmd.Content.ContentSet {
		if prev, ok := env.Get(pipelineenv.KeyCmdPreviousContent); ok {
			input = prev
		}
	}

	out, err := interpolate.FixedPoint(input, env, false)
	if err != nil {
		return Result{}, err
	}
	return Result{ContentSet: true, Content: out}, nil
}
