package command

import (
	"github.com/flowforge/agent/internal/jaqengine"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// Jaq compiles its content as a jq-style filter and evaluates it against
// CMD_PREVIOUS_CONTENT (spec §4.5).
func Jaq(cmd pipelinemodel.JaqCommand, env *pipelineenv.Environment) (Result, error) {
	if cmd.Content.Env != nil {
		env.Extend(cmd.Content.Env)
	}

	filter, err := resolveInput(cmd.Content, env)
	if err != nil {
		return Result{}, err
	}
	filterStr, ok := filter.(string)
	if !ok {
		return Result{}, pipelineerr.New(pipelineerr.KindJaqCoreError, "filter content must be a string")
	}

	input, ok := env.Get(pipelineenv.KeyCmdPreviousContent)
	if !ok {
		return Result{}, pipelineerr.NotFound("Any content")
	}

	program, err := jaqengine.Compile(filterStr)
	if err != nil {
		return Result{}, err
	}
	out, err := program.Run(input)
	if err != nil {
		return Result{}, err
	}

	return Result{ContentSet: true, Content: jaqengine.ResultValue(out)}, nil
}
