package command

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// EnvDump resolves its input by the same rule as Echo/Jaq, prints the
// environment as KEY=<compact-json> lines in insertion order, and
// returns the resolved input as its content.
func EnvDump(w io.Writer, cmd pipelinemodel.EnvCommand, env *pipelineenv.Environment) (Result, error) {
	if cmd.Content.Env != nil {
		env.Extend(cmd.Content.Env)
	}

	resolved, err := resolveInput(cmd.Content, env)
	if err != nil {
		return Result{}, err
	}

	if err := env.Range(func(key string, value any) error {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s=%s\n", key, b)
		return err
	}); err != nil {
		return Result{}, err
	}

	return Result{ContentSet: true, Content: resolved}, nil
}
