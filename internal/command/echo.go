package command

import (
	"encoding/json"
	"io"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// Echo resolves its input (spec §4.2) and prints it to w: a string is
// printed as-is, anything else as compact JSON.
func Echo(w io.Writer, cmd pipelinemodel.EchoCommand, env *pipelineenv.Environment) (Result, error) {
	if cmd.Content.Env != nil {
		env.Extend(cmd.Content.Env)
	}

	resolved, err := resolveInput(cmd.Content, env)
	if err != nil {
		return Result{}, err
	}

	if err := printContent(w, resolved); err != nil {
		return Result{}, err
	}

	return Result{ContentSet: true, Content: resolved}, nil
}

func printContent(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := io.WriteString(w, s+"\n")
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
