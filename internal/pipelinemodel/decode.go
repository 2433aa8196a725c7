package pipelinemodel

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
)

// ParseDocument decodes a pipeline document from r. Both YAML and JSON
// input are accepted through the same decoder: JSON is a syntactic
// subset of YAML, so gopkg.in/yaml.v3 parses either directly. Unknown
// fields are rejected at every level (spec §6).
func ParseDocument(r io.Reader) (*Pipeline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindStdIOError, "reading pipeline document", err)
	}
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "decoding pipeline document", err)
	}
	return &p, nil
}

// keyedNode is a single mapping entry retaining its source position for
// error messages.
type keyedNode struct {
	key  string
	node *yaml.Node
}

// mappingEntries walks a MappingNode's Content pairs in document order,
// rejecting any key not present in allowed (when allowed is non-nil).
func mappingEntries(n *yaml.Node, allowed map[string]bool) ([]keyedNode, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d, col %d: expected a mapping", n.Line, n.Column)
	}
	out := make([]keyedNode, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		v := n.Content[i+1]
		if allowed != nil && !allowed[k.Value] {
			return nil, fmt.Errorf("line %d, col %d: unknown field %q", k.Line, k.Column, k.Value)
		}
		out = append(out, keyedNode{key: k.Value, node: v})
	}
	return out, nil
}

func lookup(entries []keyedNode, key string) (*yaml.Node, bool) {
	for _, e := range entries {
		if e.key == key {
			return e.node, true
		}
	}
	return nil, false
}

// normalizeJSONValue recursively converts YAML's native int/int64
// scalars into float64, so that every JSON number flows through the
// engine the way encoding/json would decode it (pipelineenv.StringifyValue
// and the interpolation substitution map both assume JSON-number ==
// float64).
func normalizeJSONValue(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case map[string]any:
		for k, vv := range val {
			val[k] = normalizeJSONValue(vv)
		}
		return val
	case []any:
		for i, vv := range val {
			val[i] = normalizeJSONValue(vv)
		}
		return val
	default:
		return val
	}
}

func decodeAny(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeJSONValue(v), nil
}

func decodeRawJSON(n *yaml.Node) ([]byte, error) {
	if n == nil {
		return nil, nil
	}
	v, err := decodeAny(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// decodeEnvironment decodes a mapping node into an ordered Environment,
// preserving the document's key order (spec §3 — insertion order is
// observable for env dumps).
func decodeEnvironment(n *yaml.Node) (*pipelineenv.Environment, error) {
	if n == nil {
		return nil, nil
	}
	entries, err := mappingEntries(n, nil)
	if err != nil {
		return nil, err
	}
	env := pipelineenv.New()
	for _, e := range entries {
		v, err := decodeAny(e.node)
		if err != nil {
			return nil, err
		}
		env.Insert(e.key, v)
	}
	return env, nil
}

var pipelineAllowedFields = map[string]bool{
	"name": true, "version": true, "description": true, "url": true,
	"engine_version": true, "env": true, "tasks": true, "schemas": true,
}

// UnmarshalYAML decodes a Pipeline. A custom unmarshaler is needed
// because Tasks is an ordered map (document order matters, spec §3 "Task
// iteration follows the map's insertion order") and Command is a tagged
// union with no standard Go representation.
func (p *Pipeline) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) != 1 {
			return fmt.Errorf("line %d, col %d: empty document", n.Line, n.Column)
		}
		n = n.Content[0]
	}

	entries, err := mappingEntries(n, pipelineAllowedFields)
	if err != nil {
		return err
	}

	for _, e := range entries {
		switch e.key {
		case "name":
			if err := e.node.Decode(&p.Name); err != nil {
				return err
			}
		case "version":
			if err := e.node.Decode(&p.Version); err != nil {
				return err
			}
		case "description":
			if err := e.node.Decode(&p.Description); err != nil {
				return err
			}
		case "url":
			if err := e.node.Decode(&p.URL); err != nil {
				return err
			}
		case "engine_version":
			if err := e.node.Decode(&p.EngineVersion); err != nil {
				return err
			}
		case "env":
			env, err := decodeEnvironment(e.node)
			if err != nil {
				return err
			}
			p.Env = env
		case "tasks":
			taskEntries, err := mappingEntries(e.node, nil)
			if err != nil {
				return err
			}
			p.Tasks = make(map[string]*Task, len(taskEntries))
			p.TaskOrder = make([]string, 0, len(taskEntries))
			for _, te := range taskEntries {
				var t Task
				if err := te.node.Decode(&t); err != nil {
					return err
				}
				p.Tasks[te.key] = &t
				p.TaskOrder = append(p.TaskOrder, te.key)
			}
		case "schemas":
			schemaEntries, err := mappingEntries(e.node, nil)
			if err != nil {
				return err
			}
			p.Schemas = make(map[string][]byte, len(schemaEntries))
			for _, se := range schemaEntries {
				raw, err := decodeRawJSON(se.node)
				if err != nil {
					return err
				}
				p.Schemas[se.key] = raw
			}
		}
	}
	return nil
}

var taskAllowedFields = map[string]bool{
	"commands": true, "env": true, "input_schema": true, "output_schema": true,
}

// UnmarshalYAML decodes a Task.
func (t *Task) UnmarshalYAML(n *yaml.Node) error {
	entries, err := mappingEntries(n, taskAllowedFields)
	if err != nil {
		return err
	}
	for _, e := range entries {
		switch e.key {
		case "commands":
			if e.node.Kind != yaml.SequenceNode {
				return fmt.Errorf("line %d, col %d: commands must be a sequence", e.node.Line, e.node.Column)
			}
			t.Commands = make([]Command, 0, len(e.node.Content))
			for _, item := range e.node.Content {
				cmd, err := decodeCommand(item)
				if err != nil {
					return err
				}
				t.Commands = append(t.Commands, cmd)
			}
		case "env":
			env, err := decodeEnvironment(e.node)
			if err != nil {
				return err
			}
			t.Env = env
		case "input_schema":
			raw, err := decodeRawJSON(e.node)
			if err != nil {
				return err
			}
			t.InputSchema = raw
		case "output_schema":
			raw, err := decodeRawJSON(e.node)
			if err != nil {
				return err
			}
			t.OutputSchema = raw
		}
	}
	return nil
}

var commonCommandAllowedFields = map[string]bool{
	"cmd": true, "content": true, "env": true,
}

var httpClientAllowedFields = map[string]bool{
	"cmd": true, "args": true, "common_content": true, "expectation": true,
}

// decodeCommand decodes one element of a task's "commands" sequence into
// the tagged Command union, keyed by "cmd" (spec §6).
func decodeCommand(n *yaml.Node) (Command, error) {
	probe, err := mappingEntries(n, nil)
	if err != nil {
		return nil, err
	}
	cmdNode, ok := lookup(probe, "cmd")
	if !ok {
		return nil, fmt.Errorf("line %d, col %d: command is missing required field \"cmd\"", n.Line, n.Column)
	}
	var kind string
	if err := cmdNode.Decode(&kind); err != nil {
		return nil, err
	}

	switch Kind(kind) {
	case KindEcho, KindEnv, KindInterpolate, KindSetEnv, KindJaq:
		entries, err := mappingEntries(n, commonCommandAllowedFields)
		if err != nil {
			return nil, err
		}
		content, err := decodeCommonContent(entries)
		if err != nil {
			return nil, err
		}
		switch Kind(kind) {
		case KindEcho:
			return EchoCommand{Content: content}, nil
		case KindEnv:
			return EnvCommand{Content: content}, nil
		case KindInterpolate:
			return InterpolateCommand{Content: content}, nil
		case KindSetEnv:
			return SetEnvCommand{Content: content}, nil
		case KindJaq:
			return JaqCommand{Content: content}, nil
		}
	case KindHTTPClient:
		entries, err := mappingEntries(n, httpClientAllowedFields)
		if err != nil {
			return nil, err
		}
		args, err := decodeHTTPCommandArgs(entries)
		if err != nil {
			return nil, err
		}
		return HTTPClientCommand{Args: args}, nil
	}
	return nil, fmt.Errorf("line %d, col %d: unknown command kind %q", n.Line, n.Column, kind)
}

func decodeCommonContent(entries []keyedNode) (CommonContent, error) {
	var c CommonContent
	if node, ok := lookup(entries, "content"); ok {
		c.ContentSet = true
		v, err := decodeAny(node)
		if err != nil {
			return c, err
		}
		c.Content = v
	}
	if node, ok := lookup(entries, "env"); ok {
		env, err := decodeEnvironment(node)
		if err != nil {
			return c, err
		}
		c.Env = env
	}
	return c, nil
}

var httpArgsAllowedFields = map[string]bool{"url": true, "method": true, "headers": true}
var expectationAllowedFields = map[string]bool{"status_code": true, "exit_code": true}

func decodeHTTPCommandArgs(entries []keyedNode) (HTTPCommandArgs, error) {
	var out HTTPCommandArgs
	out.Expectation = DefaultExpectation()

	argsNode, ok := lookup(entries, "args")
	if !ok {
		return out, fmt.Errorf("HttpClient command requires \"args\"")
	}
	argEntries, err := mappingEntries(argsNode, httpArgsAllowedFields)
	if err != nil {
		return out, err
	}
	if node, ok := lookup(argEntries, "url"); ok {
		if err := node.Decode(&out.HTTPArgs.URL); err != nil {
			return out, err
		}
	}
	if node, ok := lookup(argEntries, "method"); ok {
		if err := node.Decode(&out.HTTPArgs.Method); err != nil {
			return out, err
		}
	}
	if node, ok := lookup(argEntries, "headers"); ok {
		if node.Kind != yaml.SequenceNode {
			return out, fmt.Errorf("line %d, col %d: headers must be a sequence", node.Line, node.Column)
		}
		headers := make([]map[string]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := decodeAny(item)
			if err != nil {
				return out, err
			}
			m, ok := v.(map[string]any)
			if !ok {
				return out, fmt.Errorf("line %d, col %d: header entry must be a mapping", item.Line, item.Column)
			}
			headers = append(headers, m)
		}
		out.HTTPArgs.Headers = headers
	}

	if node, ok := lookup(entries, "common_content"); ok {
		ccEntries, err := mappingEntries(node, commonCommandAllowedFields)
		if err != nil {
			return out, err
		}
		cc, err := decodeCommonContent(ccEntries)
		if err != nil {
			return out, err
		}
		out.CommonContent = cc
	}

	if node, ok := lookup(entries, "expectation"); ok {
		expEntries, err := mappingEntries(node, expectationAllowedFields)
		if err != nil {
			return out, err
		}
		if n, ok := lookup(expEntries, "status_code"); ok {
			if err := n.Decode(&out.Expectation.StatusCode); err != nil {
				return out, err
			}
		}
		if n, ok := lookup(expEntries, "exit_code"); ok {
			if err := n.Decode(&out.Expectation.ExitCode); err != nil {
				return out, err
			}
		}
	}

	return out, nil
}
