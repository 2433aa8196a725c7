// Package pipelinemodel defines the pure data shapes of a pipeline
// document: the tagged command union, HTTP request arguments and the
// common content envelope passed between commands. It carries no
// execution behaviour so that both internal/pipeline (document
// structure, task/pipeline runners) and internal/command (command
// bodies) can depend on it without an import cycle.
package pipelinemodel

import "github.com/flowforge/agent/internal/pipelineenv"

// CommonContent is the uniform message passed between commands: C = {
// content: JSON?, env: E? }. ContentSet distinguishes "the content field
// was absent from the document" from "present and JSON null", since
// both are representable and the interpolation decision table (spec
// §4.2) treats them differently.
type CommonContent struct {
	ContentSet bool
	Content    any
	Env        *pipelineenv.Environment
}

// HTTPHeader is a single name/scalar pair. Scalars allowed are null,
// bool, number and string (spec §3).
type HTTPHeader struct {
	Name  string
	Value any
}

// HTTPArgs is the HTTP request shape: method, URL and an ordered list of
// header maps (each map may carry multiple header names). The order of
// the maps is preserved; names within one map follow Go map iteration
// order, which is not defined.
type HTTPArgs struct {
	URL     string
	Method  string
	Headers []map[string]any
}

// Expectation describes the HTTP command's success criteria.
type Expectation struct {
	StatusCode int
	ExitCode   int
}

// DefaultExpectation returns the default expectation per spec §3:
// status_code defaults to 200, exit_code to 0.
func DefaultExpectation() Expectation {
	return Expectation{StatusCode: 200, ExitCode: 0}
}

// HTTPCommandArgs bundles an HTTP request, its body-bearing common
// content, and the response expectation.
type HTTPCommandArgs struct {
	HTTPArgs      HTTPArgs
	CommonContent CommonContent
	Expectation   Expectation
}

// Kind identifies a command variant's "cmd" discriminant.
type Kind string

const (
	KindEcho        Kind = "Echo"
	KindEnv         Kind = "Env"
	KindHTTPClient  Kind = "HttpClient"
	KindInterpolate Kind = "Interpolate"
	KindJaq         Kind = "Jaq"
	KindSetEnv      Kind = "SetEnv"
)

// Command is the tagged union of the six fixed command variants (spec
// §3, §9 "Tagged command union"): a sum type with one variant per
// command, dispatched by a single Kind rather than an open-world plugin
// registry.
type Command interface {
	Kind() Kind
}

// EchoCommand prints its resolved content to standard output.
type EchoCommand struct {
	Content CommonContent
}

func (EchoCommand) Kind() Kind { return KindEcho }

// EnvCommand resolves its content, then dumps the environment as
// KEY=<compact-json> lines.
type EnvCommand struct {
	Content CommonContent
}

func (EnvCommand) Kind() Kind { return KindEnv }

// SetEnvCommand is a no-op on content; its only effect is the env merge
// (step 2 of the uniform command contract, spec §4.3) that the command
// body applies to the shared environment.
type SetEnvCommand struct {
	Content CommonContent
}

func (SetEnvCommand) Kind() Kind { return KindSetEnv }

// InterpolateCommand performs fixed-point substitution over its
// content, up to 10 passes.
type InterpolateCommand struct {
	Content CommonContent
}

func (InterpolateCommand) Kind() Kind { return KindInterpolate }

// JaqCommand evaluates its content as a jq-style filter against
// CMD_PREVIOUS_CONTENT.
type JaqCommand struct {
	Content CommonContent
}

func (JaqCommand) Kind() Kind { return KindJaq }

// HTTPClientCommand issues an HTTP request and classifies the response.
type HTTPClientCommand struct {
	Args HTTPCommandArgs
}

func (HTTPClientCommand) Kind() Kind { return KindHTTPClient }

// Task is an ordered list of commands sharing an env scope, plus
// optional opaque input/output schemas handed to an external validator
// (spec §3 — "the core does not interpret them").
type Task struct {
	Commands     []Command
	Env          *pipelineenv.Environment
	InputSchema  []byte
	OutputSchema []byte
}

// Pipeline is an ordered map of named tasks plus a root env (spec §3).
// TaskOrder records the insertion order of Tasks' keys, since a plain Go
// map loses it.
type Pipeline struct {
	Name          string
	Version       string
	Description   string
	URL           string
	EngineVersion string
	Env           *pipelineenv.Environment
	Tasks         map[string]*Task
	TaskOrder     []string
	Schemas       map[string][]byte
}
