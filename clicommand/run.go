package clicommand

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pborman/uuid"
	"github.com/urfave/cli"

	"github.com/flowforge/agent/internal/interpolate"
	"github.com/flowforge/agent/internal/osenv"
	"github.com/flowforge/agent/internal/pipeline"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

const runHelpDescription = `Usage:

   flowforge-agent pipeline run [file] [options...]

Description:

   Executes a pipeline document: an ordered collection of tasks, each an
   ordered list of commands. Commands are run in sequence, threading an
   environment between them. The first command failure aborts the run.

   If no file is given, the pipeline is read from standard input.

Example:

   $ flowforge-agent pipeline run my-pipeline.yml
   $ cat my-pipeline.yml | flowforge-agent pipeline run`

// RunCommand is the "pipeline run" subcommand: decode a pipeline
// document and execute it, following the teacher's
// "pipeline upload"-style flag struct and fatal-logging pattern
// (clicommand/pipeline_upload.go).
var RunCommand = cli.Command{
	Name:        "run",
	Usage:       "Executes a pipeline document",
	Description: runHelpDescription,
	Flags: []cli.Flag{
		NoOSEnvFlag,
		NoInterpolationFlag,
		ValidateSchemasFlag,
		OutputFlag,
		LogLevelFlag,
		NoColorFlag,
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		l := CreateLogger(c.String("log-level"))
		defer l.Sync()

		input, closeInput, err := openPipelineInput(c.Args().First())
		if err != nil {
			l.Error("pipeline.run.open_failed", "error", err)
			return cli.NewExitError(err.Error(), exitCodeFor(err))
		}
		defer closeInput()

		doc, err := pipelinemodel.ParseDocument(input)
		if err != nil {
			l.Error("pipeline.run.parse_failed", "error", err)
			return cli.NewExitError(err.Error(), exitCodeFor(err))
		}

		if doc.Name == "" {
			// Scoped mirror keys are namespaced by pipeline name; an
			// anonymous document still needs a stable one for the
			// duration of this run.
			doc.Name = "run-" + uuid.New()
		}

		seedEnv(doc, c.Bool("no-os-env"))

		if !c.Bool("no-interpolation") {
			if err := interpolateDocEnv(doc); err != nil {
				l.Error("pipeline.run.interpolate_failed", "error", err)
				return cli.NewExitError(err.Error(), exitCodeFor(err))
			}
		}

		runner := pipeline.NewRunner(nil, os.Stdout)
		runner.ValidateSchemas = c.Bool("validate-schemas")

		result, err := runner.Run(ctx, l, doc)
		if err != nil {
			l.Error("pipeline.run.failed", "error", err)
			return cli.NewExitError(err.Error(), exitCodeFor(err))
		}

		return writeResultEnv(c.String("output"), result)
	},
}

// seedEnv mirrors the supplemented OS-environment seeding feature: the
// process environment is merged under the pipeline's own declared env,
// so the pipeline document always wins on conflicting keys.
func seedEnv(doc *pipelinemodel.Pipeline, noOSEnv bool) {
	if noOSEnv {
		return
	}
	merged := osenv.Seed()
	if doc.Env != nil {
		merged.Extend(doc.Env)
	}
	doc.Env = merged
}

// interpolateDocEnv resolves ${VAR}/$VAR references among the pipeline's
// own (OS-seeded + declared) root env values before the run starts, so a
// pipeline document can reference one root env entry from another
// (e.g. a URL built from a seeded HOST var). --no-interpolation skips
// this pass and hands the document's env straight to the runner, which
// is useful when a value's literal "${...}" text must survive into the
// first command unresolved (the per-command interpolator, spec §4.2,
// still runs regardless of this flag).
func interpolateDocEnv(doc *pipelinemodel.Pipeline) error {
	if doc.Env == nil {
		return nil
	}
	resolved := pipelineenv.New()
	for _, k := range doc.Env.Keys() {
		v, _ := doc.Env.Get(k)
		s, ok := v.(string)
		if !ok {
			resolved.Insert(k, v)
			continue
		}
		out, err := interpolate.SubstituteOnce(s, doc.Env, true)
		if err != nil {
			return err
		}
		resolved.Insert(k, out)
	}
	doc.Env = resolved
	return nil
}

func writeResultEnv(outputPath string, result pipeline.Result) error {
	out := result.Env.ToJSONMap()
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if outputPath == "" {
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}
	if err := os.WriteFile(outputPath, b, 0o644); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func exitCodeFor(err error) int {
	if pe, ok := pipelineerr.As(err); ok {
		return pe.ExitCode()
	}
	return 1
}
