package clicommand

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/flowforge/agent/internal/pipelinemodel"
)

const validateHelpDescription = `Usage:

   flowforge-agent pipeline validate [file] [options...]

Description:

   Decodes a pipeline document and reports decode errors (unknown
   fields, malformed tagged commands) without executing it. Pairs with
   --validate-schemas on "pipeline run" — this command only checks
   document shape, not input_schema/output_schema content.`

// ValidateCommand decodes a pipeline document and reports errors
// without running it, the natural pairing for the schema-validation
// supplement, grounded on the teacher's "pipeline upload" shape:
// decode, validate, act (clicommand/pipeline_upload.go).
var ValidateCommand = cli.Command{
	Name:        "validate",
	Usage:       "Decodes a pipeline document and reports errors without executing it",
	Description: validateHelpDescription,
	Flags: []cli.Flag{
		LogLevelFlag,
		NoColorFlag,
	},
	Action: func(c *cli.Context) error {
		l := CreateLogger(c.String("log-level"))
		defer l.Sync()

		input, closeInput, err := openPipelineInput(c.Args().First())
		if err != nil {
			l.Error("pipeline.validate.open_failed", "error", err)
			return cli.NewExitError(err.Error(), 1)
		}
		defer closeInput()

		doc, err := pipelinemodel.ParseDocument(input)
		if err != nil {
			l.Error("pipeline.validate.failed", "error", err)
			return cli.NewExitError(err.Error(), exitCodeFor(err))
		}

		fmt.Printf("pipeline %q is valid: %d task(s)\n", doc.Name, len(doc.TaskOrder))
		return nil
	},
}
