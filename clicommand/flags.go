package clicommand

import (
	"github.com/urfave/cli"

	"github.com/flowforge/agent/internal/logging"
)

// Flags used by the subcommands, following the teacher's per-command
// flag-struct convention (a package-level cli.Flag value reused across
// Flags slices instead of redeclared per command).
var (
	LogLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Value: "info",
		Usage: "Log level: \"debug\" selects development logging; any other value logs at info level",
	}
	NoColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "Don't show colors in logging",
	}
	NoOSEnvFlag = cli.BoolFlag{
		Name:  "no-os-env",
		Usage: "Don't seed the pipeline's root environment from the host process environment",
	}
	NoInterpolationFlag = cli.BoolFlag{
		Name:  "no-interpolation",
		Usage: "Skip variable interpolation of the pipeline's own env block before running",
	}
	ValidateSchemasFlag = cli.BoolFlag{
		Name:  "validate-schemas",
		Usage: "Validate task input/output against input_schema/output_schema when present",
	}
	OutputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "Write the final environment as JSON to this path instead of stdout",
	}
)

// CreateLogger builds the logger for a command invocation from
// --log-level: "debug" gives a development logger, every other value the
// production logger at info level.
func CreateLogger(logLevel string) *logging.Logger {
	if logLevel == "debug" {
		return logging.NewDevelopment()
	}
	return logging.New()
}
