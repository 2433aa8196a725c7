package clicommand

import "github.com/urfave/cli"

// Commands is the command registry, following the teacher's nested
// cli.Command/Subcommands layout (clicommand/commands.go).
var Commands = []cli.Command{
	{
		Name:  "pipeline",
		Usage: "Run or validate a pipeline document",
		Subcommands: []cli.Command{
			RunCommand,
			ValidateCommand,
		},
	},
}
