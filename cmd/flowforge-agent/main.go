// Command flowforge-agent is the CLI host around the pipeline engine.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/flowforge/agent/clicommand"
)

var (
	// Version and BuildTime are fixture material (spec §9 — read-only
	// context, not engine state), set by the release build via ldflags.
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	app := cli.NewApp()
	app.Name = "flowforge-agent"
	app.Usage = "A declarative task pipeline engine"
	app.Version = fmt.Sprintf("%s (built %s)", Version, BuildTime)
	app.Commands = clicommand.Commands

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
