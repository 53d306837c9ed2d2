// Package main is the entry point for the reel command.
package main

import (
	"fmt"
	"os"

	"github.com/dshills/reel/internal/cli"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := cli.NewRootCommand()
	cmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		format, _ := cmd.PersistentFlags().GetString("format")
		cli.WriteError(os.Stderr, format, err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
