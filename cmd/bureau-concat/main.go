// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/concat/cmd/bureau-concat/cli"
	"github.com/bureau-foundation/concat/lib/fault"
	"github.com/bureau-foundation/concat/lib/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "--version" {
		fmt.Fprintf(stdout, "bureau-concat %s\n", version.Info())
		return cli.ExitSuccess
	}

	err := rootCommand(stdout).Execute(args)
	if err == nil {
		return cli.ExitSuccess
	}

	// Commands that print their own output return an ExitError with
	// the desired exit code. Don't print a redundant error line.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		var classified *fault.Error
		if errors.As(err, &classified) {
			fmt.Fprintf(stderr, "%s: %v\n", fault.CategoryOf(err), err)
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}
	return cli.ExitCode(err)
}

func rootCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name: "bureau-concat",
		Description: `bureau-concat: build resource files by concatenating parts.

Each configured file is written from an ordered list of part URIs:
literal data, local files, and entries inside Maven artifacts.`,
		Subcommands: []*cli.Command{
			runCommand(stdout),
			resolveCommand(stdout),
			coordinateCommand(stdout),
			versionCommand(stdout),
		},
	}
}

func versionCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Fprintln(stdout, "bureau-concat", version.Full())
			return nil
		},
	}
}
