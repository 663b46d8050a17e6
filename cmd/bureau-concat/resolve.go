// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concat/cmd/bureau-concat/cli"
	"github.com/bureau-foundation/concat/lib/fault"
)

func resolveCommand(stdout io.Writer) *cli.Command {
	var shared options

	return &cli.Command{
		Name:    "resolve",
		Summary: "Print the content of one part URI",
		Description: `Resolve a single part URI and write its bytes to stdout.

The config file is optional here: without one, relative paths resolve
against the working directory and artifacts come from the default
local repository. Use it to check what a part in the config expands to
before running a build.`,
		Usage: "bureau-concat resolve <uri> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show the NOTICE file shipped inside a jar",
				Command:     "bureau-concat resolve 'maven:org.apache.commons:commons-lang3:3.14.0!/META-INF/NOTICE.txt'",
			},
			{
				Description: "Decode a base64 data URI",
				Command:     "bureau-concat resolve 'data:;base64,SGVsbG8='",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			shared.bind(flagSet)
			return flagSet
		},
		Run: func(args []string) (err error) {
			if len(args) != 1 {
				return fmt.Errorf("resolve takes exactly one URI, got %d arguments", len(args))
			}
			logger, err := shared.logger("resolve")
			if err != nil {
				return err
			}
			cfg, err := shared.loadConfig(false)
			if err != nil {
				return err
			}
			resolver, err := shared.newResolver(cfg, logger)
			if err != nil {
				return err
			}

			source, err := resolver.Open(context.Background(), args[0])
			if err != nil {
				return err
			}
			defer fault.Close(&err, source, fault.KindIO, "closing "+args[0])

			if _, err := io.Copy(stdout, source); err != nil {
				if fault.KindOf(err) == fault.KindUnknown {
					return fault.IO("reading %s: %v", args[0], err)
				}
				return err
			}
			return nil
		},
	}
}
