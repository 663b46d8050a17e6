// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concat/cmd/bureau-concat/cli"
	"github.com/bureau-foundation/concat/lib/clock"
	"github.com/bureau-foundation/concat/lib/concat"
)

func runCommand(stdout io.Writer) *cli.Command {
	var (
		shared     options
		outputDir  string
		resultPath string
	)

	return &cli.Command{
		Name:    "run",
		Summary: "Build the files listed in the config",
		Description: `Build every file listed in the config, in order.

Each file is the concatenation of its parts. A part is a URI:

  data:,text              literal content (data:;base64,... for binary)
  path/to/file            a file relative to the base directory
  file:/abs/path          a file by absolute path
  maven:g:a:v!/entry      an entry inside an artifact archive

The run stops at the first file that fails. Files written before the
failure are left in place. Exit status is 1 for a build failure the
config can fix and 2 for an I/O error.`,
		Usage: "bureau-concat run [flags]",
		Examples: []cli.Example{
			{
				Description: "Build the files in concat.yaml",
				Command:     "bureau-concat run --config concat.yaml",
			},
			{
				Description: "Build into another directory without touching the network",
				Command:     "bureau-concat run --config concat.yaml --output-dir target/classes --offline",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			shared.bind(flagSet)
			flagSet.StringVar(&outputDir, "output-dir", "", "directory files are written under (overrides output_directory)")
			flagSet.StringVar(&resultPath, "result-file", "", "write a JSONL result log here (default: $"+resultPathVariable+")")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q: run takes no positional arguments", args[0])
			}
			logger, err := shared.logger("run")
			if err != nil {
				return err
			}
			cfg, err := shared.loadConfig(true)
			if err != nil {
				return err
			}
			if outputDir != "" {
				if cfg.OutputDirectory, err = filepath.Abs(outputDir); err != nil {
					return fmt.Errorf("resolving --output-dir %s: %w", outputDir, err)
				}
			}
			if resultPath == "" {
				resultPath = os.Getenv(resultPathVariable)
			}

			resolver, err := shared.newResolver(cfg, logger)
			if err != nil {
				return err
			}
			engine := concat.NewEngine(concat.NewAssembler(resolver, concat.OSFilesystem{}, logger), logger)

			results, err := newResultLog(resultPath, clock.Real(), logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := results.Close(); err != nil {
					logger.Warn("failed to close result log", "path", resultPath, "error", err)
				}
			}()
			if results != nil {
				engine.Observe(results)
			}

			tasks := cfg.Tasks()
			results.writeStart(cfg.OutputDirectory, len(tasks))
			result, err := engine.Run(context.Background(), tasks, cfg.OutputDirectory)
			results.writeFinish(result, err)
			if err != nil {
				return err
			}

			printSummary(stdout, result)
			return nil
		},
	}
}

// printSummary writes one line per task: status, size, destination.
func printSummary(w io.Writer, result *concat.Result) {
	if len(result.Tasks) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	for _, task := range result.Tasks {
		fmt.Fprintf(tw, "%s\t%d bytes\t%s\n", task.Status, task.Bytes, task.Destination)
	}
	tw.Flush()
}
