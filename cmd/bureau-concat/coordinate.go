// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concat/cmd/bureau-concat/cli"
	"github.com/bureau-foundation/concat/lib/config"
	"github.com/bureau-foundation/concat/lib/fault"
	"github.com/bureau-foundation/concat/lib/mavenrepo"
)

// coordinateOutput is the --json form of the coordinate command.
type coordinateOutput struct {
	Canonical  string `json:"canonical"`
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Type       string `json:"type"`
	Classifier string `json:"classifier,omitempty"`
	Version    string `json:"version"`
	Path       string `json:"path"`
	Local      string `json:"local"`
}

func coordinateCommand(stdout io.Writer) *cli.Command {
	var (
		localRepository string
		jsonOutput      bool
	)

	return &cli.Command{
		Name:    "coordinate",
		Summary: "Parse an artifact coordinate and show its repository path",
		Description: `Parse a coordinate in one of the forms

  group:artifact:version
  group:artifact:type:version
  group:artifact:type:classifier:version

and print its canonical form, its path inside a Maven repository, and
where it would be found in the local repository.`,
		Usage: "bureau-concat coordinate <coordinate> [flags]",
		Examples: []cli.Example{
			{
				Description: "Find the sources jar of a library",
				Command:     "bureau-concat coordinate org.example:lib:jar:sources:1.0",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("coordinate", pflag.ContinueOnError)
			flagSet.StringVar(&localRepository, "local", config.Default().Repositories.Local, "local repository root")
			flagSet.BoolVar(&jsonOutput, "json", false, "print as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("coordinate takes exactly one coordinate, got %d arguments", len(args))
			}
			coordinate, err := mavenrepo.ParseCoordinate(args[0])
			if err != nil {
				return fault.Wrap(fault.KindMalformedURI, err)
			}

			output := coordinateOutput{
				Canonical:  coordinate.String(),
				GroupID:    coordinate.GroupID,
				ArtifactID: coordinate.ArtifactID,
				Type:       coordinate.Type,
				Classifier: coordinate.Classifier,
				Version:    coordinate.Version,
				Path:       coordinate.Path(),
				Local:      mavenrepo.NewLocalRepository(localRepository).Path(coordinate),
			}
			if jsonOutput {
				encoder := json.NewEncoder(stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(output)
			}

			fmt.Fprintf(stdout, "canonical: %s\n", output.Canonical)
			fmt.Fprintf(stdout, "path:      %s\n", output.Path)
			fmt.Fprintf(stdout, "local:     %s\n", output.Local)
			return nil
		},
	}
}
