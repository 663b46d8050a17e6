// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestionDistance is the largest edit distance still offered as
// a "did you mean". Three covers a transposition plus a dropped or
// doubled letter.
const maxSuggestionDistance = 3

// closest returns the candidate nearest to input, or "" when none is
// within maxSuggestionDistance. Ties go to the earlier candidate.
func closest(input string, candidates []string) string {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range candidates {
		if distance := levenshtein(input, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// suggestCommand returns the subcommand name closest to unknown.
func suggestCommand(unknown string, commands []*Command) string {
	names := make([]string, 0, len(commands))
	for _, command := range commands {
		names = append(names, command.Name)
	}
	return closest(unknown, names)
}

// suggestFlag finds the first argument naming a flag flagSet does not
// define and returns the closest defined flag, with its dash prefix.
// Arguments after "--" are positional and never considered.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var defined []string
	flagSet.VisitAll(func(f *pflag.Flag) {
		defined = append(defined, f.Name)
	})

	for _, arg := range args {
		if arg == "--" {
			return ""
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if flagSet.Lookup(name) != nil {
			continue
		}

		switch suggestion := closest(name, defined); len(suggestion) {
		case 0:
			return ""
		case 1:
			return "-" + suggestion
		default:
			return "--" + suggestion
		}
	}
	return ""
}

// levenshtein is the number of single-byte insertions, deletions, and
// substitutions that turn a into b.
func levenshtein(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	// row[j] holds the distance between the current prefix of a and b[:j].
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diagonal := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			substitution := diagonal
			if a[i-1] != b[j-1] {
				substitution++
			}
			row[j] = min(above+1, row[j-1]+1, substitution)
			diagonal = above
		}
	}
	return row[len(b)]
}
