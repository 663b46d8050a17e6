// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind bureau-concat:
// a tree of [Command] values parsed with github.com/spf13/pflag,
// Levenshtein suggestions for mistyped commands and flags, a
// terminal-aware slog constructor, and the mapping from returned
// errors to process exit codes ([ExitCode]).
package cli
