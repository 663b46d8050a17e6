// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the configuration of a concatenation run.
//
// Configuration is loaded from a single file specified by either the
// BUREAU_CONCAT_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks and no automatic file
// search. The file is YAML (.yaml, .yml) or JSON with comments
// (.json, .jsonc, stripped with github.com/tidwall/jsonc); unknown keys
// are rejected in both so that a misspelled option fails loudly.
//
// An optional dotenv file (env_file, or [LoadEnvFile] for a --env-file
// flag) is loaded into the process environment before variable
// expansion, without overriding variables that are already set.
// ${HOME}, ${CONFIG_DIR}, any environment variable, and
// ${VAR:-default} patterns are expanded in directory, repository, and
// credential fields. Part URIs are never expanded: their content is
// literal. Relative directories resolve against the directory holding
// the config file.
//
// Key exports:
//
//   - [Config] -- output and base directories, repositories, files
//   - [Default] -- values applied before the file is read
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Tasks] -- the files as engine tasks
package config
