// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-concat builds resource files by concatenating parts named by
// URI: literal data:, local file: paths, and entries inside Maven
// artifacts resolved through the local repository, HTTP(S) remote
// repositories, and S3-compatible object storage.
//
// Commands:
//
//	bureau-concat run --config concat.yaml     build every configured file
//	bureau-concat resolve <uri>                print one part's bytes
//	bureau-concat coordinate <coordinate>      show an artifact's repository path
//	bureau-concat version                      print version information
//
// Exit status is 0 on success, 1 for a failure the build configuration
// can fix (bad destination, malformed or unsupported URI, missing file,
// artifact, or entry, corrupt archive, bad flags or config), and 2 for
// an I/O error.
//
// With --result-file (or BUREAU_CONCAT_RESULT_PATH) the run command
// writes a JSONL log: a start line, one line per file, and a final
// complete or failed line.
package main
