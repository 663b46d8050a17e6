// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/concat/lib/fault"
)

// Exit codes reported by bureau-concat.
const (
	// ExitSuccess means every file was written or skipped.
	ExitSuccess = 0

	// ExitFailure means a user-fixable problem: a bad task, a malformed
	// or unsupported URI, a missing resource or archive entry, a broken
	// archive, or a bad command line or configuration file.
	ExitFailure = 1

	// ExitExecutionError means an environmental failure such as an I/O
	// error while reading a part or writing a destination.
	ExitExecutionError = 2
)

// ExitError signals a non-zero exit code without printing an extra
// error message. When a command handler returns an ExitError, the CLI
// framework exits with the specified code without printing the error
// string; the command is expected to have already written its own
// output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. The main function checks for this
// interface on returned errors to distinguish "handled non-zero exit"
// from "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode maps an error returned by a command to the process exit
// status. Classified errors follow their [fault.Category]. Errors the
// fault package never saw come from the command line or the
// configuration file and are reported as failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	var classified *fault.Error
	if !errors.As(err, &classified) {
		return ExitFailure
	}
	if fault.CategoryOf(err) == fault.CategoryExecution {
		return ExitExecutionError
	}
	return ExitFailure
}
