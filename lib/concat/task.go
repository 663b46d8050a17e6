// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package concat

import (
	"context"
	"fmt"
	"io"
)

// Task describes one file to build.
type Task struct {
	// Destination is the slash-separated path of the file, relative
	// to the output root. It may not be absolute or climb out of the
	// root with "..".
	Destination string

	// Parts are the URIs whose content is written, in order.
	Parts []string

	// SkipExisting leaves an existing destination untouched.
	SkipExisting bool

	// Append adds to an existing destination instead of replacing it.
	Append bool
}

// Status is what happened to a task's destination.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
)

// TaskResult reports one assembled task.
type TaskResult struct {
	Destination string `json:"destination"`

	// Path is the absolute location of the destination.
	Path string `json:"path"`

	Status Status `json:"status"`

	// Parts is the number of parts in the task.
	Parts int `json:"parts"`

	// Bytes is the number of bytes this task wrote. In append mode
	// pre-existing content is not counted.
	Bytes int64 `json:"bytes"`

	// Digest is the lowercase hex BLAKE3 hash of the bytes this task
	// wrote. Empty for skipped tasks.
	Digest string `json:"digest,omitempty"`
}

// Result reports a run.
type Result struct {
	OutputRoot string       `json:"output_root"`
	Tasks      []TaskResult `json:"tasks"`
}

// PartResolver opens the byte stream a part URI refers to.
type PartResolver interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// TaskError is returned by [Engine.Run] when a task fails.
type TaskError struct {
	// Index is the zero-based position of the task in the run.
	Index       int
	Destination string
	Err         error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("file #%d %q: %v", e.Index+1, e.Destination, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
