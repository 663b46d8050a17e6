// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/concat/lib/clock"
	"github.com/bureau-foundation/concat/lib/concat"
	"github.com/bureau-foundation/concat/lib/fault"
)

// resultPathVariable names the result log path when --result-file is
// not given.
const resultPathVariable = "BUREAU_CONCAT_RESULT_PATH"

// resultLog writes structured JSONL to a file during a run. Each line
// is an independent JSON object, so a run killed midway still leaves
// every completed file's line parseable, and a build tool can tail the
// file for progress.
//
// A nil *resultLog is a valid, disabled log: every method is a no-op.
type resultLog struct {
	logger  *slog.Logger
	clock   clock.Clock
	file    *os.File
	encoder *json.Encoder

	runStarted  time.Time
	taskStarted time.Time
}

// newResultLog creates a JSONL result log at path, truncating any
// existing content. An empty path disables the log and returns nil.
func newResultLog(path string, clk clock.Clock, logger *slog.Logger) (*resultLog, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fault.IO("creating result log %s: %v", path, err)
	}
	return &resultLog{
		logger:  logger,
		clock:   clk,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Close closes the result log file.
func (r *resultLog) Close() error {
	if r == nil {
		return nil
	}
	return r.file.Close()
}

// writeStart records the start of a run.
func (r *resultLog) writeStart(outputDirectory string, fileCount int) {
	if r == nil {
		return
	}
	r.runStarted = r.clock.Now()
	r.write(resultStartEntry{
		Type:            "start",
		OutputDirectory: outputDirectory,
		FileCount:       fileCount,
		Timestamp:       r.runStarted.UTC().Format(time.RFC3339),
	})
}

// TaskStarted implements [concat.Observer].
func (r *resultLog) TaskStarted(index int, task concat.Task) {
	if r == nil {
		return
	}
	r.taskStarted = r.clock.Now()
}

// TaskFinished implements [concat.Observer].
func (r *resultLog) TaskFinished(index int, result concat.TaskResult, err error) {
	if r == nil {
		return
	}
	entry := resultTaskEntry{
		Type:        "task",
		Index:       index,
		Destination: result.Destination,
		Status:      string(result.Status),
		Bytes:       result.Bytes,
		Digest:      result.Digest,
		DurationMS:  clock.Since(r.clock, r.taskStarted).Milliseconds(),
	}
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()
	}
	r.write(entry)
}

// writeFinish records the outcome of a run: a complete line when err
// is nil, a failed line otherwise.
func (r *resultLog) writeFinish(result *concat.Result, err error) {
	if r == nil {
		return
	}
	duration := clock.Since(r.clock, r.runStarted).Milliseconds()
	if err == nil {
		var written int64
		for _, task := range result.Tasks {
			written += task.Bytes
		}
		r.write(resultCompleteEntry{
			Type:       "complete",
			Status:     "ok",
			FileCount:  len(result.Tasks),
			Bytes:      written,
			DurationMS: duration,
		})
		return
	}

	entry := resultFailedEntry{
		Type:        "failed",
		Status:      "failed",
		Category:    string(fault.CategoryOf(err)),
		Kind:        fault.KindOf(err).String(),
		Error:       err.Error(),
		FailedIndex: -1,
		DurationMS:  duration,
	}
	var taskErr *concat.TaskError
	if errors.As(err, &taskErr) {
		entry.FailedIndex = taskErr.Index
		entry.FailedFile = taskErr.Destination
	}
	r.write(entry)
}

func (r *resultLog) write(entry any) {
	if err := r.encoder.Encode(entry); err != nil {
		r.logger.Warn("failed to write result log entry", "error", err)
		return
	}
	// Readers tailing the file see each line as soon as it is written.
	if err := r.file.Sync(); err != nil {
		r.logger.Warn("failed to sync result log", "error", err)
	}
}

// resultStartEntry is the first line, written when the run starts.
type resultStartEntry struct {
	Type            string `json:"type"`
	OutputDirectory string `json:"output_directory"`
	FileCount       int    `json:"file_count"`
	Timestamp       string `json:"timestamp"`
}

// resultTaskEntry is written after each file is written, skipped, or
// fails.
type resultTaskEntry struct {
	Type        string `json:"type"`
	Index       int    `json:"index"`
	Destination string `json:"destination"`
	Status      string `json:"status"`
	Bytes       int64  `json:"bytes"`
	Digest      string `json:"digest,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

// resultCompleteEntry is the last line of a successful run.
type resultCompleteEntry struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	FileCount  int    `json:"file_count"`
	Bytes      int64  `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
}

// resultFailedEntry is the last line of a failed run. FailedIndex is
// -1 when the run failed before any file was attempted.
type resultFailedEntry struct {
	Type        string `json:"type"`
	Status      string `json:"status"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
	Error       string `json:"error"`
	FailedIndex int    `json:"failed_index"`
	FailedFile  string `json:"failed_file,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}
