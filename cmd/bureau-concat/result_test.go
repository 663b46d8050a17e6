// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/concat/lib/clock"
	"github.com/bureau-foundation/concat/lib/concat"
	"github.com/bureau-foundation/concat/lib/fault"
)

func TestResultLog_Disabled(t *testing.T) {
	results, err := newResultLog("", clock.Real(), nil)
	if err != nil || results != nil {
		t.Fatalf("newResultLog(\"\") = %v, %v; want nil, nil", results, err)
	}

	// Every method is a no-op on a nil log.
	results.writeStart("/out", 1)
	results.TaskStarted(0, concat.Task{})
	results.TaskFinished(0, concat.TaskResult{}, nil)
	results.writeFinish(&concat.Result{}, nil)
	if err := results.Close(); err != nil {
		t.Errorf("Close() on nil log = %v", err)
	}
}

func TestResultLog_Durations(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	path := filepath.Join(t.TempDir(), "result.jsonl")
	results, err := newResultLog(path, fake, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("newResultLog: %v", err)
	}

	results.writeStart("/out", 2)
	results.TaskStarted(0, concat.Task{Destination: "a.txt"})
	fake.Advance(1500 * time.Millisecond)
	results.TaskFinished(0, concat.TaskResult{Destination: "a.txt", Status: concat.StatusSkipped}, nil)

	results.TaskStarted(1, concat.Task{Destination: "b.txt"})
	fake.Advance(250 * time.Millisecond)
	failure := &concat.TaskError{Index: 1, Destination: "b.txt", Err: fault.IO("disk full")}
	results.TaskFinished(1, concat.TaskResult{Destination: "b.txt", Bytes: 3}, errors.Unwrap(failure))
	results.writeFinish(&concat.Result{}, failure)
	if err := results.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := readResultLog(t, path)
	if len(entries) != 4 {
		t.Fatalf("got %d lines, want 4: %v", len(entries), entries)
	}
	assertResultField(t, entries[0], "timestamp", "2026-03-01T12:00:00Z")
	assertResultField(t, entries[1], "status", "skipped")
	assertResultField(t, entries[1], "duration_ms", float64(1500))
	assertResultField(t, entries[2], "status", "failed")
	assertResultField(t, entries[2], "error", "disk full")
	assertResultField(t, entries[2], "duration_ms", float64(250))
	assertResultField(t, entries[3], "category", "execution_error")
	assertResultField(t, entries[3], "kind", "io_failure")
	assertResultField(t, entries[3], "failed_index", float64(1))
	assertResultField(t, entries[3], "duration_ms", float64(1750))
}

func TestResultLog_FailureBeforeAnyTask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl")
	results, err := newResultLog(path, clock.Real(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("newResultLog: %v", err)
	}
	results.writeStart("", 0)
	results.writeFinish(&concat.Result{}, fault.InvalidTask("output directory must be set"))
	results.Close()

	entries := readResultLog(t, path)
	last := entries[len(entries)-1]
	assertResultField(t, last, "category", "failure")
	assertResultField(t, last, "kind", "invalid_task")
	assertResultField(t, last, "failed_index", float64(-1))
	if _, present := last["failed_file"]; present {
		t.Errorf("failed_file present without a failing task: %v", last)
	}
}

func TestResultLog_CreateFailure(t *testing.T) {
	_, err := newResultLog(filepath.Join(t.TempDir(), "missing", "result.jsonl"), clock.Real(), nil)
	if fault.KindOf(err) != fault.KindIO {
		t.Errorf("error = %v, want an io_failure", err)
	}
}
