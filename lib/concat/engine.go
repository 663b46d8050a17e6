// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package concat

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/concat/lib/fault"
)

// Observer is notified around each task of a run. Calls happen on the
// goroutine running [Engine.Run].
type Observer interface {
	TaskStarted(index int, task Task)
	TaskFinished(index int, result TaskResult, err error)
}

// Engine runs a list of tasks in order.
type Engine struct {
	assembler *Assembler
	logger    *slog.Logger
	observers []Observer
}

// NewEngine returns an Engine that assembles each task with assembler.
// A nil logger discards.
func NewEngine(assembler *Assembler, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{assembler: assembler, logger: logger}
}

// Observe adds an observer for subsequent runs.
func (e *Engine) Observe(observer Observer) {
	e.observers = append(e.observers, observer)
}

// Run assembles tasks into outputRoot, one at a time, stopping at the
// first failure. A nil task list is nothing to do and needs no output
// root; an empty non-nil list still does.
//
// ctx is checked between tasks; a part being copied is not
// interrupted.
//
// The returned Result covers the tasks completed before any failure.
// Task failures are returned as *TaskError.
func (e *Engine) Run(ctx context.Context, tasks []Task, outputRoot string) (*Result, error) {
	result := &Result{OutputRoot: outputRoot, Tasks: []TaskResult{}}
	if tasks == nil {
		e.logger.Info("no files are set, skipping")
		return result, nil
	}
	if outputRoot == "" {
		return result, fault.InvalidTask("output directory must be set")
	}

	e.logger.Info("concatenating files", "output_directory", outputRoot, "files", len(tasks))
	for index, task := range tasks {
		if err := ctx.Err(); err != nil {
			return result, &TaskError{Index: index, Destination: task.Destination, Err: fault.IO("run interrupted: %w", err)}
		}
		for _, observer := range e.observers {
			observer.TaskStarted(index, task)
		}
		e.logger.Info("assembling file",
			"index", index,
			"destination", task.Destination,
			"parts", len(task.Parts),
			"skip_existing", task.SkipExisting,
			"append", task.Append,
		)

		taskResult, err := e.assembler.Assemble(ctx, task, outputRoot)
		for _, observer := range e.observers {
			observer.TaskFinished(index, taskResult, err)
		}
		if err != nil {
			return result, &TaskError{Index: index, Destination: task.Destination, Err: err}
		}
		result.Tasks = append(result.Tasks, taskResult)
	}
	return result, nil
}
