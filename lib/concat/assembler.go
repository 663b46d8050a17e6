// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package concat

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/concat/lib/fault"
)

// Assembler builds one destination file from its parts.
type Assembler struct {
	resolver   PartResolver
	filesystem Filesystem
	logger     *slog.Logger
}

// NewAssembler returns an Assembler. A nil filesystem means
// [OSFilesystem]; a nil logger discards.
func NewAssembler(resolver PartResolver, filesystem Filesystem, logger *slog.Logger) *Assembler {
	if filesystem == nil {
		filesystem = OSFilesystem{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assembler{
		resolver:   resolver,
		filesystem: filesystem,
		logger:     logger,
	}
}

// Assemble runs task against outputRoot. On failure the returned
// result still describes what was written before the failure.
func (a *Assembler) Assemble(ctx context.Context, task Task, outputRoot string) (result TaskResult, err error) {
	result = TaskResult{Destination: task.Destination, Parts: len(task.Parts)}

	if task.Destination == "" {
		return result, fault.InvalidTask("destination path is empty")
	}
	relative := filepath.FromSlash(task.Destination)
	if !filepath.IsLocal(relative) {
		return result, fault.InvalidTask("destination %q must be a relative path inside the output directory", task.Destination)
	}
	path := filepath.Join(outputRoot, relative)
	result.Path = path

	if task.SkipExisting {
		exists, err := a.exists(path)
		if err != nil {
			return result, err
		}
		if exists {
			a.logger.Info("skipping existing file", "destination", task.Destination, "path", path)
			result.Status = StatusSkipped
			return result, nil
		}
	}

	if err := a.filesystem.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return result, fault.IO("creating directories for %s: %w", path, err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if task.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	output, err := a.filesystem.OpenFile(path, flags, 0o644)
	if err != nil {
		return result, fault.IO("opening %s for writing: %w", path, err)
	}
	defer fault.Close(&err, output, fault.KindIO, "closing "+path)

	result.Status = StatusWritten
	hasher := blake3.New()
	destination := io.MultiWriter(output, hasher)

	if len(task.Parts) == 0 {
		a.logger.Info("parts are empty", "destination", task.Destination, "append", task.Append)
		result.Digest = digest(hasher)
		return result, nil
	}

	for index, part := range task.Parts {
		written, err := a.copyPart(ctx, destination, part)
		result.Bytes += written
		if err != nil {
			return result, fault.Wrap(fault.KindOf(err), fmt.Errorf("part #%d: %w", index+1, err))
		}
	}
	result.Digest = digest(hasher)

	a.logger.Info("file assembled",
		"destination", task.Destination,
		"parts", len(task.Parts),
		"bytes", result.Bytes,
		"append", task.Append,
	)
	return result, nil
}

func (a *Assembler) exists(path string) (bool, error) {
	_, err := a.filesystem.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fault.IO("checking %s: %w", path, err)
	}
}

// copyPart streams one part into destination. The source is closed
// whether or not the copy succeeds.
func (a *Assembler) copyPart(ctx context.Context, destination io.Writer, part string) (written int64, err error) {
	source, err := a.resolver.Open(ctx, part)
	if err != nil {
		return 0, err
	}
	defer fault.Close(&err, source, fault.KindIO, "closing part "+part)

	written, err = io.Copy(destination, source)
	if err != nil && fault.KindOf(err) == fault.KindUnknown {
		err = fault.IO("copying %s: %w", part, err)
	}
	return written, err
}

func digest(hasher hash.Hash) string {
	return hex.EncodeToString(hasher.Sum(nil))
}
