// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mavenrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalRepository serves artifacts from a directory laid out like a
// Maven local repository.
type LocalRepository struct {
	root string
}

// NewLocalRepository returns a repository rooted at root. The
// directory does not need to exist; a missing root just means every
// lookup misses.
func NewLocalRepository(root string) *LocalRepository {
	return &LocalRepository{root: root}
}

// Root returns the repository root directory.
func (r *LocalRepository) Root() string { return r.root }

// Path returns the absolute file path for coordinate.
func (r *LocalRepository) Path(coordinate Coordinate) string {
	return filepath.Join(r.root, filepath.FromSlash(coordinate.Path()))
}

// Open opens the artifact file. A missing file, or a directory where
// the file should be, wraps ErrNotFound. A coordinate that fails
// [Coordinate.Validate] is rejected before touching the filesystem.
func (r *LocalRepository) Open(ctx context.Context, coordinate Coordinate) (io.ReadCloser, error) {
	if err := coordinate.Validate(); err != nil {
		return nil, err
	}
	path := r.Path(coordinate)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, coordinate, r.root)
		}
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s in %s (%s is a directory)", ErrNotFound, coordinate, r.root, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return file, nil
}
