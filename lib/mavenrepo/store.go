// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mavenrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound reports that no file backs a coordinate in a store.
var ErrNotFound = errors.New("artifact not found")

// Store opens artifacts by coordinate. The returned stream must be
// closed by the caller. Implementations wrap ErrNotFound when the
// artifact does not exist; every other error means the lookup itself
// failed.
type Store interface {
	Open(ctx context.Context, coordinate Coordinate) (io.ReadCloser, error)
}

// Chain searches stores in order and returns the first hit.
type Chain []Store

// Open tries each store in turn. A store reporting ErrNotFound is
// skipped; any other error ends the search and is returned as is.
func (c Chain) Open(ctx context.Context, coordinate Coordinate) (io.ReadCloser, error) {
	var misses []string
	for _, store := range c {
		stream, err := store.Open(ctx, coordinate)
		if err == nil {
			return stream, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		misses = append(misses, err.Error())
	}
	if len(misses) == 0 {
		return nil, fmt.Errorf("%w: %s (no repositories configured)", ErrNotFound, coordinate)
	}
	return nil, fmt.Errorf("%w: %s (searched %d repositories: %s)",
		ErrNotFound, coordinate, len(misses), strings.Join(misses, "; "))
}
