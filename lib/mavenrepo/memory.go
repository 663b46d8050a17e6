// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mavenrepo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory Store for tests. Artifacts are keyed by
// the canonical coordinate string ("g:a:jar:v"), and every stream it
// hands out is tracked so tests can assert that all were closed.
type MemoryStore struct {
	mu        sync.Mutex
	artifacts map[string][]byte
	open      int
	opened    int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string][]byte)}
}

// Put stores content under the canonical form of coordinate. Panics if
// coordinate does not parse: callers are tests with literal input.
func (s *MemoryStore) Put(coordinate string, content []byte) {
	parsed, err := ParseCoordinate(coordinate)
	if err != nil {
		panic("mavenrepo: MemoryStore.Put: " + err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[parsed.String()] = bytes.Clone(content)
}

// Open returns a reader over the stored content.
func (s *MemoryStore) Open(ctx context.Context, coordinate Coordinate) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.artifacts[coordinate.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s in memory store", ErrNotFound, coordinate)
	}
	s.open++
	s.opened++
	return &memoryStream{Reader: bytes.NewReader(content), store: s}, nil
}

// Outstanding returns the number of streams opened and not yet closed.
func (s *MemoryStore) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Opened returns the total number of streams handed out.
func (s *MemoryStore) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

type memoryStream struct {
	*bytes.Reader
	store  *MemoryStore
	closed bool
}

func (m *memoryStream) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.store.mu.Lock()
	m.store.open--
	m.store.mu.Unlock()
	return nil
}
