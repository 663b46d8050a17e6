// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// WriteFile writes content to root/relative (slash-separated),
// creating parent directories, and returns the absolute path.
func WriteFile(t testing.TB, root, relative string, content []byte) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path as a string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// ClosingReader is an in-memory io.ReadCloser that records Close
// calls. CloseErr, when set, is returned from every Close.
type ClosingReader struct {
	*bytes.Reader
	CloseErr error
	closes   atomic.Int32
}

// NewClosingReader returns a ClosingReader over content.
func NewClosingReader(content []byte) *ClosingReader {
	return &ClosingReader{Reader: bytes.NewReader(content)}
}

// Close records the call and returns CloseErr.
func (r *ClosingReader) Close() error {
	r.closes.Add(1)
	return r.CloseErr
}

// Closes reports how many times Close was called.
func (r *ClosingReader) Closes() int {
	return int(r.closes.Load())
}
