// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package concat

import (
	"io"
	"io/fs"
	"os"
)

// Filesystem is the destination-side file access the assembler needs.
type Filesystem interface {
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error)
}

// OSFilesystem is the Filesystem of the running process.
type OSFilesystem struct{}

func (OSFilesystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (OSFilesystem) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (OSFilesystem) OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error) {
	file, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return file, nil
}
