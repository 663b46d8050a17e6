// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for concat packages.
//
// [ZipArchive] builds in-memory zip archives from [ZipEntry] values.
// Each entry chooses its compression method and whether its sizes are
// written in the local file header ([ZipEntry.Sized]) or deferred to a
// trailing data descriptor, which is what archive/zip's Create does by
// default.
//
// [WriteFile] writes a file under a directory, creating parents, so
// tests can lay out output roots and local Maven repositories in one
// call per file.
//
// [ClosingReader] wraps a byte slice in an io.ReadCloser that records
// whether Close was called, for tests asserting that a stream is
// released on every path.
//
// All helpers call t.Fatalf on failure rather than returning errors.
//
// This package has no concat-internal dependencies.
package testutil
