// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zipentry locates one named entry inside a zip archive that
// is only available as a forward-only stream.
//
// archive/zip needs an io.ReaderAt and reads the central directory at
// the end of the file. Artifacts arrive as io.ReadCloser values from
// HTTP bodies, object storage, and local files alike, so [Find] walks
// the local file headers from the front instead, discarding entries
// until the wanted name appears. Nothing beyond one bufio buffer is
// held in memory.
//
// Supported compression methods are Store, Deflate (through
// github.com/klauspost/compress/flate) and Zstandard (method 93,
// github.com/klauspost/compress/zstd). Entries whose sizes are deferred
// to a data descriptor can be walked past only when the compressed
// stream is self-terminating, which excludes Store and Zstandard: such
// archives are reported as malformed rather than guessed at.
//
// Errors are classified with package fault. A missing entry is
// [fault.KindNotFound] and wraps [ErrEntryNotFound]; structural damage
// (bad signatures, truncation, corrupt compressed data, CRC or size
// mismatches) is [fault.KindMalformedArchive] and wraps [ErrMalformed];
// read failures from the underlying stream are [fault.KindIO]. The
// returned entry reader reports CRC and size mismatches from Read at
// end of data, so a consumer copying the entry sees the damage as a
// classified error.
package zipentry
