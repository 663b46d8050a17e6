// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package concat builds files by concatenating parts.
//
// A [Task] names a destination, relative to an output root, and an
// ordered list of part URIs. The [Assembler] runs one task: it checks
// the skip-existing policy, creates parent directories, opens the
// destination for truncating or appending writes, and streams each
// part into it in order with no separators. Parts are opened through a
// [PartResolver] (in practice a *parturi.Resolver) and every stream,
// source and destination, is closed on every path. A close failure
// never masks the error that caused the unwind; it is attached with
// fault.Suppress instead. Bytes already written when a part fails stay
// in the destination.
//
// If both SkipExisting and Append are set and the destination exists,
// the task is skipped: skip is checked first.
//
// The [Engine] runs tasks sequentially and stops at the first failure,
// returning a [*TaskError] that identifies the task. The failure's
// category (see fault.CategoryOf) separates user-fixable failures from
// environmental ones: I/O failures such as a destination colliding with
// a directory are execution errors, everything else is a failure.
//
// Filesystem access for destinations goes through [Filesystem], so
// tests can substitute failing implementations. [OSFilesystem] is the
// real one.
package concat
