// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mavenrepo locates packaged build artifacts by Maven
// coordinate and opens them as byte streams.
//
// A [Coordinate] is the group:artifact[:type[:classifier]]:version
// tuple parsed by [ParseCoordinate]. The [Store] interface is the one
// capability the concatenation engine needs: open the artifact behind
// a coordinate, or report [ErrNotFound]. Implementations:
//
//   - [LocalRepository]: a directory in the standard Maven layout
//     (~/.m2/repository).
//
//   - [RemoteRepository]: an HTTP(S) Maven repository. Downloads land
//     in a cache directory via temp file + rename, are checked against
//     the published .sha1 when one exists, and get a CBOR resolution
//     record carrying the BLAKE3 digest of the cached bytes. Cached
//     files are re-verified against their record before use.
//
//   - [ObjectRepository]: an S3-compatible bucket holding the same
//     layout under an optional key prefix.
//
//   - [Chain]: tries stores in order; not-found falls through, any
//     other error stops the search.
//
//   - [MemoryStore]: an in-memory fake for tests, keyed by the
//     canonical coordinate string.
//
// All stores return streams the caller must close.
package mavenrepo
