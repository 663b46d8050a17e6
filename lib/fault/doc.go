// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fault defines the error taxonomy shared by the concatenation
// packages.
//
// Every error that crosses a package boundary in the resolution and
// assembly path carries a [Kind]. Kinds group into two [Category]
// values that the host reports differently:
//
//   - [CategoryFailure]: the build configuration or its referenced
//     content is wrong (missing destination, malformed URI, unknown
//     scheme, missing resource, corrupt archive). The user fixes the
//     input and reruns.
//
//   - [CategoryExecution]: the environment failed underneath a valid
//     request (a directory cannot be created, a file cannot be opened
//     or written). Anything without a Kind lands here too.
//
// Kinds are matched with errors.Is against the exported sentinels
// ([ErrInvalidTask], [ErrNotFound], ...) and extracted with [KindOf].
//
// [Suppress] and [Close] implement guaranteed-cleanup chaining: when a
// stream fails to close after an earlier error, the close failure is
// attached to the primary error as suppressed context rather than
// replacing it or being dropped.
//
// This package has no internal dependencies.
package fault
