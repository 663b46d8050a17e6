// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package parturi turns part URIs into byte streams.
//
// A part URI names one source of bytes for a concatenated file. The
// scheme token selects a [Scheme] from a registry keyed by lowercase
// token; a URI without a scheme is a file path. Three schemes are
// registered by [New]:
//
//   - file: a path, resolved against the base directory unless it is
//     absolute.
//   - data: inline content per the data URI convention, either plain
//     percent-decoded text or base64 when the media type prefix ends in
//     ";base64". Base64 is decoded permissively: characters outside the
//     alphabet (line breaks, spaces) are ignored and decoding stops at
//     the first padding character.
//   - maven (the token is configurable): an artifact coordinate,
//     optionally followed by "!/" and the name of an entry inside the
//     artifact, which is then read as a zip archive with package
//     zipentry.
//
// The scheme-specific part is everything after the scheme colon up to
// an optional '#' fragment, with %XX escapes decoded. '+' is literal.
//
// All errors carry a [fault.Kind]: an unregistered scheme is
// KindUnsupportedScheme, a part that does not fit its scheme's grammar
// is KindMalformedURI, a missing file, artifact, or archive entry is
// KindNotFound, and environmental failures are KindIO.
package parturi
