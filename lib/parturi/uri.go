// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package parturi

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/bureau-foundation/concat/lib/fault"
)

// schemePattern matches a leading RFC 3986 scheme and its colon.
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// URI is a part URI split into scheme and scheme-specific part.
type URI struct {
	// Raw is the URI as written.
	Raw string

	// Scheme is the lowercased scheme token, empty when the URI has
	// none.
	Scheme string

	// Opaque is the percent-decoded scheme-specific part, without any
	// fragment.
	Opaque string
}

// Parse splits raw into a URI. Only an invalid percent escape is an
// error; whether the scheme-specific part makes sense is up to the
// scheme.
func Parse(raw string) (URI, error) {
	uri := URI{Raw: raw}
	rest := raw
	if token := schemePattern.FindString(raw); token != "" {
		uri.Scheme = strings.ToLower(strings.TrimSuffix(token, ":"))
		rest = raw[len(token):]
	}
	if fragment := strings.IndexByte(rest, '#'); fragment >= 0 {
		rest = rest[:fragment]
	}

	decoded, err := url.PathUnescape(rest)
	if err != nil {
		return URI{}, fault.MalformedURI("part %q: %v", raw, err)
	}
	uri.Opaque = decoded
	return uri, nil
}
