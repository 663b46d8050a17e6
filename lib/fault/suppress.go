// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// suppressedError keeps a primary error and the secondary failures
// that happened while cleaning up after it. Unwrap exposes only the
// primary, so classification and errors.Is follow the original cause.
type suppressedError struct {
	primary    error
	suppressed []error
}

func (e *suppressedError) Error() string {
	var builder strings.Builder
	builder.WriteString(e.primary.Error())
	for _, secondary := range e.suppressed {
		builder.WriteString(" (suppressed: ")
		builder.WriteString(secondary.Error())
		builder.WriteString(")")
	}
	return builder.String()
}

func (e *suppressedError) Unwrap() error { return e.primary }

// Suppress attaches secondary to primary as suppressed context. When
// either is nil the other is returned unchanged.
func Suppress(primary, secondary error) error {
	if secondary == nil {
		return primary
	}
	if primary == nil {
		return secondary
	}
	if existing, ok := primary.(*suppressedError); ok {
		combined := make([]error, 0, len(existing.suppressed)+1)
		combined = append(combined, existing.suppressed...)
		combined = append(combined, secondary)
		return &suppressedError{primary: existing.primary, suppressed: combined}
	}
	return &suppressedError{primary: primary, suppressed: []error{secondary}}
}

// Suppressed returns the secondary errors attached to err with
// [Suppress], or nil.
func Suppressed(err error) []error {
	var holder *suppressedError
	if errors.As(err, &holder) {
		return holder.suppressed
	}
	return nil
}

// Close closes closer and folds a close failure into *errp. If *errp
// is nil the close failure becomes the result, classified as kind;
// otherwise it is attached to *errp as suppressed context. Intended
// for defers on functions with a named error result:
//
//	defer fault.Close(&err, output, fault.KindIO, "closing "+path)
func Close(errp *error, closer io.Closer, kind Kind, what string) {
	closeErr := closer.Close()
	if closeErr == nil {
		return
	}
	closeErr = &Error{Kind: kind, Err: fmt.Errorf("%s: %w", what, closeErr)}
	*errp = Suppress(*errp, closeErr)
}
