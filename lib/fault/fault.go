// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"errors"
	"fmt"
)

// Kind identifies what went wrong, independent of the message text.
type Kind uint8

const (
	// KindUnknown is the zero value, returned by [KindOf] for errors
	// that carry no classification.
	KindUnknown Kind = iota

	// KindInvalidTask: a task descriptor is unusable as given (empty
	// destination, destination escaping the output root, no output root).
	KindInvalidTask

	// KindMalformedURI: a part URI does not match its scheme's grammar.
	KindMalformedURI

	// KindUnsupportedScheme: no resolver is registered for the scheme.
	KindUnsupportedScheme

	// KindNotFound: a referenced file, artifact, or archive entry does
	// not exist.
	KindNotFound

	// KindMalformedArchive: an archive is structurally corrupt.
	KindMalformedArchive

	// KindIO: a read, write, open, or directory creation failed in the
	// environment.
	KindIO
)

// String returns the snake_case name of the kind, used in logs and
// the result file.
func (k Kind) String() string {
	switch k {
	case KindInvalidTask:
		return "invalid_task"
	case KindMalformedURI:
		return "malformed_uri"
	case KindUnsupportedScheme:
		return "unsupported_scheme"
	case KindNotFound:
		return "not_found"
	case KindMalformedArchive:
		return "malformed_archive"
	case KindIO:
		return "io_failure"
	default:
		return "unknown"
	}
}

// Category is the coarse outcome class the host maps to an exit status.
type Category string

const (
	// CategoryFailure marks expected, user-fixable failures.
	CategoryFailure Category = "failure"

	// CategoryExecution marks environmental or unexpected failures.
	CategoryExecution Category = "execution_error"
)

// Category returns the category a kind is reported under. IO and
// unclassified errors are execution errors; everything else is a
// failure.
func (k Kind) Category() Category {
	switch k {
	case KindInvalidTask, KindMalformedURI, KindUnsupportedScheme, KindNotFound, KindMalformedArchive:
		return CategoryFailure
	default:
		return CategoryExecution
	}
}

// Error is a classified error. Err holds the human-readable cause and
// is exposed through Unwrap so that errors.Is and errors.As continue
// to walk the chain beneath the classification.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind. Sentinels
// are the *Error values with a nil Err exported below.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	return ok && sentinel.Err == nil && sentinel.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidTask       = &Error{Kind: KindInvalidTask}
	ErrMalformedURI      = &Error{Kind: KindMalformedURI}
	ErrUnsupportedScheme = &Error{Kind: KindUnsupportedScheme}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrMalformedArchive  = &Error{Kind: KindMalformedArchive}
	ErrIO                = &Error{Kind: KindIO}
)

// Wrap classifies err with kind. A nil err stays nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// InvalidTask creates a KindInvalidTask error.
func InvalidTask(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTask, Err: fmt.Errorf(format, args...)}
}

// MalformedURI creates a KindMalformedURI error.
func MalformedURI(format string, args ...any) *Error {
	return &Error{Kind: KindMalformedURI, Err: fmt.Errorf(format, args...)}
}

// UnsupportedScheme creates a KindUnsupportedScheme error.
func UnsupportedScheme(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedScheme, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// MalformedArchive creates a KindMalformedArchive error.
func MalformedArchive(format string, args ...any) *Error {
	return &Error{Kind: KindMalformedArchive, Err: fmt.Errorf(format, args...)}
}

// IO creates a KindIO error.
func IO(format string, args ...any) *Error {
	return &Error{Kind: KindIO, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's
// chain, or KindUnknown if none is classified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}

// CategoryOf returns the category err is reported under. A nil error
// has no category.
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	return KindOf(err).Category()
}
