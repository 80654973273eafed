// Package manifest parses build-tool asset manifests and indexes their
// entrypoint section.
//
// This file defines sentinel errors and a classified error wrapper for
// manifest failures. These enable callers to use errors.Is/errors.As
// for typed assertions rather than string matching.
package manifest

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors for manifest failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrNotFound indicates the manifest file or URL does not exist (ENOENT, 404).
	ErrNotFound = errors.New("manifest not found")

	// ErrMalformed indicates the manifest body is not valid manifest JSON.
	ErrMalformed = errors.New("manifest malformed")

	// ErrNotReady indicates a well-formed manifest whose entrypoint section
	// is still being produced by the upstream build tool.
	ErrNotReady = errors.New("manifest not ready")

	// ErrUnavailable indicates a transient fetch failure (non-2xx status,
	// connection refused, timeout). Retry is expected to help.
	ErrUnavailable = errors.New("manifest unavailable")
)

// Error wraps an underlying error with manifest failure classification.
// It preserves the original error in the chain for inspection via errors.As.
type Error struct {
	// Kind is the sentinel error for classification (e.g. ErrNotReady).
	Kind error
	// Op is the operation that failed ("read", "fetch", "parse", "validate").
	Op string
	// Source describes the manifest source involved, if any.
	Source string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// NewError creates a classified manifest error.
func NewError(kind error, op, source string, err error) *Error {
	return &Error{
		Kind:   kind,
		Op:     op,
		Source: source,
		Err:    err,
	}
}

// WrapReadError classifies and wraps a file read error.
// Returns nil if err is nil.
func WrapReadError(err error, source string) error {
	if err == nil {
		return nil
	}
	kind := ErrUnavailable
	if errors.Is(err, os.ErrNotExist) {
		kind = ErrNotFound
	}
	return NewError(kind, "read", source, err)
}

// WrapFetchError classifies and wraps a network fetch error.
// Returns nil if err is nil.
func WrapFetchError(err error, source string) error {
	if err == nil {
		return nil
	}
	return NewError(classifyFetchError(err), "fetch", source, err)
}

// WrapParseError wraps a JSON parse error as ErrMalformed.
// Returns nil if err is nil.
func WrapParseError(err error, source string) error {
	if err == nil {
		return nil
	}
	return NewError(ErrMalformed, "parse", source, err)
}

// classifyFetchError determines the sentinel for a fetch failure.
func classifyFetchError(err error) error {
	var statusErr interface{ HTTPStatus() int }
	if errors.As(err, &statusErr) && statusErr.HTTPStatus() == 404 {
		return ErrNotFound
	}
	return ErrUnavailable
}
