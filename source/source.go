// Package source provides manifest sources: local build output, a polled
// development asset server, and S3-hosted deployments.
//
// A Source produces raw manifest bytes; parsing and validation live in the
// manifest package. Sources do not retry — retry policy belongs to the
// loader, which knows whether a failure is worth waiting out.
package source

import (
	"context"
	"fmt"
)

// Source produces raw manifest bytes from one backing location.
type Source interface {
	// Fetch returns the raw manifest body.
	// Must respect context cancellation and deadlines.
	Fetch(ctx context.Context) ([]byte, error)

	// Name describes the source for logs and error messages.
	Name() string

	// Close releases source resources.
	Close() error
}

// StatusError is returned for non-2xx HTTP responses from the dev server.
// Carrying the status code lets callers distinguish a missing manifest
// (404, build not started) from a broken dev server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.Code }
