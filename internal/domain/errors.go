package domain

import (
	"errors"
	"fmt"
)

// Closed set of failure kinds. Callers classify with errors.Is/errors.As;
// the HTTP layer maps each kind to exactly one status code.
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidInput        = errors.New("invalid_input")
	ErrMissingCredential   = errors.New("missing_credential")
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")
)

// UpstreamStatusError carries a non-success upstream response so the caller
// can pass status and body through verbatim as a diagnostic payload.
type UpstreamStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}
