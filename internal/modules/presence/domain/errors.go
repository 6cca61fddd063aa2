package domain

import (
	"errors"
	"fmt"
)

// Errors for the presence module.
var (
	// ErrConfig is returned when the subsystem cannot start due to missing or invalid configuration.
	ErrConfig = errors.New("invalid presence configuration")

	// ErrUpstream is returned when a REST lookup fails or returns a malformed body.
	ErrUpstream = errors.New("upstream request failed")

	// ErrTransport is returned when the push channel fails. It is never user-visible.
	ErrTransport = errors.New("push channel transport failed")

	// ErrEnrichment is returned when banner resolution fails. It is always swallowed.
	ErrEnrichment = errors.New("banner enrichment failed")

	// ErrNoSnapshot is returned when an operation requires a published snapshot.
	ErrNoSnapshot = errors.New("no presence snapshot available")
)

// UpstreamError describes a failed REST lookup.
type UpstreamError struct {
	Op         string
	StatusCode int // zero when the failure was not an HTTP status
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap allows errors.Is(err, ErrUpstream).
func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
