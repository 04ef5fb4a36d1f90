package domain

import (
	"fmt"
	"net/http"
)

// ValidationError indicates a malformed or missing required request
// field. It is surfaced as a client error before any backend call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: field %q %s", e.Field, e.Reason)
}

// HTTPStatusCode returns the status code this error maps to.
func (e *ValidationError) HTTPStatusCode() int { return http.StatusBadRequest }

// UnknownProviderError indicates the requested provider is not
// registered. It maps to a client error and schedules no background work.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Name)
}

// HTTPStatusCode returns the status code this error maps to.
func (e *UnknownProviderError) HTTPStatusCode() int { return http.StatusBadRequest }

// ProviderCallError wraps a backend failure: timeout, quota, auth, or an
// empty/unusable reply. It maps to a server error and triggers exactly
// one API_ERROR audit job.
type ProviderCallError struct {
	Provider string
	Err      error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("provider %q call failed: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error { return e.Err }

// HTTPStatusCode returns the status code this error maps to.
func (e *ProviderCallError) HTTPStatusCode() int { return http.StatusInternalServerError }

// StatusCoder is implemented by errors that carry an HTTP mapping.
// Errors without one default to 500 at the HTTP boundary.
type StatusCoder interface {
	HTTPStatusCode() int
}
