package shared

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches any DomainError carrying the same code, so wrapped variants
// still satisfy errors.Is against the package sentinels.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Wrap returns a copy of the error carrying cause
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		cause:   cause,
	}
}

// WithDetail returns a copy of the error with detail appended to the message
func (e *DomainError) WithDetail(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
		cause:   e.cause,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrNotReady            = NewDomainError("NOT_READY", "Required data has not been loaded yet")
	ErrUpstreamFetch       = NewDomainError("UPSTREAM_FETCH", "Document store fetch failed")
	ErrMalformedCollection = NewDomainError("MALFORMED_COLLECTION", "Collection has an unexpected shape")
)

// NotReady builds an ErrNotReady variant naming the collections still missing
func NotReady(missing []string) *DomainError {
	if len(missing) == 0 {
		return ErrNotReady
	}
	return ErrNotReady.WithDetail("missing %s", strings.Join(missing, ", "))
}

// IsNotReady reports whether err is (or wraps) the not-ready sentinel
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}
