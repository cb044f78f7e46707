package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so the transport layer can map them
// to status codes without inspecting messages.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnavailable  ErrorKind = "unavailable"
)

// DomainError is the error type raised by domain and application code.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError creates a validation failure (bad caller-supplied data).
func NewValidationError(msg string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: msg}
}

// NewValidationErrorf creates a validation failure with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewUnauthorizedError creates a session/authorization failure.
func NewUnauthorizedError(msg string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Message: msg}
}

// NewForbiddenError creates an ownership/permission failure.
func NewForbiddenError(msg string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: msg}
}

// NewNotFoundError creates a not-found failure for the given entity and key.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError creates a domain-rule conflict (e.g. duplicate name).
func NewConflictError(msg string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: msg}
}

// NewUnavailableError creates an upstream-unavailability failure.
func NewUnavailableError(msg string) *DomainError {
	return &DomainError{Kind: KindUnavailable, Message: msg}
}

// KindOf returns the error's kind, or empty string for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
