// Package errors defines the typed error used across the back office. Each
// Code maps to an HTTP status and a public message; the wrapped cause is
// only ever logged.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMITED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata is how a Code is rendered to clients.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

const (
	final     = false
	retryable = true
	noDetails = false
	details   = true
)

var metadataByCode = map[Code]Metadata{
	CodeValidation:    {http.StatusBadRequest, final, "validation failed", details},
	CodeUnauthorized:  {http.StatusUnauthorized, final, "authentication required", noDetails},
	CodeForbidden:     {http.StatusForbidden, final, "access denied", noDetails},
	CodeNotFound:      {http.StatusNotFound, final, "resource not found", noDetails},
	CodeConflict:      {http.StatusConflict, final, "conflict detected", noDetails},
	CodeStateConflict: {http.StatusConflict, final, "state transition disallowed", details},
	CodeIdempotency:   {http.StatusConflict, final, "idempotency key reused", details},
	CodeRateLimit:     {http.StatusTooManyRequests, retryable, "rate limit exceeded", noDetails},
	CodeInternal:      {http.StatusInternalServerError, retryable, "internal server error", noDetails},
	CodeDependency:    {http.StatusServiceUnavailable, retryable, "dependency unavailable", details},
}

// MetadataFor falls back to CodeInternal for codes it does not know.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error carries a Code, a client-safe message, optional details and the
// underlying cause. A nil *Error reports CodeInternal.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches client-visible details and returns e.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return string(e.code) + ": " + e.message
	default:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether the outermost *Error in err's chain has code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// FieldErrors builds a validation error whose details map field name to reason.
func FieldErrors(fields map[string]string) *Error {
	return New(CodeValidation, "invalid input").WithDetails(fields)
}
