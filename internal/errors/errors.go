// Package errors provides standardized domain errors with codes for the taplist server.
//
// Usage:
//
//	// In services - return typed errors
//	if occupied {
//	    return errors.DuplicatePositionf("tap %d is already assigned", pos)
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrDuplicatePosition) {
//	    // surface as a conflict
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeDuplicatePosition Code = "DUPLICATE_POSITION"
	CodeValidation        Code = "VALIDATION"
	CodeInvalidField      Code = "INVALID_FIELD"
	CodeLookupUnavailable Code = "LOOKUP_UNAVAILABLE"
	CodeStoreUnavailable  Code = "STORE_UNAVAILABLE"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicatePosition, CodeConflict:
		return http.StatusConflict
	case CodeValidation, CodeInvalidField:
		return http.StatusBadRequest
	case CodeLookupUnavailable, CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDuplicatePosition = &Error{Code: CodeDuplicatePosition, Message: "tap position already assigned"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInvalidField      = &Error{Code: CodeInvalidField, Message: "unrecognized field"}
	ErrLookupUnavailable = &Error{Code: CodeLookupUnavailable, Message: "catalog lookup unavailable"}
	ErrStoreUnavailable  = &Error{Code: CodeStoreUnavailable, Message: "store unavailable"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicatePosition creates a duplicate position error.
func DuplicatePosition(msg string) *Error {
	return &Error{Code: CodeDuplicatePosition, Message: msg}
}

// DuplicatePositionf creates a duplicate position error with formatted message.
func DuplicatePositionf(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicatePosition, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// InvalidField creates an invalid field error.
func InvalidField(msg string) *Error {
	return &Error{Code: CodeInvalidField, Message: msg}
}

// InvalidFieldf creates an invalid field error with formatted message.
func InvalidFieldf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidField, Message: fmt.Sprintf(format, args...)}
}

// LookupUnavailable creates a lookup unavailable error.
func LookupUnavailable(msg string) *Error {
	return &Error{Code: CodeLookupUnavailable, Message: msg}
}

// StoreUnavailable creates a store unavailable error.
func StoreUnavailable(msg string) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: msg}
}

// StoreUnavailablef creates a store unavailable error with formatted message.
func StoreUnavailablef(format string, args ...any) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
