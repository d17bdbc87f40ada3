// Package apperr carries the machine code and user-facing message of a
// failed submission alongside its cause.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	// KindInternal covers storage and configuration failures.
	KindInternal Kind = iota
	// KindInvalid covers malformed bodies and rejected fields.
	KindInvalid
	// KindConflict covers requests refused by an administrative state.
	KindConflict
)

// Error is a classified error with a machine code and a human message.
type Error struct {
	Kind        Kind
	Code        string
	UserMessage string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Invalid returns a 400-class error.
func Invalid(code, userMessage string) *Error {
	return &Error{Kind: KindInvalid, Code: code, UserMessage: userMessage}
}

// Conflict returns a 409-class error.
func Conflict(code, userMessage string) *Error {
	return &Error{Kind: KindConflict, Code: code, UserMessage: userMessage}
}

// Internal returns a 500-class error wrapping err.
func Internal(code, userMessage string, err error) *Error {
	return &Error{Kind: KindInternal, Code: code, UserMessage: userMessage, Err: err}
}

// As extracts an *Error from err. Unclassified errors become internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal_error", "Error interno del servidor. Inténtalo más tarde.", err)
}
