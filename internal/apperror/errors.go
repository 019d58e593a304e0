package apperror

import (
	"errors"
	"net/http"
)

// Sentinel kinds for failures that cross the service boundary. Everything else is
// treated as an internal store failure.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTransientStore   = errors.New("store temporarily unavailable")
)

// Error pairs an error kind with a short, user-facing message and an optional
// underlying cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// NotFound builds a not-found error with a user-facing message.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

// Conflict builds a conflict error with a user-facing message.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// InvalidState builds an invalid-transition error with a user-facing message.
func InvalidState(msg string) error { return &Error{Kind: ErrInvalidState, Message: msg} }

// PermissionDenied builds a forbidden error with a user-facing message.
func PermissionDenied(msg string) error { return &Error{Kind: ErrPermissionDenied, Message: msg} }

// Transient marks a store round-trip failure as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrTransientStore, Message: ErrTransientStore.Error(), Cause: err}
}

// Status maps an error to an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrTransientStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may retry the operation with backoff.
// Only transient store failures qualify.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}

// Message returns the user-visible message for an error. Internal failures are
// collapsed into a generic message so store details never leak to clients.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return fallback
}
