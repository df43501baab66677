// Package apperror defines the error taxonomy shared by every layer.
//
// TWO FAMILIES OF ERRORS:
// The first family is caller-facing (not found, validation, conflict, forbidden,
// unauthorized). Handlers map them to HTTP status codes.
//
// The second family belongs to the sync layer (remote unavailable, remote write
// failed, empty dataset, configuration missing). None of them is ever fatal to a
// session: the coordinator recovers from each one and only logs it.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// Sync layer.
	ErrRemoteUnavailable    = errors.New("remote store unavailable")
	ErrRemoteWriteFailed    = errors.New("remote write failed")
	ErrEmptyDataset         = errors.New("empty dataset")
	ErrConfigurationMissing = errors.New("configuration missing")
)

type AppError struct {
	Err     error  // sentinel the error wraps
	Message string // Human-readable error message
	Field   string // Optional: field causing the error

	cause error // underlying failure, for the sync-layer errors
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// either ErrRemoteUnavailable or context.DeadlineExceeded on a timeout.
func (e *AppError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a duplicate identity, e.g. a username or flat number
// that is already taken.
func Conflict(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with %s %s already exists", resource, field, value),
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned for bad credentials or a missing session.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// RemoteUnavailable wraps a transport or service failure on a remote read.
func RemoteUnavailable(cause error) *AppError {
	return &AppError{
		Err:     ErrRemoteUnavailable,
		Message: fmt.Sprintf("remote store unavailable: %v", cause),
		cause:   cause,
	}
}

// RemoteWriteFailed wraps a failure on a remote write.
func RemoteWriteFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrRemoteWriteFailed,
		Message: fmt.Sprintf("remote write failed: %v", cause),
		cause:   cause,
	}
}

func ConfigurationMissing(what string) *AppError {
	return &AppError{
		Err:     ErrConfigurationMissing,
		Message: fmt.Sprintf("configuration missing: %s", what),
		Field:   what,
	}
}

func EmptyDataset(source string) *AppError {
	return &AppError{
		Err:     ErrEmptyDataset,
		Message: fmt.Sprintf("%s has no users", source),
	}
}

// IsRemoteFailure reports whether err is one the coordinator treats as
// "remote unavailable". An unset endpoint is treated the same way.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrConfigurationMissing)
}
