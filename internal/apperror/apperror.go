// Package apperror defines the typed errors shared by the service, repository
// and HTTP layers. Handlers translate them to status codes; nothing else in
// the application knows about HTTP.
//
// TWO PIECES WORK TOGETHER:
//
//   - Sentinels (ErrNotFound, ErrConflict, ...) say WHAT KIND of failure
//     happened. Callers test for them with errors.Is.
//   - AppError carries the human-readable message (and optionally the
//     offending field) and wraps one sentinel via Unwrap.
//
// Because AppError implements Unwrap, wrapping it further with
// fmt.Errorf("...: %w", err) keeps both pieces reachable:
//
//	repo returns:    apperror.NotFound("task", "12")
//	service wraps:   fmt.Errorf("service/task: updating task 12: %w", err)
//	handler checks:  errors.Is(err, apperror.ErrNotFound)  → 404
//	handler reads:   errors.As(err, &appErr); appErr.Message → response body
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError is an application error with a client-safe message.
//
// Message is shown to API clients as-is, so it must never contain internal
// details such as SQL, file paths or wrapped driver errors.
type AppError struct {
	Err     error  // one of the sentinels above; matched by errors.Is
	Message string // human-readable, safe to return to the client
	Field   string // optional: request field that failed validation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource. Lookups scoped to an owner use it for
// records that exist but belong to someone else as well, so the response
// never reveals another user's ids.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports bad input. HTTP handlers map it to 400.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports that a resource with the same unique key already exists.
// The key is named in the message, e.g. "username already taken".
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
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

// Unauthorized covers bad credentials and missing or rejected tokens.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
