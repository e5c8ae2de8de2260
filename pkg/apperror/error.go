package apperror

import (
	"fmt"
	"net/http"
)

// Kind classifies an error beyond its HTTP code so callers can tell
// apart outcomes that share a status (for example an illegal
// transition versus a concurrent-update conflict, both 409).
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindConflict          Kind = "conflict"
	KindStorage           Kind = "storage"
	KindExternal          Kind = "external_dependency"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
)

type AppError struct {
	Kind    Kind     `json:"kind"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"` // failing submission fields, validation only
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(message string, fields ...string) *AppError {
	e := New(KindValidation, http.StatusBadRequest, message, nil)
	e.Fields = fields
	return e
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

// InvalidTransition marks a lifecycle event that is not legal from the
// applicant's current state. Distinct from NotFound so callers can
// render a specific message.
func InvalidTransition(message string) *AppError {
	return New(KindInvalidTransition, http.StatusConflict, message, nil)
}

// Conflict marks a concurrent-update race (compare-and-swap miss).
// Retryable at the request level.
func Conflict(message string) *AppError {
	return New(KindConflict, http.StatusConflict, message, nil)
}

// Storage wraps a persistence I/O failure. Retryable by the caller;
// never to be collapsed into "no results" or "invalid transition".
func Storage(err error) *AppError {
	return New(KindStorage, http.StatusInternalServerError, "Storage failure. Please try again.", err)
}

// External reports a collaborator failure (role propagation, email)
// that happened after a committed state change. It carries enough
// context to reconcile manually and never rolls the change back.
func External(operation string, err error) *AppError {
	return New(KindExternal, http.StatusBadGateway, fmt.Sprintf("External dependency failed during %s", operation), err)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, http.StatusForbidden, message, nil)
}
