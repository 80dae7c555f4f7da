package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInternal       Kind = "INTERNAL_ERROR"
	KindBadRequest     Kind = "BAD_REQUEST"
	KindNotFound       Kind = "NOT_FOUND"
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindConflict       Kind = "CONFLICT"
	KindFetchFailure   Kind = "FETCH_FAILURE"
	KindConfiguration  Kind = "CONFIGURATION_ERROR"
	KindMalformedInput Kind = "MALFORMED_FILTER_INPUT"
)

// AppError carries a kind that decides both the HTTP status and how callers
// recover from it.
type AppError struct {
	Kind       Kind   `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Cause      error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, StatusCode: statusCode(kind)}
}

func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, StatusCode: statusCode(kind), Cause: err}
}

func Internal(err error, message string) *AppError {
	return Wrap(err, KindInternal, message)
}

func BadRequest(message string) *AppError {
	return New(KindBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message)
}

// FetchFailure marks a failed load on one pipeline. Callers keep their
// previous state and surface the error as a notice.
func FetchFailure(err error, pipeline string) *AppError {
	return Wrap(err, KindFetchFailure, "failed to load "+pipeline)
}

// Configuration marks a deployment defect, such as a selectable crop with no
// forecast series. It is fatal to the view that hits it.
func Configuration(message string) *AppError {
	return New(KindConfiguration, message)
}

// MalformedInput is logged by filter parsing and never returned to callers.
func MalformedInput(param, value string) *AppError {
	return New(KindMalformedInput, fmt.Sprintf("ignoring %s=%q", param, value))
}

// Is reports whether err is an AppError of the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func statusCode(kind Kind) int {
	switch kind {
	case KindBadRequest, KindMalformedInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindFetchFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
