package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Use errors.Is(err, utils.ErrNotFound) to test the kind of an *AppError.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrExternal   = errors.New("external service failure")
	ErrConflict   = errors.New("conflict")
)

// AppError carries a human readable message together with its kind.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) error {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return &AppError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// External wraps a failure coming from a payment provider or another remote collaborator.
func External(err error, format string, args ...interface{}) error {
	return &AppError{Kind: ErrExternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// StatusFromError maps an error kind to the HTTP status used in responses.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrExternal):
		return http.StatusBadGateway
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MessageFromError returns the message shown to API clients. Unknown errors are not leaked.
func MessageFromError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
