package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application failure so the HTTP layer can map it to a
// status code without string matching.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindConflict          Kind = "CONFLICT"
	KindInferenceFailed   Kind = "INFERENCE_FAILED"
	KindPersistenceFailed Kind = "PERSISTENCE_FAILED"
	KindValidationFailed  Kind = "VALIDATION_FAILED"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
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

func InferenceFailed(err error) *AppError {
	return Wrap(KindInferenceFailed, "inference gateway request failed", err)
}

func PersistenceFailed(err error) *AppError {
	return Wrap(KindPersistenceFailed, "failed to persist record", err)
}

func ValidationFailed(message string) *AppError {
	return New(KindValidationFailed, message)
}

// KindOf extracts the Kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// HTTPStatus maps an error kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindConflict:
		return fiber.StatusConflict
	case KindInferenceFailed:
		return fiber.StatusBadGateway
	case KindValidationFailed:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
