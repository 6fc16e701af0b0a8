// Package errors provides standardized error types for the API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// Code represents an API error code.
type Code string

const (
	CodeNotFound    Code = "NOT_FOUND"
	CodeInvalidID   Code = "INVALID_ID"
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeInternal    Code = "INTERNAL_ERROR"
	CodeRateLimited Code = "RATE_LIMITED"
)

// APIError represents a structured API error.
type APIError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound    = &APIError{Code: CodeNotFound, Message: "Resource not found", HTTPStatus: http.StatusNotFound}
	ErrInvalidID   = &APIError{Code: CodeInvalidID, Message: "Invalid ID format", HTTPStatus: http.StatusBadRequest}
	ErrInternal    = &APIError{Code: CodeInternal, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError}
	ErrRateLimited = &APIError{Code: CodeRateLimited, Message: "Rate limit exceeded", HTTPStatus: http.StatusTooManyRequests}
)

// NotFound creates a not found error with a custom message.
func NotFound(resource string) *APIError {
	return &APIError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidID creates an invalid ID error with context.
func InvalidID(paramName string) *APIError {
	return &APIError{
		Code:       CodeInvalidID,
		Message:    fmt.Sprintf("Invalid %s: must be a positive integer", paramName),
		HTTPStatus: http.StatusBadRequest,
	}
}

// Validation creates an unprocessable-entity error for bad fields or parameters.
func Validation(message string) *APIError {
	return &APIError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// FromStore maps a catalog store error to its API representation.
// resource names the entity for not-found messages, e.g. "Person".
func FromStore(err error, resource string) *APIError {
	var apiErr *APIError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &apiErr):
		return apiErr
	case stderrors.Is(err, database.ErrNotFound):
		return NotFound(resource)
	case stderrors.Is(err, database.ErrValidation):
		return Validation(err.Error())
	default:
		return ErrInternal
	}
}
