// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freight-audit/backend/internal/transform"
	"github.com/freight-audit/backend/internal/xlsx"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewMalformedInputError creates a 400 error for an unreadable workbook
func NewMalformedInputError(stage string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "MALFORMED_INPUT",
		Message: fmt.Sprintf("%s: uploaded file is not a readable xlsx workbook", stage),
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewSheetNotFoundError creates a 400 error naming the missing sheet
func NewSheetNotFoundError(stage, sheet string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "SHEET_NOT_FOUND",
		Message: fmt.Sprintf("%s: sheet %q not found in workbook", stage, sheet),
	}
}

// NewUnknownColumnError creates a 400 error naming the missing column
func NewUnknownColumnError(stage, column string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "UNKNOWN_COLUMN",
		Message: fmt.Sprintf("%s: column %q does not exist", stage, column),
	}
}

// NewPayloadTooLargeError creates a 413 error
func NewPayloadTooLargeError(message string) *APIError {
	return &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "PAYLOAD_TOO_LARGE",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromDomainError maps loader, transform and writer failures onto the
// API error taxonomy. The stage tells the caller which phase of the
// pipeline rejected the request.
func FromDomainError(stage string, err error) *APIError {
	var malformed *xlsx.MalformedInputError
	if errors.As(err, &malformed) {
		return NewMalformedInputError(stage, malformed.Cause)
	}

	var sheetErr *xlsx.SheetNotFoundError
	if errors.As(err, &sheetErr) {
		return NewSheetNotFoundError(stage, sheetErr.Sheet)
	}

	var stepErr *transform.StepError
	if errors.As(err, &stepErr) {
		stage = fmt.Sprintf("%s step %d (%s)", stage, stepErr.Step, stepErr.Op)
	}

	var colErr *transform.UnknownColumnError
	if errors.As(err, &colErr) {
		return NewUnknownColumnError(stage, colErr.Column)
	}

	return NewInternalError(fmt.Sprintf("%s failed", stage), err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		if e.Code == http.StatusRequestEntityTooLarge {
			apiErr = NewPayloadTooLargeError("request body exceeds the configured limit")
		} else {
			apiErr = &APIError{
				Status:  e.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", e.Message),
			}
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred",
			Details: err.Error(),
		}
	}

	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}
