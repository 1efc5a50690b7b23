// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/photo-diary/backend/internal/auth"
	"github.com/photo-diary/backend/internal/selection"
	"github.com/photo-diary/backend/internal/storage"
	"github.com/photo-diary/backend/internal/upload"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

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

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: "Unauthorized",
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: message,
	}
}

// NewPayloadTooLargeError creates a 413 error
func NewPayloadTooLargeError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "PAYLOAD_TOO_LARGE",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
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

// NewMisconfiguredError creates a 500 error for a missing admin secret
func NewMisconfiguredError() *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "SERVER_MISCONFIGURED",
		Message: "Server misconfigured: admin secret not set",
	}
}

// FromError maps domain errors to API errors. Unknown errors become 500s.
func FromError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, auth.ErrServerMisconfigured):
		return NewMisconfiguredError()
	case errors.Is(err, auth.ErrUnauthorized):
		return NewUnauthorizedError()
	case errors.Is(err, upload.ErrUploadMissing):
		return NewBadRequestError("No file uploaded", nil)
	case errors.Is(err, upload.ErrUploadRejectedType):
		return NewBadRequestError("Only image files are allowed", err)
	case errors.Is(err, upload.ErrUploadTooLarge):
		return NewPayloadTooLargeError("File too large", err)
	case errors.Is(err, selection.ErrInvalidFilter):
		return NewBadRequestError("Invalid filter", err)
	case errors.Is(err, selection.ErrStoreEmpty):
		return NewNotFoundError("No photos")
	case errors.Is(err, selection.ErrNoMatch):
		return NewNotFoundError("No photos found for this filter")
	case errors.Is(err, storage.ErrStoreUnwritable):
		return NewInternalError("Failed to save photo record", err)
	default:
		return NewInternalError("An unexpected error occurred", err)
	}
}

// ErrorHandler renders every handler error as {"error": message, "code": CODE}.
// Usage: e.HTTPErrorHandler = api.ErrorHandler(logger)
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
			if httpErr.Code == http.StatusRequestEntityTooLarge {
				apiErr.Code = "PAYLOAD_TOO_LARGE"
				apiErr.Message = "File too large"
			}
		default:
			apiErr = FromError(err)
		}

		if apiErr.Status >= http.StatusInternalServerError && logger != nil {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", apiErr.Status),
				slog.String("error", err.Error()))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(apiErr.Status)
		} else {
			writeErr = c.JSON(apiErr.Status, apiErr)
		}
		if writeErr != nil && logger != nil {
			logger.WarnContext(c.Request().Context(), "failed to write error response", slog.String("error", writeErr.Error()))
		}
	}
}
