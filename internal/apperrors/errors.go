package apperrors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTooLarge   ErrorType = "too_large"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewValidationError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, StatusCode: http.StatusBadRequest, Cause: cause}
}

func NewTooLargeError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeTooLarge, Message: message, StatusCode: http.StatusRequestEntityTooLarge, Cause: cause}
}

func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeTimeout, Message: message, StatusCode: http.StatusGatewayTimeout, Cause: cause}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, StatusCode: http.StatusInternalServerError, Cause: cause}
}
