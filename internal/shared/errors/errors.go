// Package errors provides application-level error types and utilities.
// Every expected business condition of a provisioning action is reported as an AppError
// carrying a type, a message and the HTTP status the outer layer should answer with.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation_error"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeDuplicateEntry    ErrorType = "duplicate_entry"
	ErrorTypeResourceExhausted ErrorType = "resource_exhausted"
	ErrorTypeSlotsExhausted    ErrorType = "slots_exhausted"
	ErrorTypeStoreUnavailable  ErrorType = "store_unavailable"
	ErrorTypePartialRename     ErrorType = "partial_rename_failure"
	ErrorTypeInternal          ErrorType = "internal_error"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause so errors.Is keeps working on domain sentinels.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewDuplicateEntryError reports that every entity of a multi-entity create already existed.
func NewDuplicateEntryError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeDuplicateEntry, http.StatusConflict, message, details)
}

// NewResourceExhaustedError reports a fully consumed allocation range.
func NewResourceExhaustedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeResourceExhausted, http.StatusUnprocessableEntity, message, details)
}

// NewSlotsExhaustedError reports a port whose single-tagged slots are all taken.
func NewSlotsExhaustedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeSlotsExhausted, http.StatusUnprocessableEntity, message, details)
}

// NewStoreUnavailableError creates a persistence failure error
func NewStoreUnavailableError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeStoreUnavailable, http.StatusInternalServerError, message, details)
}

// NewPartialRenameError reports a cascade that stopped partway.
func NewPartialRenameError(message string, details ...string) *AppError {
	return newAppError(ErrorTypePartialRename, http.StatusInternalServerError, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasType reports whether err is an AppError of the given type.
func HasType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return HasType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return HasType(err, ErrorTypeValidation)
}

// IsDuplicateEntryError checks if the error is a duplicate entry error
func IsDuplicateEntryError(err error) bool {
	return HasType(err, ErrorTypeDuplicateEntry)
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// SQLite unique violation
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL unique violation
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "violates unique constraint") {
		return true
	}
	return false
}
