package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error categories used across the application. Every error is
// session- or operation-scoped; none is fatal to the process.
var (
	// ErrInputMissing indicates one or both documents were empty at comparison start
	ErrInputMissing = errors.New("input missing")
	// ErrExtractionFailure indicates the text-extraction collaborator failed or the format is unsupported
	ErrExtractionFailure = errors.New("extraction failure")
	// ErrSummarizationFailure indicates the AI collaborator failed or credentials are missing
	ErrSummarizationFailure = errors.New("summarization failure")
	// ErrPersistenceFailure indicates stored history could not be read or written
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// HTTPError represents HTTP-related errors
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("HTTP %d error for URL '%s': %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d error: %s", e.StatusCode, e.Message)
}

// NewHTTPErrorWithURL creates a new HTTP error with URL context
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}
