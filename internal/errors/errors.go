// Package errors provides custom error types for the statistics explorer.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyMessage        = errors.New("message content is empty")
	ErrBusy                = errors.New("a request is already being processed")
	ErrInvalidRole         = errors.New("invalid message role")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidSeries       = errors.New("invalid series data")
	ErrSynthesisFailed     = errors.New("synthesis failed")
	ErrClosed              = errors.New("store is closed")
	ErrSuperseded          = errors.New("reply dropped: history was reset")
)

// SynthesisError represents a failure while building the reply for a query
type SynthesisError struct {
	Query string
	Cause error
}

func (e *SynthesisError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("synthesis failed for %q", e.Query)
	}
	return fmt.Sprintf("synthesis failed for %q: %v", e.Query, e.Cause)
}

// Unwrap returns the underlying cause
func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *SynthesisError) Is(target error) bool {
	if target == ErrSynthesisFailed {
		return true
	}
	_, ok := target.(*SynthesisError)
	return ok
}

// NewSynthesisError creates a new SynthesisError
func NewSynthesisError(query string, cause error) *SynthesisError {
	return &SynthesisError{Query: query, Cause: cause}
}

// ValidationError represents a descriptor that failed shape validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidSeries so callers can test for bad chart data
// without knowing which field failed.
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidSeries {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// LanguageError reports a language code outside the supported set
type LanguageError struct {
	Code string
}

func (e *LanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q (want en or da)", e.Code)
}

// Is allows comparison with ErrUnsupportedLanguage
func (e *LanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// NewLanguageError creates a new LanguageError
func NewLanguageError(code string) *LanguageError {
	return &LanguageError{Code: code}
}

// IsSynthesisError reports whether err is or wraps a SynthesisError
func IsSynthesisError(err error) bool {
	var se *SynthesisError
	return errors.As(err, &se)
}

// IsBusy reports whether err signals an in-flight request
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
