package errors

import (
	"errors"
	"fmt"
)

// InterlogError is the structured error type for interlog.
// It carries enough context for logging and CLI presentation.
type InterlogError struct {
	// Code is the unique error code (e.g., "ERR_401_NOT_INTERCEPTABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Generation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *InterlogError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *InterlogError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, so errors.Is works against a sentinel
// built with New.
func (e *InterlogError) Is(target error) bool {
	if t, ok := target.(*InterlogError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *InterlogError) WithDetail(key, value string) *InterlogError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *InterlogError) WithSuggestion(suggestion string) *InterlogError {
	e.Suggestion = suggestion
	return e
}

// New creates a new InterlogError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *InterlogError {
	return &InterlogError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an InterlogError from an existing error.
func Wrap(code string, err error) *InterlogError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *InterlogError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *InterlogError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first InterlogError in err's chain.
func As(err error) (*InterlogError, bool) {
	var ie *InterlogError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// IsRetryable checks if any error in the chain is retryable.
func IsRetryable(err error) bool {
	ie, ok := As(err)
	return ok && ie.Retryable
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	ie, ok := As(err)
	return ok && ie.Severity == SeverityFatal
}

// GetCode extracts the error code from the chain.
// Returns empty string if there is no InterlogError.
func GetCode(err error) string {
	if ie, ok := As(err); ok {
		return ie.Code
	}
	return ""
}
