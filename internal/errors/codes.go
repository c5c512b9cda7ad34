// Package errors provides structured error handling for interlog.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration and rule errors
//   - 2XX: IO errors (source files, generated output, locks)
//   - 4XX: Generation errors (markers, receivers, constructors)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration or rule related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and lock errors.
	CategoryIO Category = "IO"
	// CategoryGeneration indicates a method that cannot be intercepted.
	CategoryGeneration Category = "GENERATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeRuleInvalid    = "ERR_103_RULE_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	ErrCodeWriteFailed  = "ERR_202_WRITE_FAILED"
	ErrCodeLockBusy     = "ERR_203_LOCK_BUSY"

	// Generation errors (400-499)
	ErrCodeNotInterceptable   = "ERR_401_NOT_INTERCEPTABLE"
	ErrCodeConstructorMissing = "ERR_402_CONSTRUCTOR_MISSING"
	ErrCodeMarkerInvalid      = "ERR_403_MARKER_INVALID"
	ErrCodeSourceInvalid      = "ERR_404_SOURCE_INVALID"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeMatchEngine = "ERR_502_MATCH_ENGINE"
	ErrCodeRender      = "ERR_503_RENDER_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "101" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryGeneration
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeMatchEngine:
		return SeverityFatal
	case ErrCodeRuleInvalid:
		// A malformed rule fragment is dropped and reading continues.
		return SeverityWarning
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	return code == ErrCodeLockBusy
}
