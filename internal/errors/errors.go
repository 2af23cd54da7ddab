// Package errors provides a lightweight structured error type (AssetBuildError)
// for category-based classification of asset build failures and the CLI exit codes derived from it.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an asset build error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External toolchain errors
	CategoryToolchain ErrorCategory = "toolchain" // required executable missing
	CategoryProcess   ErrorCategory = "process"   // external step exited nonzero

	// Build and filesystem errors
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime errors
	CategoryCanceled ErrorCategory = "canceled"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// AssetBuildError is a structured error with category, severity and context
type AssetBuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for AssetBuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *AssetBuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *AssetBuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *AssetBuildError) WithContext(key string, value any) *AssetBuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new AssetBuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *AssetBuildError {
	return &AssetBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new AssetBuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *AssetBuildError {
	return &AssetBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As finds the first AssetBuildError in err's chain.
func As(err error) (*AssetBuildError, bool) {
	var abe *AssetBuildError
	if stderrors.As(err, &abe) {
		return abe, true
	}
	return nil, false
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if abe, ok := As(err); ok {
		return abe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an AssetBuildError
func GetCategory(err error) ErrorCategory {
	if abe, ok := As(err); ok {
		return abe.Category
	}
	return CategoryInternal
}
