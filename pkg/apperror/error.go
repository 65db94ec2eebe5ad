// Package apperror provides structured, coded errors for counters, increment
// strategies and the registry.
// All failures raised by this module are *AppError values and can be matched
// with errors.Is against the exported sentinels.
package apperror

import (
	"errors"
	"fmt"
)

// Error codes
const (
	// Construction errors
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeInvalidIncrementType = "INVALID_INCREMENT_TYPE"

	// Resolution errors
	CodeMissingKey      = "MISSING_KEY"
	CodeIndexOutOfRange = "INDEX_OUT_OF_RANGE"

	// Arithmetic errors
	CodeDivisionByZero   = "DIVISION_BY_ZERO"
	CodeBoundsRequired   = "BOUNDS_REQUIRED"
	CodeInvalidOperation = "INVALID_OPERATION"

	// Registry errors
	CodeNotFound  = "NOT_FOUND"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrInvalidConfiguration = &AppError{Code: CodeInvalidConfiguration}
	ErrInvalidIncrementType = &AppError{Code: CodeInvalidIncrementType}
	ErrMissingKey           = &AppError{Code: CodeMissingKey}
	ErrIndexOutOfRange      = &AppError{Code: CodeIndexOutOfRange}
	ErrDivisionByZero       = &AppError{Code: CodeDivisionByZero}
	ErrBoundsRequired       = &AppError{Code: CodeBoundsRequired}
	ErrInvalidOperation     = &AppError{Code: CodeInvalidOperation}
	ErrNotFound             = &AppError{Code: CodeNotFound}
	ErrDuplicate            = &AppError{Code: CodeDuplicate}
)

// AppError is the standard error type of the module.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (offending value, index, key...)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError with the same Code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewInvalidConfiguration reports malformed counter or strategy settings.
func NewInvalidConfiguration(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidConfiguration,
		Message: message,
	}
}

// NewInvalidIncrementType reports a payload value that is neither numeric nor
// a percentage string.
func NewInvalidIncrementType(value any) *AppError {
	return &AppError{
		Code:    CodeInvalidIncrementType,
		Message: fmt.Sprintf("increment value %#v is neither a number nor a percentage", value),
		Details: map[string]any{"value": value},
	}
}

// NewMissingKey reports a lookup with no matching key and no fallback.
func NewMissingKey(key any) *AppError {
	msg := "no key passed and no default value set"
	if key != nil {
		msg = fmt.Sprintf("invalid key %#v passed and no default value set", key)
	}
	return &AppError{
		Code:    CodeMissingKey,
		Message: msg,
		Details: map[string]any{"key": key},
	}
}

// NewIndexOutOfRange reports a sequence index outside [0, maxIndex].
func NewIndexOutOfRange(index any, maxIndex int) *AppError {
	return &AppError{
		Code:    CodeIndexOutOfRange,
		Message: fmt.Sprintf("index %v outside of 0..%d", index, maxIndex),
		Details: map[string]any{"index": index, "max_index": maxIndex},
	}
}

// NewDivisionByZero reports a div operation that resolved a zero divisor.
func NewDivisionByZero() *AppError {
	return &AppError{
		Code:    CodeDivisionByZero,
		Message: "division by zero",
	}
}

// NewBoundsRequired reports a percentage computation on a counter that lacks
// the bounds it needs.
func NewBoundsRequired(message string) *AppError {
	return &AppError{
		Code:    CodeBoundsRequired,
		Message: message,
	}
}

// NewInvalidOperation reports an unknown counter operation.
func NewInvalidOperation(op any) *AppError {
	return &AppError{
		Code:    CodeInvalidOperation,
		Message: fmt.Sprintf("invalid operation: %v", op),
		Details: map[string]any{"operation": op},
	}
}

// NewNotFound creates a not found error
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// NewDuplicate creates a duplicate entry error
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:    CodeDuplicate,
		Message: fmt.Sprintf("%s with this %s already exists", entity, field),
		Details: map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode checks whether the error chain carries an AppError with code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
