package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCancelled     ErrorCode = "CANCELLED"

	// Configuration errors
	ErrConfigLoad           ErrorCode = "CONFIG_LOAD"
	ErrConfigParse          ErrorCode = "CONFIG_PARSE"
	ErrConfigValid          ErrorCode = "CONFIG_INVALID"
	ErrNotInitialized       ErrorCode = "NOT_INITIALIZED"
	ErrAppNotFound          ErrorCode = "APP_NOT_FOUND"
	ErrMachineNotRegistered ErrorCode = "MACHINE_NOT_REGISTERED"
	ErrNoVersions           ErrorCode = "NO_VERSIONS"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Content errors
	ErrMalformedContent ErrorCode = "MALFORMED_CONTENT"

	// External tool errors
	ErrEditor ErrorCode = "EDITOR"

	// Concurrency errors
	ErrLockTimeout ErrorCode = "LOCK_TIMEOUT"
	ErrLockAcquire ErrorCode = "LOCK_ACQUIRE"

	// Backing store errors
	ErrStoreClone   ErrorCode = "STORE_CLONE"
	ErrStorePull    ErrorCode = "STORE_PULL"
	ErrStorePush    ErrorCode = "STORE_PUSH"
	ErrStoreCommit  ErrorCode = "STORE_COMMIT"
	ErrStoreHistory ErrorCode = "STORE_HISTORY"
)

// hintKey is the Details key holding remediation text.
const hintKey = "hint"

// DriftersError represents a structured error with code and details
type DriftersError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DriftersError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DriftersError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DriftersError) Is(target error) bool {
	var targetErr *DriftersError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DriftersError with the given code and message
func New(code ErrorCode, message string) *DriftersError {
	return &DriftersError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DriftersError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DriftersError {
	return &DriftersError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DriftersError
func Wrap(err error, code ErrorCode, message string) *DriftersError {
	if err == nil {
		return nil
	}
	return &DriftersError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DriftersError {
	if err == nil {
		return nil
	}
	return &DriftersError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DriftersError) WithDetail(key string, value interface{}) *DriftersError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHint attaches remediation text shown to the user alongside the error.
func (e *DriftersError) WithHint(hint string) *DriftersError {
	return e.WithDetail(hintKey, hint)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var driftersErr *DriftersError
	if errors.As(err, &driftersErr) {
		return driftersErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DriftersError
func GetErrorCode(err error) ErrorCode {
	var driftersErr *DriftersError
	if errors.As(err, &driftersErr) {
		return driftersErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DriftersError
func GetErrorDetails(err error) map[string]interface{} {
	var driftersErr *DriftersError
	if errors.As(err, &driftersErr) {
		return driftersErr.Details
	}
	return nil
}

// Hint returns the first remediation hint found in the error chain.
func Hint(err error) string {
	for err != nil {
		var driftersErr *DriftersError
		if !errors.As(err, &driftersErr) {
			return ""
		}
		if hint, ok := driftersErr.Details[hintKey].(string); ok && hint != "" {
			return hint
		}
		err = driftersErr.Wrapped
	}
	return ""
}

// IsFatal reports whether err must abort a whole command instead of being
// logged and skipped for a single file. Malformed content and lock failures
// are precondition violations, everything else is a per-item anomaly.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrMalformedContent, ErrLockTimeout, ErrLockAcquire, ErrCancelled:
		return true
	}
	return false
}
