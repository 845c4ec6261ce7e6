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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Glob errors
	ErrGlobInvalid     ErrorCode = "GLOB_INVALID"
	ErrGlobNotAbsolute ErrorCode = "GLOB_NOT_ABSOLUTE"

	// Path resolution errors
	ErrNoDocumentOrigin ErrorCode = "NO_DOCUMENT_ORIGIN"
	ErrRootUnreadable   ErrorCode = "ROOT_UNREADABLE"
	ErrScratchCreate    ErrorCode = "SCRATCH_CREATE"

	// Execution errors
	ErrSourceMissing     ErrorCode = "SOURCE_MISSING"
	ErrShellExit         ErrorCode = "SHELL_EXIT"
	ErrTimeout           ErrorCode = "TIMEOUT"
	ErrTargetNotProduced ErrorCode = "TARGET_NOT_PRODUCED"
	ErrTargetWrite       ErrorCode = "TARGET_WRITE"

	// Pipeline errors
	ErrNoMatchingRule ErrorCode = "NO_MATCHING_RULE"
	ErrRegistryFrozen ErrorCode = "REGISTRY_FROZEN"
	ErrOpInvalid      ErrorCode = "OP_INVALID"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
)

// PylonError represents a structured error with code and details
type PylonError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PylonError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PylonError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PylonError) Is(target error) bool {
	var targetErr *PylonError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PylonError with the given code and message
func New(code ErrorCode, message string) *PylonError {
	return &PylonError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PylonError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PylonError {
	return &PylonError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PylonError
func Wrap(err error, code ErrorCode, message string) *PylonError {
	if err == nil {
		return nil
	}
	return &PylonError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PylonError {
	if err == nil {
		return nil
	}
	return &PylonError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PylonError) WithDetail(key string, value interface{}) *PylonError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *PylonError) WithDetails(details map[string]interface{}) *PylonError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error carries the given code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var pylonErr *PylonError
		if !errors.As(err, &pylonErr) {
			return false
		}
		if pylonErr.Code == code {
			return true
		}
		err = pylonErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PylonError
func GetErrorCode(err error) ErrorCode {
	var pylonErr *PylonError
	if errors.As(err, &pylonErr) {
		return pylonErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PylonError
func GetErrorDetails(err error) map[string]interface{} {
	var pylonErr *PylonError
	if errors.As(err, &pylonErr) {
		return pylonErr.Details
	}
	return nil
}
