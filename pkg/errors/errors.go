package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// Dataset errors
	ErrEmptyDataset     = errors.New("dataset has no records")
	ErrColumnNotFound   = errors.New("column not found in schema")
	ErrSchemaMismatch   = errors.New("record does not match dataset schema")
	ErrInvalidDelimiter = errors.New("CSV delimiter must be a single character")

	// Configuration errors
	ErrNoQuasiIdentifiers   = errors.New("no quasi-identifier columns declared")
	ErrNoSensitiveAttribute = errors.New("no sensitive attribute declared")
	ErrSensitiveAllMissing  = errors.New("sensitive attribute has no values")
	ErrInvalidThreshold     = errors.New("invalid threshold: k and l must be at least 1")
	ErrNoHierarchy          = errors.New("no generalization hierarchy for field")

	// Privacy errors
	ErrThresholdUnreachable = errors.New("threshold unreachable even under full suppression")
	ErrPassCapExceeded      = errors.New("anonymization pass cap exceeded")

	// Substitution errors
	ErrUnknownMethod = errors.New("unknown substitution method")
	ErrInvalidJitter = errors.New("invalid jitter: must be between 0 and 1")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeDataset       ErrorType = "dataset"
	ErrorTypePrivacy       ErrorType = "privacy"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		Cause:      err,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *AppError {
	return NewAppError(ErrorTypeValidation, code, message)
}

// NewConfigurationError creates a configuration error. Role declarations
// that cannot be satisfied by the input schema surface through here
// before any processing starts.
func NewConfigurationError(code, message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, code, message)
}

// NewDatasetError creates a dataset error
func NewDatasetError(code, message string) *AppError {
	return NewAppError(ErrorTypeDataset, code, message)
}

// NewPrivacyError creates a privacy error
func NewPrivacyError(code, message string) *AppError {
	return NewAppError(ErrorTypePrivacy, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       CodeInternalError,
		Message:    message,
		HTTPStatus: 500,
	}
}

// getDefaultHTTPStatus returns the default HTTP status for an error type
func getDefaultHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeValidation, ErrorTypeDataset:
		return 400
	case ErrorTypeConfiguration:
		return 422
	case ErrorTypePrivacy:
		return 403
	case ErrorTypeInternal:
		return 500
	default:
		return 500
	}
}

// Error codes for different error scenarios
const (
	// Validation error codes
	CodeInvalidInput  = "INVALID_INPUT"
	CodeMissingField  = "MISSING_FIELD"
	CodeInvalidFormat = "INVALID_FORMAT"
	CodeOutOfRange    = "OUT_OF_RANGE"

	// Configuration error codes
	CodeMissingColumn       = "MISSING_COLUMN"
	CodeInvalidThreshold    = "INVALID_THRESHOLD"
	CodeInvalidRoles        = "INVALID_ROLES"
	CodeEmptySensitive      = "EMPTY_SENSITIVE_ATTRIBUTE"
	CodeMissingHierarchy    = "MISSING_HIERARCHY"
	CodeUnknownMethod       = "UNKNOWN_METHOD"
	CodeInvalidPerturbation = "INVALID_PERTURBATION"

	// Dataset error codes
	CodeEmptyDataset   = "EMPTY_DATASET"
	CodeSchemaMismatch = "SCHEMA_MISMATCH"
	CodeReadFailed     = "READ_FAILED"
	CodeWriteFailed    = "WRITE_FAILED"

	// Privacy error codes
	CodePassCapExceeded    = "PASS_CAP_EXCEEDED"
	CodePartialSuppression = "PARTIAL_SUPPRESSION"

	// Internal error codes
	CodeInternalError = "INTERNAL_ERROR"
)
