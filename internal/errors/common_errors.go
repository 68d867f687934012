package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeDataSource ErrorType = "DATA_SOURCE"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeForecast   ErrorType = "FORECAST"
	ErrTypeInsight    ErrorType = "INSIGHT"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Core analysis error conditions. Only ErrDataUnavailable may abort a
// report run; the rest are absorbed locally by the component that hit them.
var (
	// ErrDataUnavailable means no dataset could be obtained from any source.
	ErrDataUnavailable = errors.New("no data source available")

	// ErrInsufficientData means a computation lacks enough history or columns.
	ErrInsufficientData = errors.New("insufficient data for forecasting")

	// ErrComputationFailed means a model-fitting step failed unexpectedly.
	ErrComputationFailed = errors.New("computation failed")

	// ErrMalformedColumn means a column exists but failed type coercion.
	ErrMalformedColumn = errors.New("malformed column value")

	// ErrRecordNotFound means a requested stored record does not exist.
	ErrRecordNotFound = errors.New("record not found")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDataSourceError creates a data source error
func NewDataSourceError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataSource, message, cause)
}

// NewParsingError creates a parsing error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType checks if an error is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
