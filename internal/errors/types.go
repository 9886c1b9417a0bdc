package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a specific error type for categorization and metrics
type ErrorCode string

const (
	// Inbound request errors
	ErrInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrNotFound         ErrorCode = "NOT_FOUND"

	// Outbound delivery errors
	ErrDeliveryFailed ErrorCode = "DELIVERY_FAILED"

	// System errors
	ErrConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "LOW"
	SeverityMedium   ErrorSeverity = "MEDIUM"
	SeverityHigh     ErrorSeverity = "HIGH"
	SeverityCritical ErrorSeverity = "CRITICAL"
)

// AppError represents a structured application error with rich context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Severity   ErrorSeverity          `json:"severity"`
	HTTPStatus int                    `json:"http_status"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for Go 1.13+ error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds contextual information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails sets a human-readable detail string
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewError creates a new AppError with the given code and message
func NewError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Severity:   getDefaultSeverity(code),
		HTTPStatus: getDefaultHTTPStatus(code),
		Timestamp:  time.Now(),
	}
}

// NewErrorWithCause creates a new AppError wrapping an existing error
func NewErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	appErr := NewError(code, message)
	appErr.Cause = cause
	return appErr
}

// NewSignatureError is returned when an inbound webhook fails authenticity checks
func NewSignatureError(source string) *AppError {
	return NewError(ErrInvalidSignature, "Invalid webhook signature or token").
		WithContext("source", source)
}

// NewPayloadError is returned when an inbound body cannot be decoded
func NewPayloadError(source string, cause error) *AppError {
	return NewErrorWithCause(ErrInvalidPayload, "Invalid JSON payload", cause).
		WithContext("source", source).
		WithDetails(cause.Error())
}

// NewDeliveryError wraps a failed outbound chat webhook call
func NewDeliveryError(statusCode int, cause error) *AppError {
	appErr := NewErrorWithCause(ErrDeliveryFailed, "Teams webhook delivery failed", cause)
	if statusCode > 0 {
		appErr.WithContext("status_code", statusCode)
	}
	return appErr
}

// NewConfigError is returned when static configuration is invalid
func NewConfigError(message string, cause error) *AppError {
	return NewErrorWithCause(ErrConfigurationError, message, cause)
}

func getDefaultHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrInvalidPayload:
		return http.StatusBadRequest
	case ErrInvalidSignature:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrDeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func getDefaultSeverity(code ErrorCode) ErrorSeverity {
	switch code {
	case ErrInvalidPayload, ErrNotFound:
		return SeverityLow
	case ErrInvalidSignature, ErrDeliveryFailed:
		return SeverityMedium
	case ErrConfigurationError:
		return SeverityCritical
	default:
		return SeverityHigh
	}
}
