package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// ClientError is the common interface for all client error types
type ClientError interface {
	error
	Type() ErrorType
	// Retryable reports whether the failure class is worth another attempt.
	Retryable() bool
}

// ErrorType represents the category of client error
type ErrorType string

const (
	// NetworkError indicates connection or transport failures
	NetworkError ErrorType = "network"
	// TimeoutError indicates an attempt or request deadline was exceeded
	TimeoutError ErrorType = "timeout"
	// HTTPError indicates a non-2xx HTTP status
	HTTPError ErrorType = "http"
	// ValidationError indicates an invalid request
	ValidationError ErrorType = "validation"
	// InterceptorError indicates an interceptor failure
	InterceptorError ErrorType = "interceptor"
	// CancelledError indicates the caller's context was cancelled
	CancelledError ErrorType = "cancelled"
)

// networkError represents connection and transport failures
type networkError struct {
	message string
	wrapped error
}

func (e *networkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("network error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("network error: %s", e.message)
}

func (e *networkError) Type() ErrorType { return NetworkError }
func (e *networkError) Retryable() bool { return true }
func (e *networkError) Unwrap() error   { return e.wrapped }

// NewNetworkError creates a network error, optionally wrapping an underlying error
func NewNetworkError(message string, wrapped error) ClientError {
	return &networkError{message: message, wrapped: wrapped}
}

// timeoutError represents deadline and timeout failures
type timeoutError struct {
	message string
	timeout time.Duration
	wrapped error
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType { return TimeoutError }
func (e *timeoutError) Retryable() bool { return true }
func (e *timeoutError) Unwrap() error   { return e.wrapped }

// NewTimeoutError creates a timeout error carrying the configured timeout
func NewTimeoutError(message string, timeout time.Duration) ClientError {
	return &timeoutError{message: message, timeout: timeout}
}

// NewTimeoutErrorWrapping is NewTimeoutError with an underlying cause attached
func NewTimeoutErrorWrapping(message string, timeout time.Duration, wrapped error) ClientError {
	return &timeoutError{message: message, timeout: timeout, wrapped: wrapped}
}

// httpError represents a non-2xx HTTP response
type httpError struct {
	message    string
	statusCode int
	body       []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: %s (status: %d)", e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType { return HTTPError }
func (e *httpError) Retryable() bool { return false }

// StatusCode returns the HTTP status code of the failed response
func (e *httpError) StatusCode() int { return e.statusCode }

// Body returns the response body of the failed response
func (e *httpError) Body() []byte { return e.body }

// NewHTTPError creates an HTTP status error carrying the response body
func NewHTTPError(message string, statusCode int, body []byte) ClientError {
	return &httpError{message: message, statusCode: statusCode, body: body}
}

// validationError represents an invalid request
type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType { return ValidationError }
func (e *validationError) Retryable() bool { return false }

// NewValidationError creates a validation error, optionally naming the offending field
func NewValidationError(message, field string) ClientError {
	return &validationError{message: message, field: field}
}

// interceptorError represents a request or response interceptor failure
type interceptorError struct {
	message string
	stage   string
	wrapped error
}

func (e *interceptorError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("interceptor error: %s (stage: %s): %v", e.message, e.stage, e.wrapped)
	}
	return fmt.Sprintf("interceptor error: %s (stage: %s)", e.message, e.stage)
}

func (e *interceptorError) Type() ErrorType { return InterceptorError }
func (e *interceptorError) Retryable() bool { return false }
func (e *interceptorError) Unwrap() error   { return e.wrapped }

// NewInterceptorError creates an interceptor error for the given stage ("request" or "response")
func NewInterceptorError(message, stage string, wrapped error) ClientError {
	return &interceptorError{message: message, stage: stage, wrapped: wrapped}
}

// cancelledError represents a request abandoned because the caller's context
// was cancelled
type cancelledError struct {
	message string
	wrapped error
}

func (e *cancelledError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("request cancelled: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("request cancelled: %s", e.message)
}

func (e *cancelledError) Type() ErrorType { return CancelledError }
func (e *cancelledError) Retryable() bool { return false }
func (e *cancelledError) Unwrap() error   { return e.wrapped }

// NewCancelledError creates a cancellation error wrapping the context error
func NewCancelledError(message string, wrapped error) ClientError {
	return &cancelledError{message: message, wrapped: wrapped}
}

// IsErrorType reports whether err is a client error of the given type
func IsErrorType(err error, errorType ErrorType) bool {
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsHTTPStatusError reports whether err is an HTTP error with the given status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.statusCode == statusCode
	}
	return false
}

// IsSuccessStatus reports whether the status code is in the 2xx range
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
