package smartspace

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the category of a failed API call
type ErrorKind string

const (
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindRateLimited     ErrorKind = "rate_limited"
	KindValidationError ErrorKind = "validation_error"
	KindNetworkError    ErrorKind = "network_error"
	KindUnknownError    ErrorKind = "unknown_error"
)

var userMessages = map[ErrorKind]string{
	KindUnauthorized:    "Your session has expired. Please sign in again.",
	KindForbidden:       "You don't have permission to do that.",
	KindNotFound:        "The requested item could not be found.",
	KindConflict:        "This item was changed by someone else. Refresh and try again.",
	KindRateLimited:     "Too many requests. Please wait a moment and try again.",
	KindValidationError: "The request or response was not in the expected format.",
	KindNetworkError:    "Unable to reach SmartSpace. Check your connection and try again.",
	KindUnknownError:    "Something went wrong. Please try again.",
}

// Error represents an error from the SmartSpace API
type Error struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message"`
	Body       string    `json:"body,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("smartspace: %s (%s)", e.Message, e.Kind)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("smartspace: %s (status: %d, request_id: %s)", e.Message, e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("smartspace: %s (status: %d)", e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns text suitable for showing to an end user
func (e *Error) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return userMessages[KindUnknownError]
}

// IsRetryable returns true if the error might be resolved by retrying
func (e *Error) IsRetryable() bool {
	return e.Kind == KindNetworkError || e.Kind == KindRateLimited || e.StatusCode >= 500
}

// IsAuthError returns true if the error is related to authentication
func (e *Error) IsAuthError() bool {
	return e.Kind == KindUnauthorized || e.Kind == KindForbidden
}

// KindForStatus maps an HTTP status code to an error kind
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidationError
	default:
		return KindUnknownError
	}
}

func newStatusError(status int, message, body, requestID string) *Error {
	return &Error{
		Kind:       KindForStatus(status),
		StatusCode: status,
		Message:    message,
		Body:       body,
		RequestID:  requestID,
	}
}

func newNetworkError(err error) *Error {
	return &Error{
		Kind:    KindNetworkError,
		Message: err.Error(),
		Err:     err,
	}
}

func newValidationError(message string, err error) *Error {
	return &Error{
		Kind:    KindValidationError,
		Message: message,
		Err:     err,
	}
}

// AsError extracts a SmartSpace API error from an error chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknownError if err is not an API error
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindUnknownError
}

// UserMessage returns the user-facing message for any error
func UserMessage(err error) string {
	if e, ok := AsError(err); ok {
		return e.UserMessage()
	}
	return userMessages[KindUnknownError]
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	if e, ok := AsError(err); ok {
		return e.IsRetryable()
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	if e, ok := AsError(err); ok {
		return e.IsAuthError()
	}
	return false
}

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRateLimited checks if an error is due to rate limiting
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}
