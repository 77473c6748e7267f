package pipeline

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error that aborted a run
type ErrorType string

const (
	// ErrorTypeConfig indicates missing or malformed configuration (credentials, sheet ID)
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeNavigation indicates the source page could not be loaded
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeTimeout indicates the source page did not load within the navigation timeout
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeExtraction indicates the page loaded but yielded no usable rows
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypePublication indicates the sink rejected or could not locate the target table
	ErrorTypePublication ErrorType = "publication"
	// ErrorTypeNetwork indicates a network-level error talking to the sink
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the sink rejected the request due to quota (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a sink server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a sink client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

var (
	// ErrNoCards is returned when the rendered page contains no rate cards at all.
	ErrNoCards = &Error{Type: ErrorTypeExtraction, Message: "no cards found on source page"}

	// ErrNoValidRows is returned when cards were found but every one was dropped.
	ErrNoValidRows = &Error{Type: ErrorTypeExtraction, Message: "cards found but none yielded a valid row"}
)

// Error represents a structured error from one stage of a run
type Error struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same type and message, so the sentinels
// ErrNoCards and ErrNoValidRows survive wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Message: message,
		Cause:   cause,
	}
}

// NewNavigationError creates a navigation error
func NewNavigationError(url string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeNavigation,
		Message: fmt.Sprintf("failed to load %s", url),
		Cause:   cause,
	}
}

// NewTimeoutError creates a navigation timeout error
func NewTimeoutError(url string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("timed out loading %s", url),
		Cause:   cause,
	}
}

// NewPublicationError creates a publication error
func NewPublicationError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypePublication,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: "network request failed",
		Cause:   cause,
	}
}

// ClassifyHTTPError classifies an HTTP status code from the sink into an appropriate Error
func ClassifyHTTPError(statusCode int) *Error {
	switch {
	case statusCode == 429:
		return &Error{Type: ErrorTypeRateLimit, StatusCode: statusCode, Message: "rate limit exceeded"}
	case statusCode >= 500:
		return &Error{Type: ErrorTypeServer, StatusCode: statusCode, Message: "server returned an error"}
	case statusCode >= 400:
		return &Error{Type: ErrorTypeClient, StatusCode: statusCode, Message: fmt.Sprintf("client error: HTTP %d", statusCode)}
	default:
		return &Error{
			Type:       ErrorTypeUnknown,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown if err is not an *Error
func TypeOf(err error) ErrorType {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}
