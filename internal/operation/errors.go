package operation

import (
	"fmt"
	"net/http"

	minifluxerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

// ErrorType classifies operation errors for appropriate handling.
type ErrorType string

const (
	// ErrorTypeAuth indicates authentication or authorization failure (401, 403)
	ErrorTypeAuth ErrorType = "auth_error"

	// ErrorTypeNotFound indicates a missing resource (404) or an unknown operation
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeValidation indicates invalid request data (400, 422) or parameters
	// rejected before any request was sent
	ErrorTypeValidation ErrorType = "validation_error"

	// ErrorTypeConflict indicates the resource already exists (409)
	ErrorTypeConflict ErrorType = "conflict"

	// ErrorTypeRateLimit indicates rate limit exceeded (429)
	ErrorTypeRateLimit ErrorType = "rate_limited"

	// ErrorTypeServer indicates server-side error (5xx)
	ErrorTypeServer ErrorType = "server_error"

	// ErrorTypeConnection indicates network/DNS error
	ErrorTypeConnection ErrorType = "connection_error"
)

// Error represents an operation execution error with classification.
type Error struct {
	// Type classifies the error
	Type ErrorType

	// Message is the human-readable error description
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// SuggestText provides guidance on how to resolve the error.
	SuggestText string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsUserVisible implements pkg/errors.UserVisibleError.
func (e *Error) IsUserVisible() bool {
	return true
}

// UserMessage implements pkg/errors.UserVisibleError.
func (e *Error) UserMessage() string {
	return e.Message
}

// Suggestion implements pkg/errors.UserVisibleError.
func (e *Error) Suggestion() string {
	return e.SuggestText
}

// ClassifyHTTPError classifies an HTTP status code into an error type.
func ClassifyHTTPError(statusCode int) ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusConflict:
		return ErrorTypeConflict
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServer
	default:
		return ErrorTypeValidation
	}
}

// SuggestionFor returns the default guidance for an error type.
func SuggestionFor(errType ErrorType) string {
	switch errType {
	case ErrorTypeAuth:
		return "Check the API token (Settings > API Keys in Miniflux)"
	case ErrorTypeNotFound:
		return "Verify the feed, entry or category id exists"
	case ErrorTypeConflict:
		return "The resource already exists"
	case ErrorTypeValidation:
		return "Check the operation parameters"
	case ErrorTypeRateLimit:
		return "Lower rate_limit.requests_per_second or wait before retrying"
	case ErrorTypeServer:
		return "Check the Miniflux server logs"
	case ErrorTypeConnection:
		return "Check the base URL and network connectivity"
	default:
		return ""
	}
}

// NewUnknownOperationError reports an operation name the connector does not
// implement.
func NewUnknownOperationError(name string) *Error {
	return &Error{
		Type:        ErrorTypeNotFound,
		Message:     fmt.Sprintf("unknown operation: %s", name),
		SuggestText: "Run 'miniflux operations' to list supported operations",
	}
}

// NewValidationError reports a parameter rejected before any request was sent.
func NewValidationError(field, message string) *Error {
	return &Error{
		Type:        ErrorTypeValidation,
		Message:     "invalid parameters",
		SuggestText: SuggestionFor(ErrorTypeValidation),
		Cause:       &minifluxerrors.ValidationError{Field: field, Message: message},
	}
}
