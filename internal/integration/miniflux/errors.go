package miniflux

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/transport"
)

// APIError is returned when Miniflux answers with a non-2xx status.
// Action names what was attempted ("delete feed"); Body holds the response
// text verbatim.
type APIError struct {
	Operation  Operation
	Action     string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed (HTTP %d): %s", e.Action, e.StatusCode, e.Body)
}

// Type classifies the failure by status code.
func (e *APIError) Type() operation.ErrorType {
	return operation.ClassifyHTTPError(e.StatusCode)
}

// IsUserVisible implements pkg/errors.UserVisibleError.
func (e *APIError) IsUserVisible() bool {
	return true
}

// UserMessage implements pkg/errors.UserVisibleError.
func (e *APIError) UserMessage() string {
	return e.Error()
}

// Suggestion implements pkg/errors.UserVisibleError.
func (e *APIError) Suggestion() string {
	return operation.SuggestionFor(e.Type())
}

// ParseError returns an *APIError for non-2xx responses and nil otherwise.
func ParseError(op Operation, resp *transport.Response) error {
	if resp.OK() {
		return nil
	}
	return &APIError{
		Operation:  op,
		Action:     op.action(),
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

// IsNotFound reports whether err is a Miniflux 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsAuthError reports whether err is a Miniflux 401 or 403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type() == operation.ErrorTypeAuth
}

// errorType classifies any error returned by a request for metrics.
func errorType(err error) operation.ErrorType {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type()
	}
	var opErr *operation.Error
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return operation.ErrorTypeConnection
}
