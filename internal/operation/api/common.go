// Package api provides common types and utilities for API integrations.
package api

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/transport"
)

// ProviderConfig holds configuration for API integrations.
type ProviderConfig struct {
	// Transport is the HTTP transport for making requests
	Transport transport.Transport

	// BaseURL is the service base URL (e.g. "http://localhost:8080")
	BaseURL string

	// Token is the authentication token (API key)
	Token string

	// Metrics receives request metrics (optional)
	Metrics *operation.MetricsCollector

	// Logger receives request logs (optional)
	Logger *slog.Logger

	// TracerProvider creates request spans (optional, defaults to the
	// global provider)
	TracerProvider trace.TracerProvider
}

// OperationInfo provides metadata about an integration operation.
type OperationInfo struct {
	// Name is the operation identifier (e.g., "createFeed")
	Name string

	// Description is a human-readable description
	Description string

	// Category groups related operations (e.g., "feeds", "entries")
	Category string

	// Method is the HTTP method the operation uses
	Method string

	// Path is the API path template (e.g., "/v1/feeds/{feedId}")
	Path string

	// Tags classify operations (e.g., "read", "write", "destructive")
	Tags []string
}

// OperationSchema describes an operation's inputs.
type OperationSchema struct {
	// Description is a human-readable description
	Description string

	// Parameters describes the operation inputs
	Parameters []ParameterInfo
}

// ParameterInfo describes an operation parameter.
type ParameterInfo struct {
	// Name is the parameter identifier
	Name string

	// Type is the parameter type (string, integer)
	Type string

	// Description is a human-readable description
	Description string

	// Required indicates if the parameter is required
	Required bool

	// Default is the default value (nil if no default)
	Default interface{}

	// Enum lists the accepted values, if restricted
	Enum []string
}

// TypedProvider extends the base Connector interface with operation metadata.
type TypedProvider interface {
	operation.Connector

	// Operations returns the list of available operations with metadata.
	Operations() []OperationInfo

	// OperationSchema returns the operation description and parameter information.
	// Returns nil if the operation doesn't exist.
	OperationSchema(operation string) *OperationSchema
}
