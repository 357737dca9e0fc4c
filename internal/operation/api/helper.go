package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tombee/conductor-miniflux/internal/log"
	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/transport"
)

// BaseProvider provides common functionality for API integrations.
type BaseProvider struct {
	name       string
	transport  transport.Transport
	baseURL    string
	token      string
	authHeader string
	metrics    *operation.MetricsCollector
	logger     *slog.Logger
}

// NewBaseProvider creates a new base provider. authHeader names the header
// that carries the token on every request. One trailing slash is removed
// from the configured base URL.
func NewBaseProvider(name, authHeader string, config *ProviderConfig) *BaseProvider {
	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &BaseProvider{
		name:       name,
		transport:  config.Transport,
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		token:      config.Token,
		authHeader: authHeader,
		metrics:    config.Metrics,
		logger:     logger,
	}
}

// Name returns the integration identifier.
func (c *BaseProvider) Name() string {
	return c.name
}

// BaseURL returns the base URL with any trailing slash removed.
func (c *BaseProvider) BaseURL() string {
	return c.baseURL
}

// Logger returns the provider's logger.
func (c *BaseProvider) Logger() *slog.Logger {
	return c.logger
}

// Metrics returns the provider's metrics collector, which may be nil.
func (c *BaseProvider) Metrics() *operation.MetricsCollector {
	return c.metrics
}

// BuildURL joins the base URL and a path that already has its parameters
// interpolated.
func (c *BaseProvider) BuildURL(path string) string {
	return c.baseURL + path
}

// ExecuteRequest sends an HTTP request with the auth header attached and
// records metrics for the round trip under opName.
func (c *BaseProvider) ExecuteRequest(ctx context.Context, opName, method, url string, headers map[string]string, body []byte) (*transport.Response, error) {
	if headers == nil {
		headers = make(map[string]string)
	}
	headers[c.authHeader] = c.token

	req := &transport.Request{
		Method:  method,
		URL:     url,
		Headers: headers,
		Body:    body,
	}

	start := time.Now()
	resp, err := c.transport.Execute(ctx, req)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("method", method),
			log.Error(err),
		)
		return nil, err
	}

	elapsed := time.Since(start)
	c.metrics.RecordRequest(opName, resp.StatusCode, elapsed)
	c.logger.Debug("request completed",
		slog.String("method", method),
		slog.Int(log.StatusCodeKey, resp.StatusCode),
		slog.Int64(log.DurationKey, elapsed.Milliseconds()),
	)
	log.Trace(ctx, c.logger, "response body", slog.String("body", string(resp.Body)))

	return resp, nil
}

// ParseJSONResponse parses a JSON response into a target.
// An empty body leaves target untouched.
func (c *BaseProvider) ParseJSONResponse(resp *transport.Response, target interface{}) error {
	if len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}
	return nil
}

// ToResult converts a transport response to an operation result.
func (c *BaseProvider) ToResult(resp *transport.Response, response interface{}) *operation.Result {
	return &operation.Result{
		Response:    response,
		RawResponse: resp.Body,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Headers,
		Metadata:    resp.Metadata,
	}
}
