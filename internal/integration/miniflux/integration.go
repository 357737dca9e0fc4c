// Package miniflux implements the Miniflux REST API integration.
//
// Every operation maps to exactly one request under <baseURL>/v1 carrying the
// X-Auth-Token header. Non-2xx responses become *APIError values; transport
// failures are returned unchanged.
package miniflux

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
	"github.com/tombee/conductor-miniflux/internal/operation/transport"
)

// AuthHeader carries the API token on every request.
const AuthHeader = "X-Auth-Token"

// TracerName is the instrumentation scope of request spans.
const TracerName = "conductor.miniflux"

const (
	contentTypeJSON = "application/json"
	contentTypeXML  = "application/xml"
)

// MinifluxIntegration implements the Connector interface for the Miniflux API.
type MinifluxIntegration struct {
	*api.BaseProvider
	tracer trace.Tracer
}

// NewMinifluxIntegration creates a new Miniflux integration.
func NewMinifluxIntegration(config *api.ProviderConfig) (*MinifluxIntegration, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required for Miniflux integration")
	}
	if config.Transport == nil {
		return nil, fmt.Errorf("transport is required for Miniflux integration")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for Miniflux integration")
	}
	if config.Token == "" {
		return nil, fmt.Errorf("API token is required for Miniflux integration")
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &MinifluxIntegration{
		BaseProvider: api.NewBaseProvider("miniflux", AuthHeader, config),
		tracer:       tp.Tracer(TracerName),
	}, nil
}

// Execute runs a named operation with the given inputs.
func (c *MinifluxIntegration) Execute(ctx context.Context, opName string, inputs map[string]interface{}) (*operation.Result, error) {
	op, err := ParseOperation(opName)
	if err != nil {
		return nil, err
	}
	params, err := DecodeParams(op, MapLookup(inputs))
	if err != nil {
		return nil, err
	}
	return c.Invoke(ctx, params)
}

// Invoke sends the request for p and wraps the response into the
// operation's record, available as Result.Response.
func (c *MinifluxIntegration) Invoke(ctx context.Context, p Params) (*operation.Result, error) {
	switch p := p.(type) {
	// Feeds
	case GetFeedsParams:
		return c.getFeeds(ctx)
	case CreateFeedParams:
		return c.createFeed(ctx, p)
	case RefreshFeedParams:
		return c.refreshFeed(ctx, p)
	case RefreshAllFeedsParams:
		return c.refreshAllFeeds(ctx)
	case DeleteFeedParams:
		return c.deleteFeed(ctx, p)

	// Entries
	case GetEntriesParams:
		return c.getEntries(ctx, p)
	case GetEntryParams:
		return c.getEntry(ctx, p)
	case UpdateEntryStatusParams:
		return c.updateEntryStatus(ctx, p)
	case ToggleBookmarkParams:
		return c.toggleBookmark(ctx, p)

	// Categories
	case GetCategoriesParams:
		return c.getCategories(ctx)
	case CreateCategoryParams:
		return c.createCategory(ctx, p)

	// OPML
	case ExportOPMLParams:
		return c.exportOPML(ctx)
	case ImportOPMLParams:
		return c.importOPML(ctx, p)

	default:
		return nil, operation.NewUnknownOperationError(fmt.Sprintf("%T", p))
	}
}

// Operations returns the list of available operations.
func (c *MinifluxIntegration) Operations() []api.OperationInfo {
	ops := AllOperations()
	infos := make([]api.OperationInfo, len(ops))
	for i, op := range ops {
		infos[i] = op.Info()
	}
	return infos
}

// OperationSchema returns the schema for an operation.
func (c *MinifluxIntegration) OperationSchema(opName string) *api.OperationSchema {
	op, err := ParseOperation(opName)
	if err != nil {
		return nil
	}
	return op.Schema()
}

// send performs the single request of op. body is sent with contentType when
// non-nil; requests without a body carry no Content-Type.
func (c *MinifluxIntegration) send(ctx context.Context, op Operation, path, contentType string, body []byte) (*transport.Response, error) {
	method := operationDefs[op].method

	ctx, span := c.tracer.Start(ctx, "miniflux."+string(op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("miniflux.operation", string(op)),
			attribute.String("http.request.method", method),
		),
	)
	defer span.End()

	headers := make(map[string]string)
	if body != nil {
		headers["Content-Type"] = contentType
	}

	resp, err := c.ExecuteRequest(ctx, string(op), method, c.BuildURL(path), headers, body)
	if err != nil {
		c.fail(span, op, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if err := ParseError(op, resp); err != nil {
		c.fail(span, op, err)
		return nil, err
	}
	return resp, nil
}

// sendJSON marshals payload and sends it as a JSON body.
func (c *MinifluxIntegration) sendJSON(ctx context.Context, op Operation, path string, payload interface{}) (*transport.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
	}
	return c.send(ctx, op, path, contentTypeJSON, body)
}

func (c *MinifluxIntegration) fail(span trace.Span, op Operation, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.Metrics().RecordFailure(string(op), errorType(err))
}

// decodeAny parses a JSON body of any shape. An empty body yields nil.
func (c *MinifluxIntegration) decodeAny(resp *transport.Response) (interface{}, error) {
	var v interface{}
	if err := c.ParseJSONResponse(resp, &v); err != nil {
		return nil, err
	}
	return v, nil
}
