package miniflux

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
	"github.com/tombee/conductor-miniflux/internal/operation/transport"
)

// recordedRequest is what the fake Miniflux server saw.
type recordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Token       string
	ContentType string
	Body        string
}

type fakeServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeServer) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newFakeServer(t *testing.T, status int, body string) *fakeServer {
	t.Helper()
	f := &fakeServer{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			Token:       r.Header.Get(AuthHeader),
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(data),
		})
		f.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func newTestIntegration(t *testing.T, baseURL string, metrics *operation.MetricsCollector) *MinifluxIntegration {
	t.Helper()
	tr, err := transport.NewHTTPTransport(nil)
	require.NoError(t, err)

	c, err := NewMinifluxIntegration(&api.ProviderConfig{
		Transport: tr,
		BaseURL:   baseURL,
		Token:     "secret-token",
		Metrics:   metrics,
	})
	require.NoError(t, err)
	return c
}

func TestNewMinifluxIntegration(t *testing.T) {
	tr, err := transport.NewHTTPTransport(nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		config  *api.ProviderConfig
		wantErr string
	}{
		{
			name:   "valid config",
			config: &api.ProviderConfig{Transport: tr, BaseURL: "http://localhost:8080", Token: "t"},
		},
		{
			name:    "nil config",
			wantErr: "config is required",
		},
		{
			name:    "missing transport",
			config:  &api.ProviderConfig{BaseURL: "http://localhost:8080", Token: "t"},
			wantErr: "transport is required",
		},
		{
			name:    "missing base URL",
			config:  &api.ProviderConfig{Transport: tr, Token: "t"},
			wantErr: "base URL is required",
		},
		{
			name:    "missing token",
			config:  &api.ProviderConfig{Transport: tr, BaseURL: "http://localhost:8080"},
			wantErr: "API token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewMinifluxIntegration(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "miniflux", c.Name())
		})
	}
}

func TestOperations(t *testing.T) {
	c := newTestIntegration(t, "http://localhost:8080", nil)

	ops := c.Operations()
	require.Len(t, ops, 13)

	seen := make(map[string]bool)
	for _, op := range ops {
		assert.NotEmpty(t, op.Description, op.Name)
		assert.NotEmpty(t, op.Method, op.Name)
		assert.Contains(t, op.Path, "/v1/", op.Name)
		seen[op.Name] = true
	}
	for _, name := range []string{
		"getFeeds", "createFeed", "refreshFeed", "refreshAllFeeds", "deleteFeed",
		"getEntries", "getEntry", "updateEntryStatus", "toggleBookmark",
		"getCategories", "createCategory", "exportOpml", "importOpml",
	} {
		assert.True(t, seen[name], "missing operation %s", name)
	}

	schema := c.OperationSchema("createFeed")
	require.NotNil(t, schema)
	require.Len(t, schema.Parameters, 2)
	assert.Equal(t, ParamFeedURL, schema.Parameters[0].Name)
	assert.True(t, schema.Parameters[0].Required)

	assert.NotNil(t, c.OperationSchema("getFeeds"))
	assert.Nil(t, c.OperationSchema("nope"))
}

func TestExecute_Requests(t *testing.T) {
	tests := []struct {
		name       string
		op         string
		inputs     map[string]interface{}
		status     int
		body       string
		wantMethod string
		wantPath   string
		wantQuery  string
		wantCT     string
		wantBody   string
		wantJSON   bool
		wantRecord map[string]interface{}
	}{
		{
			name:       "getFeeds",
			op:         "getFeeds",
			status:     http.StatusOK,
			body:       `[{"id":1,"title":"Go blog"}]`,
			wantMethod: http.MethodGet,
			wantPath:   "/v1/feeds",
			wantRecord: map[string]interface{}{
				"feeds": []interface{}{map[string]interface{}{"id": float64(1), "title": "Go blog"}},
			},
		},
		{
			name:       "createFeed without category",
			op:         "createFeed",
			inputs:     map[string]interface{}{"feedUrl": "https://go.dev/blog/feed.atom", "categoryId": 0},
			status:     http.StatusCreated,
			body:       `{"feed_id":7}`,
			wantMethod: http.MethodPost,
			wantPath:   "/v1/feeds",
			wantCT:     "application/json",
			wantBody:   `{"feed_url":"https://go.dev/blog/feed.atom"}`,
			wantJSON:   true,
			wantRecord: map[string]interface{}{
				"success": true,
				"feed":    map[string]interface{}{"feed_id": float64(7)},
			},
		},
		{
			name:       "createFeed with category",
			op:         "createFeed",
			inputs:     map[string]interface{}{"feedUrl": "https://go.dev/blog/feed.atom", "categoryId": 3},
			status:     http.StatusCreated,
			body:       `{"feed_id":8}`,
			wantMethod: http.MethodPost,
			wantPath:   "/v1/feeds",
			wantCT:     "application/json",
			wantBody:   `{"feed_url":"https://go.dev/blog/feed.atom","category_id":3}`,
			wantJSON:   true,
		},
		{
			name:       "refreshFeed",
			op:         "refreshFeed",
			inputs:     map[string]interface{}{"feedId": 12},
			status:     http.StatusNoContent,
			wantMethod: http.MethodPut,
			wantPath:   "/v1/feeds/12/refresh",
			wantRecord: map[string]interface{}{"success": true, "feedId": int64(12), "refreshed": true},
		},
		{
			name:       "refreshAllFeeds",
			op:         "refreshAllFeeds",
			status:     http.StatusNoContent,
			wantMethod: http.MethodPut,
			wantPath:   "/v1/feeds/refresh",
			wantRecord: map[string]interface{}{"success": true, "refreshedAll": true},
		},
		{
			name:       "deleteFeed",
			op:         "deleteFeed",
			inputs:     map[string]interface{}{"feedId": "5"},
			status:     http.StatusNoContent,
			wantMethod: http.MethodDelete,
			wantPath:   "/v1/feeds/5",
			wantRecord: map[string]interface{}{"success": true, "feedId": int64(5), "deleted": true},
		},
		{
			name:       "getEntries defaults",
			op:         "getEntries",
			status:     http.StatusOK,
			body:       `{"total":0,"entries":[]}`,
			wantMethod: http.MethodGet,
			wantPath:   "/v1/entries",
			wantQuery:  "direction=desc&limit=100&order=published_at&status=unread",
			wantRecord: map[string]interface{}{"total": float64(0), "entries": []interface{}{}},
		},
		{
			name: "getEntries with filters and empty status",
			op:   "getEntries",
			inputs: map[string]interface{}{
				"status": "", "filterFeedId": 4, "filterCategoryId": float64(2),
				"limit": 10, "order": "id", "direction": "asc",
			},
			status:     http.StatusOK,
			body:       `{"total":0,"entries":[]}`,
			wantMethod: http.MethodGet,
			wantPath:   "/v1/entries",
			wantQuery:  "category_id=2&direction=asc&feed_id=4&limit=10&order=id",
		},
		{
			name:       "getEntry",
			op:         "getEntry",
			inputs:     map[string]interface{}{"entryId": 9},
			status:     http.StatusOK,
			body:       `{"id":9,"title":"Hello"}`,
			wantMethod: http.MethodGet,
			wantPath:   "/v1/entries/9",
			wantRecord: map[string]interface{}{"entry": map[string]interface{}{"id": float64(9), "title": "Hello"}},
		},
		{
			name:       "updateEntryStatus",
			op:         "updateEntryStatus",
			inputs:     map[string]interface{}{"entryId": 42, "newStatus": "read"},
			status:     http.StatusNoContent,
			wantMethod: http.MethodPut,
			wantPath:   "/v1/entries",
			wantCT:     "application/json",
			wantBody:   `{"entry_ids":[42],"status":"read"}`,
			wantJSON:   true,
			wantRecord: map[string]interface{}{"success": true, "entryId": int64(42), "status": "read"},
		},
		{
			name:       "toggleBookmark",
			op:         "toggleBookmark",
			inputs:     map[string]interface{}{"entryId": 9},
			status:     http.StatusNoContent,
			wantMethod: http.MethodPut,
			wantPath:   "/v1/entries/9/bookmark",
			wantRecord: map[string]interface{}{"success": true, "entryId": int64(9), "bookmarkToggled": true},
		},
		{
			name:       "getCategories",
			op:         "getCategories",
			status:     http.StatusOK,
			body:       `[{"id":1,"title":"All"}]`,
			wantMethod: http.MethodGet,
			wantPath:   "/v1/categories",
			wantRecord: map[string]interface{}{
				"categories": []interface{}{map[string]interface{}{"id": float64(1), "title": "All"}},
			},
		},
		{
			name:       "createCategory",
			op:         "createCategory",
			inputs:     map[string]interface{}{"categoryTitle": "Golang"},
			status:     http.StatusCreated,
			body:       `{"id":3,"title":"Golang"}`,
			wantMethod: http.MethodPost,
			wantPath:   "/v1/categories",
			wantCT:     "application/json",
			wantBody:   `{"title":"Golang"}`,
			wantJSON:   true,
			wantRecord: map[string]interface{}{
				"success":  true,
				"category": map[string]interface{}{"id": float64(3), "title": "Golang"},
			},
		},
		{
			name:       "exportOpml returns text",
			op:         "exportOpml",
			status:     http.StatusOK,
			body:       `<?xml version="1.0"?><opml version="2.0"></opml>`,
			wantMethod: http.MethodGet,
			wantPath:   "/v1/export",
			wantRecord: map[string]interface{}{
				"success": true,
				"opml":    `<?xml version="1.0"?><opml version="2.0"></opml>`,
			},
		},
		{
			name:       "importOpml sends raw xml",
			op:         "importOpml",
			inputs:     map[string]interface{}{"opmlData": `<opml version="2.0"><body/></opml>`},
			status:     http.StatusCreated,
			body:       `{"message":"Feeds imported successfully"}`,
			wantMethod: http.MethodPost,
			wantPath:   "/v1/import",
			wantCT:     "application/xml",
			wantBody:   `<opml version="2.0"><body/></opml>`,
			wantRecord: map[string]interface{}{
				"success": true,
				"result":  map[string]interface{}{"message": "Feeds imported successfully"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(t, tt.status, tt.body)
			c := newTestIntegration(t, srv.URL+"/", nil)

			result, err := c.Execute(context.Background(), tt.op, tt.inputs)
			require.NoError(t, err)
			assert.Equal(t, tt.status, result.StatusCode)

			reqs := srv.recorded()
			require.Len(t, reqs, 1)
			req := reqs[0]
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, tt.wantQuery, req.RawQuery)
			assert.Equal(t, "secret-token", req.Token)
			assert.Equal(t, tt.wantCT, req.ContentType)
			if tt.wantJSON {
				assert.JSONEq(t, tt.wantBody, req.Body)
			} else {
				assert.Equal(t, tt.wantBody, req.Body)
			}

			if tt.wantRecord != nil {
				assert.Equal(t, tt.wantRecord, result.Response)
			}
		})
	}
}

func TestExecute_HTTPFailure(t *testing.T) {
	srv := newFakeServer(t, http.StatusNotFound, `{"error_message":"feed not found"}`)
	c := newTestIntegration(t, srv.URL, nil)

	_, err := c.Execute(context.Background(), "deleteFeed", map[string]interface{}{"feedId": 99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `{"error_message":"feed not found"}`)
	assert.Equal(t, `delete feed failed (HTTP 404): {"error_message":"feed not found"}`, err.Error())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, OpDeleteFeed, apiErr.Operation)
	assert.Equal(t, "delete feed", apiErr.Action)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAuthError(err))
}

func TestExecute_ReadFailuresAreChecked(t *testing.T) {
	srv := newFakeServer(t, http.StatusUnauthorized, `{"error_message":"Access Unauthorized"}`)
	c := newTestIntegration(t, srv.URL, nil)

	for _, op := range []string{"getFeeds", "getEntries", "getCategories"} {
		t.Run(op, func(t *testing.T) {
			_, err := c.Execute(context.Background(), op, nil)
			require.Error(t, err)
			assert.True(t, IsAuthError(err))
			assert.Contains(t, err.Error(), "Access Unauthorized")
		})
	}
}

func TestExecute_RejectedBeforeRequest(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		inputs   map[string]interface{}
		wantType operation.ErrorType
		wantMsg  string
	}{
		{name: "unknown operation", op: "markAllRead", wantType: operation.ErrorTypeNotFound, wantMsg: "unknown operation: markAllRead"},
		{name: "missing feedUrl", op: "createFeed", wantType: operation.ErrorTypeValidation, wantMsg: "feedUrl is required"},
		{name: "missing feedId", op: "deleteFeed", wantType: operation.ErrorTypeValidation, wantMsg: "feedId is required"},
		{name: "bad entryId", op: "getEntry", inputs: map[string]interface{}{"entryId": "abc"}, wantType: operation.ErrorTypeValidation, wantMsg: "entryId must be an integer"},
		{name: "bad newStatus", op: "updateEntryStatus", inputs: map[string]interface{}{"entryId": 1, "newStatus": "starred"}, wantType: operation.ErrorTypeValidation, wantMsg: "newStatus must be one of"},
		{name: "bad direction", op: "getEntries", inputs: map[string]interface{}{"direction": "up"}, wantType: operation.ErrorTypeValidation, wantMsg: "direction must be one of"},
		{name: "missing title", op: "createCategory", wantType: operation.ErrorTypeValidation, wantMsg: "categoryTitle is required"},
		{name: "missing opml", op: "importOpml", wantType: operation.ErrorTypeValidation, wantMsg: "opmlData is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(t, http.StatusOK, `{}`)
			c := newTestIntegration(t, srv.URL, nil)

			_, err := c.Execute(context.Background(), tt.op, tt.inputs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var opErr *operation.Error
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.wantType, opErr.Type)
			assert.Empty(t, srv.recorded(), "no request should be sent")
		})
	}
}

func TestExecute_TransportErrorUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c := newTestIntegration(t, baseURL, nil)
	_, err := c.Execute(context.Background(), "getFeeds", nil)
	require.Error(t, err)

	var tErr *transport.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, transport.ErrorTypeConnection, tErr.Type)
	assert.NotNil(t, tErr.Cause)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestExecute_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := operation.NewMetricsCollector(reg)

	ok := newFakeServer(t, http.StatusOK, `[]`)
	c := newTestIntegration(t, ok.URL, metrics)
	_, err := c.Execute(context.Background(), "getFeeds", nil)
	require.NoError(t, err)

	failing := newFakeServer(t, http.StatusInternalServerError, "boom")
	c = newTestIntegration(t, failing.URL, metrics)
	_, err = c.Execute(context.Background(), "refreshAllFeeds", nil)
	require.Error(t, err)
	assert.Equal(t, operation.ErrorTypeServer, errorType(err))

	requests, err := testutil.GatherAndCount(reg, "conductor_miniflux_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)

	failures, err := testutil.GatherAndCount(reg, "conductor_miniflux_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
}

func newTracedIntegration(t *testing.T, baseURL string) (*MinifluxIntegration, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tr, err := transport.NewHTTPTransport(nil)
	require.NoError(t, err)
	c, err := NewMinifluxIntegration(&api.ProviderConfig{
		Transport:      tr,
		BaseURL:        baseURL,
		Token:          "secret-token",
		TracerProvider: tp,
	})
	require.NoError(t, err)
	return c, recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestExecute_Spans(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `[]`)
		c, recorder := newTracedIntegration(t, srv.URL)

		_, err := c.Execute(context.Background(), "getFeeds", nil)
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		span := spans[0]
		assert.Equal(t, "miniflux.getFeeds", span.Name())
		assert.Equal(t, TracerName, span.InstrumentationScope().Name)

		status, ok := spanAttr(span, "http.response.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusOK), status.AsInt64())

		method, ok := spanAttr(span, "http.request.method")
		require.True(t, ok)
		assert.Equal(t, http.MethodGet, method.AsString())
		assert.NotEqual(t, codes.Error, span.Status().Code)
	})

	t.Run("not found", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusNotFound, `{"error_message":"feed not found"}`)
		c, recorder := newTracedIntegration(t, srv.URL)

		_, err := c.Execute(context.Background(), "deleteFeed", map[string]interface{}{"feedId": 5})
		require.Error(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		span := spans[0]
		assert.Equal(t, "miniflux.deleteFeed", span.Name())

		status, ok := spanAttr(span, "http.response.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Contains(t, span.Status().Description, "delete feed failed (HTTP 404)")
		require.NotEmpty(t, span.Events())
		assert.Equal(t, "exception", span.Events()[0].Name)
	})

	t.Run("validation failure sends nothing", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{}`)
		c, recorder := newTracedIntegration(t, srv.URL)

		_, err := c.Execute(context.Background(), "deleteFeed", nil)
		require.Error(t, err)
		assert.Empty(t, recorder.Ended())
		assert.Empty(t, srv.recorded())
	})
}
