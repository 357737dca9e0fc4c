// Package node runs Miniflux operations over a batch of host items.
//
// The operation is read once from the first item; all other parameters are
// read per item. Items are processed sequentially and produce exactly one
// record each, in input order.
package node

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/conductor-miniflux/internal/integration/miniflux"
	"github.com/tombee/conductor-miniflux/internal/log"
	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
	"github.com/tombee/conductor-miniflux/internal/operation/transport"
)

// Credentials identify the Miniflux instance and the API token to use.
type Credentials struct {
	BaseURL  string
	APIToken string
}

// Record is one output item: the operation payload or {"error": message}.
type Record map[string]interface{}

// Options control batch execution.
type Options struct {
	// ContinueOnFail turns per-item failures into error records instead of
	// aborting the batch.
	ContinueOnFail bool
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// Transport sends the HTTP requests (required)
	Transport transport.Transport

	// Metrics receives request metrics (optional)
	Metrics *operation.MetricsCollector

	// Logger receives execution logs (optional)
	Logger *slog.Logger

	// TracerProvider creates request spans (optional)
	TracerProvider trace.TracerProvider
}

// Executor runs batches of items against Miniflux.
type Executor struct {
	transport transport.Transport
	metrics   *operation.MetricsCollector
	logger    *slog.Logger
	tracing   trace.TracerProvider
}

// NewExecutor creates an executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &Executor{
		transport: cfg.Transport,
		metrics:   cfg.Metrics,
		logger:    log.WithComponent(logger, "node"),
		tracing:   cfg.TracerProvider,
	}, nil
}

// Execute runs the batch. Credentials are read once for the whole batch.
// Without ContinueOnFail the first failing item aborts the batch and its
// error is returned as is.
func (e *Executor) Execute(ctx context.Context, items ParameterReader, creds Credentials, opts Options) ([]Record, error) {
	executionID := uuid.New().String()
	count := items.Len()
	records := make([]Record, 0, count)
	if count == 0 {
		return records, nil
	}

	opName, opErr := operationName(items)
	logger := log.WithExecution(e.logger, executionID, opName)

	op := miniflux.Operation(opName)
	if opErr == nil {
		op, opErr = miniflux.ParseOperation(opName)
	}

	client, err := miniflux.NewMinifluxIntegration(&api.ProviderConfig{
		Transport:      e.transport,
		BaseURL:        creds.BaseURL,
		Token:          creds.APIToken,
		Metrics:        e.metrics,
		Logger:         logger,
		TracerProvider: e.tracing,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("executing batch", slog.Int("items", count))

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := e.executeItem(ctx, client, op, opErr, items, i)
		if err != nil {
			if !opts.ContinueOnFail {
				logger.Debug("item failed, aborting batch", slog.Int(log.ItemIndexKey, i), log.Error(err))
				return nil, err
			}
			logger.Warn("item failed", slog.Int(log.ItemIndexKey, i), log.Error(err))
			records = append(records, Record{"error": err.Error()})
			continue
		}

		logger.Debug("item completed", slog.Int(log.ItemIndexKey, i))
		records = append(records, record)
	}

	return records, nil
}

func (e *Executor) executeItem(ctx context.Context, client *miniflux.MinifluxIntegration, op miniflux.Operation, opErr error, items ParameterReader, index int) (Record, error) {
	if opErr != nil {
		return nil, opErr
	}

	params, err := miniflux.DecodeParams(op, func(name string) (interface{}, bool) {
		return items.Parameter(name, index)
	})
	if err != nil {
		return nil, err
	}

	result, err := client.Invoke(ctx, params)
	if err != nil {
		return nil, err
	}

	payload, _ := result.Response.(map[string]interface{})
	return Record(payload), nil
}

// operationName reads the operation selector from the first item.
func operationName(items ParameterReader) (string, error) {
	v, ok := items.Parameter(miniflux.ParamOperation, 0)
	if !ok {
		return string(miniflux.DefaultOperation), nil
	}
	name, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v), operation.NewValidationError(miniflux.ParamOperation, fmt.Sprintf("operation must be a string, got %T", v))
	}
	return name, nil
}
