// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mcpserver implements 'miniflux mcp', which serves the Miniflux
// operations as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tombee/conductor-miniflux/internal/commands/shared"
	"github.com/tombee/conductor-miniflux/internal/integration/miniflux"
	"github.com/tombee/conductor-miniflux/internal/log"
	"github.com/tombee/conductor-miniflux/internal/mcp/server"
	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
	"github.com/tombee/conductor-miniflux/internal/secrets"
)

// Options holds the flags of the mcp command.
type Options struct {
	MetricsAddr    string
	CallsPerMinute int

	// Backends replaces the credential backends. Used by tests.
	Backends []secrets.SecretBackend
}

// NewCommand creates the mcp command.
func NewCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve Miniflux operations as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Every operation is exposed as a tool named miniflux_<operation>. Logs are
written to stderr. With --metrics-addr, Prometheus metrics are served at
/metrics on that address.`,
		Example: `  miniflux mcp
  miniflux mcp --metrics-addr 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (disabled when empty)")
	cmd.Flags().IntVar(&opts.CallsPerMinute, "calls-per-minute", server.DefaultCallsPerMinute, "Maximum tool calls per minute")

	return cmd
}

// Instance is a configured MCP server with its metrics registry.
type Instance struct {
	Server   *server.Server
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Build wires the configuration, credentials, transport and metrics into an
// MCP server without starting it.
func Build(ctx context.Context, cmd *cobra.Command, opts *Options) (*Instance, error) {
	var rtOpts []shared.RuntimeOption
	if opts.Backends != nil {
		rtOpts = append(rtOpts, shared.WithBackends(opts.Backends...))
	}
	rt, err := shared.LoadRuntime(cmd.ErrOrStderr(), rtOpts...)
	if err != nil {
		return nil, err
	}
	creds, err := rt.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	transport, err := rt.NewTransport()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	integration, err := miniflux.NewMinifluxIntegration(&api.ProviderConfig{
		Transport: transport,
		BaseURL:   creds.BaseURL,
		Token:     creds.APIToken,
		Metrics:   operation.NewMetricsCollector(reg),
		Logger:    rt.Logger,
	})
	if err != nil {
		return nil, shared.NewConfigError("failed to create Miniflux client", err)
	}

	version, _, _ := shared.GetVersion()
	srv, err := server.NewServer(server.ServerConfig{
		Version:        version,
		Connector:      integration,
		CallsPerMinute: opts.CallsPerMinute,
		Logger:         rt.Logger,
	})
	if err != nil {
		return nil, shared.NewExecutionError("failed to create MCP server", err)
	}

	return &Instance{Server: srv, Registry: reg, Logger: rt.Logger}, nil
}

// Run builds the server and serves until the client disconnects.
func Run(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	inst, err := Build(ctx, cmd, opts)
	if err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		stop, err := serveMetrics(opts.MetricsAddr, inst.Registry, inst.Logger)
		if err != nil {
			return shared.NewConfigError("failed to start metrics server", err)
		}
		defer stop()
	}

	if err := inst.Server.Run(ctx); err != nil {
		return shared.NewExecutionError("MCP server stopped", err)
	}
	return nil
}

// MetricsHandler serves reg in the Prometheus exposition format.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           MetricsHandler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", log.Error(err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
