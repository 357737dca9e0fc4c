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

package shared

import (
	"context"
	"io"
	"log/slog"

	"github.com/tombee/conductor-miniflux/internal/config"
	"github.com/tombee/conductor-miniflux/internal/log"
	"github.com/tombee/conductor-miniflux/internal/node"
	"github.com/tombee/conductor-miniflux/internal/operation/transport"
	"github.com/tombee/conductor-miniflux/internal/secrets"
	pkgerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

// ConfigBackendName names the read-only backend serving the token from the
// config file.
const ConfigBackendName = "config"

// Runtime holds what a command needs to talk to a Miniflux instance.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Resolver *secrets.Resolver
}

// RuntimeOption customises LoadRuntime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	backends []secrets.SecretBackend
}

// WithBackends replaces the environment and keychain backends. The config
// file backend is always added.
func WithBackends(backends ...secrets.SecretBackend) RuntimeOption {
	return func(o *runtimeOptions) {
		o.backends = backends
	}
}

// LoadRuntime loads the configuration named by --config and builds the
// logger and credential resolver. Logs go to logOutput.
func LoadRuntime(logOutput io.Writer, opts ...RuntimeOption) (*Runtime, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}

	o := &runtimeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	backends := o.backends
	if backends == nil {
		backends = []secrets.SecretBackend{
			secrets.NewEnvBackend(),
			secrets.NewKeychainBackend(),
		}
	}
	backends = append(backends, secrets.NewStaticBackend(ConfigBackendName, map[string]string{
		secrets.KeyAPIToken: cfg.APIToken,
	}))

	return &Runtime{
		Config:   cfg,
		Logger:   NewLogger(cfg, logOutput),
		Resolver: secrets.NewResolver(backends...),
	}, nil
}

// NewLogger builds the command logger. --verbose lowers the level to debug
// and --quiet raises it to error.
func NewLogger(cfg *config.Config, output io.Writer) *slog.Logger {
	logCfg := cfg.LoggerConfig()
	logCfg.Output = output
	switch {
	case GetVerbose():
		logCfg.Level = "debug"
	case GetQuiet():
		logCfg.Level = "error"
	}
	return log.New(logCfg)
}

// Credentials resolves the base URL and API token.
func (r *Runtime) Credentials(ctx context.Context) (node.Credentials, error) {
	token, source, err := r.Resolver.Get(ctx, secrets.KeyAPIToken)
	if err != nil {
		return node.Credentials{}, NewConfigError("failed to resolve API token", err)
	}
	r.Logger.Debug("resolved API token",
		slog.String("backend", source),
		slog.String("token", log.SanitizeAPIKey(token)))

	return node.Credentials{
		BaseURL:  r.Config.BaseURL,
		APIToken: token,
	}, nil
}

// NewTransport builds the HTTP transport, applying the configured rate limit.
func (r *Runtime) NewTransport() (*transport.HTTPTransport, error) {
	t, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{
		TLSInsecure: r.Config.TLSInsecure,
	})
	if err != nil {
		return nil, NewConfigError("failed to create transport", pkgerrors.Wrap(err, "http"))
	}
	if limiter := transport.NewRateLimiter(r.Config.RateLimit.RequestsPerSecond, r.Config.RateLimit.Burst); limiter != nil {
		t.SetRateLimiter(limiter)
	}
	return t, nil
}
