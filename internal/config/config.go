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

// Package config loads the Miniflux CLI configuration from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-miniflux/internal/log"
	minifluxerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

// DefaultBaseURL is used when neither the environment nor the config file
// names a Miniflux instance.
const DefaultBaseURL = "http://localhost:8080"

// Environment variables that override file values.
const (
	EnvBaseURL  = "MINIFLUX_BASE_URL"
	EnvAPIToken = "MINIFLUX_API_TOKEN"
)

// Config represents the complete CLI configuration.
type Config struct {
	// BaseURL is the Miniflux instance URL, without the /v1 suffix.
	BaseURL string `yaml:"base_url,omitempty"`

	// APIToken is a plain API token. The system keychain is preferred.
	APIToken string `yaml:"api_token,omitempty"`

	// TLSInsecure disables certificate validation for self-signed instances.
	TLSInsecure bool `yaml:"tls_insecure,omitempty"`

	Log       LogConfig       `yaml:"log,omitempty"`
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is json or text.
	Format string `yaml:"format,omitempty"`
}

// RateLimitConfig throttles requests to Miniflux. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	Burst             int     `yaml:"burst,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
	}
}

// Load loads configuration from a YAML file and the environment.
// Environment variables take precedence over file-based configuration.
// An empty configPath reads the default location, which may be absent.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	path := configPath
	if path == "" {
		defaultPath, err := ConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	if path != "" {
		err := cfg.loadFromFile(path)
		switch {
		case err == nil:
		case configPath == "" && errors.Is(err, os.ErrNotExist):
			// no config file is fine
		default:
			return nil, &minifluxerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	cfg.loadFromEnv()
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads only the config file at path, without environment
// overrides or defaults, so it can be edited and saved back. An empty path
// means the default location. A missing file yields an empty Config.
func LoadFile(path string) (*Config, string, error) {
	if path == "" {
		defaultPath, err := ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = defaultPath
	}

	cfg := &Config{}
	if err := cfg.loadFromFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, "", &minifluxerrors.ConfigError{
			Key:    "config_file",
			Reason: fmt.Sprintf("failed to load from %s", path),
			Cause:  err,
		}
	}
	return cfg, path, nil
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	if val := os.Getenv(EnvBaseURL); val != "" {
		c.BaseURL = val
	}
	if val := os.Getenv(EnvAPIToken); val != "" {
		c.APIToken = val
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &minifluxerrors.ConfigError{
				Key:    "base_url",
				Reason: fmt.Sprintf("must be an http or https URL, got %q", c.BaseURL),
				Cause:  err,
			}
		}
		if strings.HasSuffix(strings.TrimSuffix(u.Path, "/"), "/v1") {
			return &minifluxerrors.ConfigError{
				Key:    "base_url",
				Reason: "must not include the /v1 API prefix",
			}
		}
	}

	validLevels := map[string]bool{"": true, "trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return &minifluxerrors.ConfigError{
			Key:    "log.level",
			Reason: fmt.Sprintf("must be one of [trace, debug, info, warn, error], got %q", c.Log.Level),
		}
	}

	validFormats := map[string]bool{"": true, "json": true, "text": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		return &minifluxerrors.ConfigError{
			Key:    "log.format",
			Reason: fmt.Sprintf("must be one of [json, text], got %q", c.Log.Format),
		}
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		return &minifluxerrors.ConfigError{
			Key:    "rate_limit.requests_per_second",
			Reason: fmt.Sprintf("must be non-negative, got %v", c.RateLimit.RequestsPerSecond),
		}
	}
	if c.RateLimit.Burst < 0 {
		return &minifluxerrors.ConfigError{
			Key:    "rate_limit.burst",
			Reason: fmt.Sprintf("must be non-negative, got %d", c.RateLimit.Burst),
		}
	}

	return nil
}

// LoggerConfig returns the logging configuration. Environment variables
// read by log.FromEnv win over the file values.
func (c *Config) LoggerConfig() *log.Config {
	cfg := log.FromEnv()
	if c.Log.Level != "" && !anyEnvSet("MINIFLUX_DEBUG", "MINIFLUX_LOG_LEVEL", "LOG_LEVEL") {
		cfg.Level = strings.ToLower(c.Log.Level)
	}
	if c.Log.Format != "" && !anyEnvSet("LOG_FORMAT") {
		cfg.Format = log.Format(strings.ToLower(c.Log.Format))
	}
	return cfg
}

// Save writes the configuration to path with owner-only permissions,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

func anyEnvSet(keys ...string) bool {
	for _, key := range keys {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}
