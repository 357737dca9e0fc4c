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
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func clearLogEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MINIFLUX_DEBUG", "MINIFLUX_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}
	if cfg.AddSource {
		t.Errorf("expected default AddSource to be false")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		envVars    map[string]string
		wantLevel  string
		wantFormat Format
		wantSource bool
	}{
		{
			name:       "defaults when no env vars",
			envVars:    map[string]string{},
			wantLevel:  "info",
			wantFormat: FormatJSON,
		},
		{
			name:       "LOG_LEVEL=DEBUG (case insensitive)",
			envVars:    map[string]string{"LOG_LEVEL": "DEBUG"},
			wantLevel:  "debug",
			wantFormat: FormatJSON,
		},
		{
			name:       "MINIFLUX_LOG_LEVEL wins over LOG_LEVEL",
			envVars:    map[string]string{"LOG_LEVEL": "error", "MINIFLUX_LOG_LEVEL": "warn"},
			wantLevel:  "warn",
			wantFormat: FormatJSON,
		},
		{
			name:       "MINIFLUX_DEBUG enables debug and source",
			envVars:    map[string]string{"MINIFLUX_DEBUG": "1", "MINIFLUX_LOG_LEVEL": "error"},
			wantLevel:  "debug",
			wantFormat: FormatJSON,
			wantSource: true,
		},
		{
			name:       "LOG_FORMAT and LOG_SOURCE",
			envVars:    map[string]string{"LOG_FORMAT": "text", "LOG_SOURCE": "1"},
			wantLevel:  "info",
			wantFormat: FormatText,
			wantSource: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearLogEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := FromEnv()

			if cfg.Level != tt.wantLevel {
				t.Errorf("expected level %q, got %q", tt.wantLevel, cfg.Level)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("expected format %q, got %q", tt.wantFormat, cfg.Format)
			}
			if cfg.AddSource != tt.wantSource {
				t.Errorf("expected AddSource %v, got %v", tt.wantSource, cfg.AddSource)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	logger.Debug("request sent", slog.String(OperationKey, "getFeeds"), slog.Int(StatusCodeKey, 200))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log output: %v", err)
	}
	if entry["msg"] != "request sent" {
		t.Errorf("expected msg 'request sent', got %v", entry["msg"])
	}
	if entry[OperationKey] != "getFeeds" {
		t.Errorf("expected operation 'getFeeds', got %v", entry[OperationKey])
	}
	if entry[StatusCodeKey] != float64(200) {
		t.Errorf("expected status_code 200, got %v", entry[StatusCodeKey])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})

	logger.Info("batch finished", "items", 3)

	out := buf.String()
	if !strings.Contains(out, "msg=\"batch finished\"") {
		t.Errorf("expected text output to contain message, got %q", out)
	}
	if !strings.Contains(out, "items=3") {
		t.Errorf("expected text output to contain items=3, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithExecution(t *testing.T) {
	var buf bytes.Buffer
	logger := WithExecution(New(&Config{Level: "info", Output: &buf}), "exec-1", "deleteFeed")

	logger.Info("item failed", Error(errors.New("boom")))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log output: %v", err)
	}
	if entry[ExecutionIDKey] != "exec-1" {
		t.Errorf("expected execution_id 'exec-1', got %v", entry[ExecutionIDKey])
	}
	if entry[OperationKey] != "deleteFeed" {
		t.Errorf("expected operation 'deleteFeed', got %v", entry[OperationKey])
	}
	if entry["error"] != "boom" {
		t.Errorf("expected error 'boom', got %v", entry["error"])
	}
}

func TestTrace_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	Trace(context.Background(), New(&Config{Level: "debug", Output: &buf}), "body")
	if buf.Len() != 0 {
		t.Errorf("trace record emitted at debug level: %q", buf.String())
	}

	Trace(context.Background(), New(&Config{Level: "trace", Output: &buf}), "body")
	if !strings.Contains(buf.String(), "body") {
		t.Errorf("trace record missing at trace level")
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "[REDACTED]"},
		{"abcd", "[REDACTED]"},
		{"0123456789abcdef", "...cdef"},
	}

	for _, tt := range tests {
		if got := SanitizeAPIKey(tt.key); got != tt.want {
			t.Errorf("SanitizeAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNilConfig(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("New(nil) returned nil logger")
	}
	Discard().Info("dropped")
}
