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

// Package prompt collects missing operation parameters and confirmations
// from an interactive terminal. Non-interactive prompters fail instead of
// blocking, so scripted runs report missing parameters as errors.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tombee/conductor-miniflux/internal/operation/api"
)

// MaxRetries is the maximum number of attempts per parameter.
const MaxRetries = 3

// MaxInputSize is the maximum allowed input size in bytes.
const MaxInputSize = 65536

// ErrNonInteractive is returned by prompters that cannot display prompts.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Prompter defines the interface for interactive input collection.
// Implementations include SurveyPrompter (production) and MockPrompter (testing).
type Prompter interface {
	// PromptString collects a free-text value
	PromptString(ctx context.Context, name, desc, def string) (string, error)

	// PromptInteger collects a whole number
	PromptInteger(ctx context.Context, name, desc string, def int64) (int64, error)

	// PromptEnum presents options and returns the selection
	PromptEnum(ctx context.Context, name, desc string, options []string, def string) (string, error)

	// Confirm asks a yes/no question
	Confirm(ctx context.Context, message string, def bool) (bool, error)

	// IsInteractive returns true if prompts can be displayed
	IsInteractive() bool
}

// Collector prompts for the parameters an operation requires.
type Collector struct {
	prompter Prompter
	out      io.Writer
}

// NewCollector creates a collector. Retry notices are written to out.
func NewCollector(p Prompter, out io.Writer) *Collector {
	if out == nil {
		out = io.Discard
	}
	return &Collector{prompter: p, out: out}
}

// Missing returns the required parameters of schema for which has returns
// false, in schema order.
func Missing(schema *api.OperationSchema, has func(name string) bool) []api.ParameterInfo {
	if schema == nil {
		return nil
	}
	var missing []api.ParameterInfo
	for _, p := range schema.Parameters {
		if p.Required && !has(p.Name) {
			missing = append(missing, p)
		}
	}
	return missing
}

// CollectParameter prompts for a single parameter, retrying invalid input.
func (c *Collector) CollectParameter(ctx context.Context, param api.ParameterInfo) (interface{}, error) {
	if !c.prompter.IsInteractive() {
		return nil, ErrNonInteractive
	}

	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var value interface{}
		var err error
		switch {
		case len(param.Enum) > 0:
			value, err = c.prompter.PromptEnum(ctx, param.Name, param.Description, param.Enum, defaultString(param.Default))
		case param.Type == "integer":
			value, err = c.prompter.PromptInteger(ctx, param.Name, param.Description, defaultInt(param.Default))
		case param.Type == "string":
			var s string
			s, err = c.prompter.PromptString(ctx, param.Name, param.Description, defaultString(param.Default))
			if err == nil {
				err = ValidateRequired(s)
			}
			value = s
		default:
			return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
		}

		if err == nil {
			return value, nil
		}
		if errors.Is(err, ErrNonInteractive) {
			return nil, err
		}
		lastErr = err

		if attempt < MaxRetries {
			fmt.Fprintf(c.out, "Error: %s must be a valid %s\n", param.Name, param.Type)
		}
	}

	return nil, fmt.Errorf("failed to collect %s after %d attempts: %w", param.Name, MaxRetries, lastErr)
}

// Collect prompts for each parameter in order.
func (c *Collector) Collect(ctx context.Context, params []api.ParameterInfo) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(params))
	for _, p := range params {
		v, err := c.CollectParameter(ctx, p)
		if err != nil {
			return nil, err
		}
		values[p.Name] = v
	}
	return values, nil
}

func defaultString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func defaultInt(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}
