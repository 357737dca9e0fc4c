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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/conductor-miniflux/internal/log"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
	minifluxerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

// ToolPrefix is prepended to operation names to form tool names.
const ToolPrefix = "miniflux_"

// ToolName returns the MCP tool name of an operation.
func ToolName(operation string) string {
	return ToolPrefix + operation
}

// registerOperationTools registers one tool per connector operation.
func (s *Server) registerOperationTools() {
	for _, info := range s.connector.Operations() {
		tool := mcp.Tool{
			Name:        ToolName(info.Name),
			Description: fmt.Sprintf("%s (%s %s)", info.Description, info.Method, info.Path),
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
		}

		if schema := s.connector.OperationSchema(info.Name); schema != nil {
			tool.InputSchema = inputSchema(schema.Parameters)
		}

		s.addTool(tool, s.createOperationHandler(info.Name))
	}
}

// inputSchema converts parameter metadata to a JSON schema object.
func inputSchema(params []api.ParameterInfo) mcp.ToolInputSchema {
	schema := mcp.ToolInputSchema{
		Type:       "object",
		Properties: make(map[string]interface{}, len(params)),
	}

	for _, p := range params {
		prop := map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return schema
}

// createOperationHandler creates an MCP tool handler that runs one operation.
func (s *Server) createOperationHandler(operation string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.rateLimiter.AllowCall() {
			return errorResponse("Rate limit exceeded. Please try again later."), nil
		}

		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		start := time.Now()
		result, err := s.connector.Execute(ctx, operation, args)
		if err != nil {
			s.logger.Warn("Operation failed",
				slog.String(log.OperationKey, operation),
				log.Error(err),
			)
			message := err.Error()
			if hint := minifluxerrors.Hint(err); hint != "" {
				message = fmt.Sprintf("%s\nSuggestion: %s", message, hint)
			}
			return errorResponse(message), nil
		}

		s.logger.Debug("Operation completed",
			slog.String(log.OperationKey, operation),
			slog.Int64(log.DurationKey, time.Since(start).Milliseconds()),
		)

		data, err := json.MarshalIndent(result.GetResponse(), "", "  ")
		if err != nil {
			return errorResponse(fmt.Sprintf("Failed to encode result: %v", err)), nil
		}
		return textResponse(string(data)), nil
	}
}
