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

// Package server implements an MCP server that exposes Miniflux operations as tools.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/conductor-miniflux/internal/log"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
)

// DefaultCallsPerMinute limits tool calls when ServerConfig leaves it unset.
const DefaultCallsPerMinute = 120

// Server wraps the MCP server and provides Miniflux tools
type Server struct {
	mcpServer   *server.MCPServer
	name        string
	version     string
	connector   api.TypedProvider
	rateLimiter *RateLimiter
	logger      *slog.Logger

	tools    []mcp.Tool
	handlers map[string]server.ToolHandlerFunc
}

// ServerConfig configures the MCP server
type ServerConfig struct {
	// Name is the server name (default: "miniflux")
	Name string

	// Version is the CLI version
	Version string

	// Connector executes the operations (required)
	Connector api.TypedProvider

	// CallsPerMinute caps tool calls (default: DefaultCallsPerMinute)
	CallsPerMinute int

	// Logger must not write to stdout, which carries the MCP protocol
	Logger *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(config ServerConfig) (*Server, error) {
	if config.Connector == nil {
		return nil, fmt.Errorf("connector is required")
	}
	if config.Name == "" {
		config.Name = "miniflux"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.CallsPerMinute <= 0 {
		config.CallsPerMinute = DefaultCallsPerMinute
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		mcpServer:   server.NewMCPServer(config.Name, config.Version, server.WithToolCapabilities(false)),
		name:        config.Name,
		version:     config.Version,
		connector:   config.Connector,
		rateLimiter: NewRateLimiter(config.CallsPerMinute),
		logger:      log.WithComponent(logger, "mcp"),
		handlers:    make(map[string]server.ToolHandlerFunc),
	}

	s.registerOperationTools()

	return s, nil
}

// Tools returns the registered tool definitions.
func (s *Server) Tools() []mcp.Tool {
	return s.tools
}

// Run serves MCP over stdio until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting Miniflux MCP server",
		slog.String("version", s.version),
		slog.Int("tools", len(s.tools)),
	)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

// CallTool invokes a registered tool directly, bypassing the transport.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return handler(ctx, req)
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	s.mcpServer.AddTool(tool, handler)
}

// Helper function to create error response
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// Helper function to create success response
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
