// Package server exposes the Arcanna platform as MCP tools. Each tool
// validates and shapes its arguments, issues one HTTP round trip
// through the platform client, and returns the JSON response. Failures
// become structured error envelopes, never protocol-level errors.
package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/arcanna-ai/arcanna-mcp/internal/arcanna"
	"github.com/arcanna-ai/arcanna-mcp/internal/config"
	"github.com/arcanna-ai/arcanna-mcp/internal/resource"
)

const serverName = "arcanna-mcp-server"

// Server wires the platform clients into MCP tool handlers. It holds
// no per-call state; every invocation is independent.
type Server struct {
	client    *arcanna.Client
	resources *resource.Client
	cfg       config.Config
	logger    *zap.Logger
}

func New(client *arcanna.Client, resources *resource.Client, cfg config.Config, logger *zap.Logger) *Server {
	return &Server{
		client:    client,
		resources: resources,
		cfg:       cfg,
		logger:    logger,
	}
}

// Build fetches the management key's scopes and returns an MCP server
// carrying only the tools that key is allowed to call. Version is the
// build version reported during the MCP handshake.
func (s *Server) Build(ctx context.Context, version string) (*mcpserver.MCPServer, error) {
	allowed, err := s.fetchScopes(ctx)
	if err != nil {
		return nil, err
	}

	srv := mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithRecovery(),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions(
			"Arcanna is a security automation platform that triages alerts with "+
				"AI models trained from analyst feedback. Use these tools to manage "+
				"declarative resources (API keys, integrations, jobs), ingest and "+
				"query events, give decision feedback, train jobs, fetch metrics, "+
				"run agentic workflows and search documents.",
		),
	)

	registered := 0
	for _, def := range s.tools() {
		if !allowed.permits(def.scope) {
			s.logger.Warn("tool filtered by API key scope",
				zap.String("tool", def.tool.Name),
				zap.String("required_scope", def.scope),
			)
			continue
		}
		srv.AddTool(def.tool, s.instrument(def.tool.Name, def.handler))
		registered++
	}
	s.logger.Info("tools registered", zap.Int("count", registered))
	return srv, nil
}

// toolDef pairs a tool definition with its handler and required scope.
type toolDef struct {
	scope   string
	tool    mcp.Tool
	handler mcpserver.ToolHandlerFunc
}

func (s *Server) tools() []toolDef {
	var defs []toolDef
	defs = append(defs, s.resourceTools()...)
	defs = append(defs, s.jobTools()...)
	defs = append(defs, s.eventTools()...)
	defs = append(defs, s.platformTools()...)
	return defs
}

// instrument tags every call with a request ID and logs its outcome.
func (s *Server) instrument(name string, h mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID := uuid.New().String()
		start := time.Now()
		res, err := h(ctx, req)
		s.logger.Info("tool call",
			zap.String("tool", name),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Bool("failed", err != nil || (res != nil && res.IsError)),
		)
		return res, err
	}
}

// toolError wraps any failure in the uniform envelope shared by every
// tool except upsert_resources. The status code is fixed at 500
// regardless of the upstream status, matching the platform contract.
func toolError(err error) *mcp.CallToolResult {
	data, _ := json.Marshal(map[string]any{
		"status_code":   500,
		"error_message": err.Error(),
	})
	return mcp.NewToolResultText(string(data))
}

// upsertError is the narrower envelope specific to upsert_resources.
func upsertError(err error) *mcp.CallToolResult {
	data, _ := json.Marshal(map[string]any{"error": err.Error()})
	return mcp.NewToolResultText(string(data))
}

// toolJSON returns a platform response verbatim.
func toolJSON(raw json.RawMessage) *mcp.CallToolResult {
	return mcp.NewToolResultText(string(raw))
}
