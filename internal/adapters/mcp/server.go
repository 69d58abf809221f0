// Package mcp exposes the rating and team operations as Model Context
// Protocol tools over streamable HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/selector"
	"github.com/okian/matchup/pkg/logger"
	"github.com/okian/matchup/pkg/metrics"
)

// Dependencies are the service operations the tools call.
type Dependencies interface {
	Activities() []model.ActivityConfig
	CreateSession(ctx context.Context, name, activityID string) (model.Session, error)
	AddPlayer(ctx context.Context, sessionID, name string, positions []string) (model.Player, error)
	Players(ctx context.Context, sessionID string) ([]model.Player, error)
	NextComparison(ctx context.Context, sessionID, position string) (selector.Suggestion, error)
	RecordComparison(ctx context.Context, sessionID string, in service.ComparisonInput) (service.ComparisonResult, error)
	Rankings(ctx context.Context, sessionID, position string) ([]selector.PositionRanking, error)
	Stats(ctx context.Context, sessionID string) (selector.Stats, error)
	GenerateTeams(ctx context.Context, sessionID string, req service.TeamRequest) (service.TeamsOutcome, error)
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server owns the MCP server and its tool registry.
type Server struct {
	deps     Dependencies
	server   *sdk.Server
	registry []ToolInfo
	logger   logger.Logger

	name    string
	version string
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithImplementation sets the name and version reported to clients.
func WithImplementation(name, version string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
		if version != "" {
			s.version = version
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the MCP server and registers every tool.
func New(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		name:    "matchup",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("mcp")
	}
	s.server = sdk.NewServer(&sdk.Implementation{Name: s.name, Version: s.version}, nil)
	s.registerTools()
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *sdk.Server { return s.server }

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []ToolInfo { return s.registry }

// Handler serves the tools over streamable HTTP with JSON responses.
func (s *Server) Handler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.server
	}, &sdk.StreamableHTTPOptions{JSONResponse: true})
}

func addTool[T any](s *Server, tool *sdk.Tool, handler func(context.Context, *sdk.CallToolRequest, T) (*sdk.CallToolResult, any, error)) {
	s.registry = append(s.registry, ToolInfo{Name: tool.Name, Description: tool.Description})
	sdk.AddTool(s.server, tool, handler)
}

// toolJSON renders v as the text content of a tool result, or err as an
// error result.
func (s *Server) toolJSON(ctx context.Context, tool string, v any, err error) (*sdk.CallToolResult, any, error) {
	if err != nil {
		return s.toolError(ctx, tool, err), nil, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.toolError(ctx, tool, err), nil, nil
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func (s *Server) toolError(ctx context.Context, tool string, err error) *sdk.CallToolResult {
	metrics.RecordErrorByComponent("mcp", tool)
	s.logger.Debug(ctx, "tool call failed", logger.String("tool", tool), logger.Error(err))
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{
			&sdk.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
