package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/dsg"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/handler"
	"github.com/aretw0/dsg/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SceneURI is the resource exposing the last scene summary.
const SceneURI = "dsg://scene"

// SceneSource provides the scene state the tools report on.
type SceneSource interface {
	Summary() handler.Summary
	Part(id int64) (handler.PartSummary, bool)
}

// StatusResponse is the output of the session_status tool.
type StatusResponse struct {
	Progress domain.Progress `json:"progress" jsonschema_description:"Last progress record written by the engine"`
	Updating bool            `json:"updating" jsonschema_description:"True while a scene refresh is in flight"`
}

// Server exposes a DSG session to MCP clients.
type Server struct {
	scene     SceneSource
	status    ports.StatusReader
	updating  func() bool
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithStatus lets session_status report progress from r.
func WithStatus(r ports.StatusReader) Option {
	return func(s *Server) { s.status = r }
}

// WithUpdating reports whether an update is in flight, typically Session.Updating.
func WithUpdating(fn func() bool) Option {
	return func(s *Server) { s.updating = fn }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(scene SceneSource, opts ...Option) *Server {
	s := &Server{
		scene:     scene,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("dsg-mcp", strings.TrimSpace(dsg.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// TOOL: scene_summary
	s.mcpServer.AddTool(mcp.NewTool("scene_summary",
		mcp.WithDescription("Summarize the last completed scene update: groups, variables and parts."),
	), s.handleSceneSummary)

	// TOOL: part_info
	s.mcpServer.AddTool(mcp.NewTool("part_info",
		mcp.WithDescription("Describe one reconstructed part by its id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Part id")),
		mcp.WithOutputSchema[handler.PartSummary](),
	), mcp.NewStructuredToolHandler(s.handlePartInfo))

	// TOOL: session_status
	s.mcpServer.AddTool(mcp.NewTool("session_status",
		mcp.WithDescription("Report the progress of the running scene update."),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleStatus))
}

func (s *Server) handleSceneSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.scene.Summary())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handlePartInfo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (handler.PartSummary, error) {
	raw, ok := args["id"].(float64)
	if !ok {
		return handler.PartSummary{}, fmt.Errorf("id must be a number")
	}
	part, found := s.scene.Part(int64(raw))
	if !found {
		return handler.PartSummary{}, fmt.Errorf("part %d not found", int64(raw))
	}
	return part, nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StatusResponse, error) {
	resp := StatusResponse{Progress: domain.Progress{Status: domain.StatusIdle}}
	if s.status != nil {
		p, err := s.status.ReadStatus(ctx)
		if err != nil {
			s.logger.Error("MCP status: read failed", "error", err)
			return StatusResponse{}, fmt.Errorf("failed to read status: %w", err)
		}
		resp.Progress = p
	}
	if s.updating != nil {
		resp.Updating = s.updating()
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: dsg://scene
	s.mcpServer.AddResource(mcp.NewResource(SceneURI, "Last Scene Summary",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.scene.Summary())
		if err != nil {
			return nil, fmt.Errorf("failed to encode scene: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SceneURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
