package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/radutopala/rickroller/internal/logging"
	"github.com/radutopala/rickroller/internal/widget"
)

const serverName = "rickroller-chatgpt-app"

// Recorder receives notifications about served tool calls and resource reads.
type Recorder interface {
	ToolCalled(tool string, autoplay bool)
	ResourceRead(uri string)
}

type nopRecorder struct{}

func (nopRecorder) ToolCalled(string, bool) {}
func (nopRecorder) ResourceRead(string)     {}

// Options configures the MCP server.
type Options struct {
	// Version is reported to clients during initialization.
	Version string
	// StrictArguments rejects tool arguments other than the declared ones.
	StrictArguments bool
}

// Server wraps the MCP server exposing the rick-roll tool and widget resource.
type Server struct {
	widget    widget.Widget
	opts      Options
	mcpServer *mcp.Server
	recorder  Recorder
	logger    *slog.Logger
}

// New creates a new MCP server with the rick-roll tool and its widget
// resource registered. recorder and logger may be nil.
func New(opts Options, recorder Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		widget:   widget.RickRoll,
		opts:     opts,
		recorder: recorder,
		logger:   logger,
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: opts.Version,
	}, &mcp.ServerOptions{Logger: logger})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        s.widget.Identifier,
		Title:       s.widget.Title,
		Description: s.widget.Description,
		InputSchema: rickRollInputSchema(opts.StrictArguments),
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
		Meta: s.widget.ToolMeta(),
	}, s.handleRickRoll)

	s.addWidgetResources()

	return s
}

// Run starts the MCP server on the given transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// MCPServer returns the underlying MCP server for testing.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// HTTPHandler returns a streamable HTTP handler serving this server.
// In stateless mode no session ID is issued or validated.
func (s *Server) HTTPHandler(stateless, jsonResponse bool) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		Stateless:    stateless,
		JSONResponse: jsonResponse,
	})
}

func rickRollInputSchema(strict bool) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"autoplay": {
				Type:        "boolean",
				Description: "Autoplay the video",
				Default:     json.RawMessage("false"),
			},
		},
	}
	if strict {
		schema.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	}
	return schema
}

func boolPtr(b bool) *bool { return &b }
