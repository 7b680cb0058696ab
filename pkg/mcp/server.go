package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/typeview/internal/engine"
	"github.com/rendis/typeview/pkg/schema"
)

// TypeviewServerDeps holds the dependencies for creating a TypeviewServer.
type TypeviewServerDeps struct {
	Navigator *engine.Navigator
	Title     string
	Version   string
	// Policy is the transcript policy used when a request names none.
	Policy schema.NonInteractivePolicy
	Logger *slog.Logger
}

// TypeviewServer exposes a loaded deck to MCP clients for previewing.
type TypeviewServer struct {
	nav       *engine.Navigator
	title     string
	policy    schema.NonInteractivePolicy
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewTypeviewServer creates a new TypeviewServer with all 3 tools registered.
func NewTypeviewServer(deps TypeviewServerDeps) *TypeviewServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	nav := deps.Navigator
	if nav == nil {
		nav = engine.NewNavigator()
	}
	policy := deps.Policy
	if policy == "" {
		policy = schema.NonInteractiveAll
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &TypeviewServer{
		nav:    nav,
		title:  deps.Title,
		policy: policy,
		logger: logger,
	}

	mcpSrv := server.NewMCPServer(
		"typeview",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Typeview previews a terminal slide deck. Use typeview.outline to list slides and their stage counts, typeview.render to render one slide at a stage, and typeview.transcript to get every frame a non-interactive run would print."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *TypeviewServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *TypeviewServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the 3 registered MCP tools as ServerTool entries.
func (s *TypeviewServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: outlineTool(), Handler: s.handleOutline},
		{Tool: renderTool(), Handler: s.handleRender},
		{Tool: transcriptTool(), Handler: s.handleTranscript},
	}
}

// --- Tool definitions ---

func outlineTool() mcp.Tool {
	return mcp.NewTool("typeview.outline",
		mcp.WithDescription("List the slides of the deck with their stage counts"),
	)
}

func renderTool() mcp.Tool {
	return mcp.NewTool("typeview.render",
		mcp.WithDescription("Render the body of one slide at a stage"),
		mcp.WithNumber("slide", mcp.Required(), mcp.Description("Zero-based slide index")),
		mcp.WithNumber("stage", mcp.Description("Zero-based stage index, clamped to the slide's stages (default: 0)")),
	)
}

func transcriptTool() mcp.Tool {
	return mcp.NewTool("typeview.transcript",
		mcp.WithDescription("Render every frame of a non-interactive run"),
		mcp.WithString("policy",
			mcp.Enum(string(schema.NonInteractiveAll), string(schema.NonInteractiveFinal)),
			mcp.Description("Which stages of staged slides to render (default: server policy)"),
		),
	)
}
