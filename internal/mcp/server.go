package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

const instructions = `LiftPlan training program editor. Read a program with get_program, look up
valid exercise names with list_exercises, then send a batch of edits with apply_program_edits.
Operations apply in order; ones that cannot be resolved are skipped and reported, never fatal.
Exercise numbers are renumbered 1..N on every day you touch.`

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftPlan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(instructions),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListPrograms, Handler: h.listPrograms},
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolApplyProgramEdits, Handler: h.applyProgramEdits},
		server.ServerTool{Tool: toolGetProgramSummary, Handler: h.getProgramSummary},
	)

	s.AddResources(
		server.ServerResource{Resource: resExerciseLibrary, Handler: h.exerciseLibrary},
	)

	return s
}

// HTTPHandler serves s over streamable HTTP. userID resolves the caller of
// each request; it runs after the transport's identity middleware.
func HTTPHandler(s *server.MCPServer, userID func(*http.Request) int) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return WithUserID(ctx, userID(r))
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resExerciseLibrary = mcp.NewResource(
	"liftplan://exercise_library",
	"Exercise Library",
	mcp.WithResourceDescription("Every exercise name that operations may reference, with equipment"),
	mcp.WithMIMEType("application/json"),
)
