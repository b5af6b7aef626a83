package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftplan/internal/editor"
	lpmcp "github.com/claude/liftplan/internal/mcp"
	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// maxBodyBytes caps request bodies; an edit batch is a few KB at most.
const maxBodyBytes = 1 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      *editor.Service
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	identify func(http.Handler) http.Handler
}

// New creates a new Server with all routes configured. Callers are
// attributed to devUserID until SetTailscale is called.
func New(svc *editor.Service, apiKey string, devUserID int, log *slog.Logger) *Server {
	s := &Server{
		svc:      svc,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
		identify: DevIdentity(devUserID),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches caller identification to tailnet WhoIs lookups.
func (s *Server) SetTailscale(identify IdentifyFunc) {
	s.identify = TailscaleIdentity(identify, s.svc.Store(), s.log)
}

// SetMetrics exposes a metrics handler at /metrics.
func (s *Server) SetMetrics(h http.Handler) {
	s.router.Handle("/metrics", h)
}

// SetMCP mounts the MCP server over streamable HTTP at /mcp, behind the same
// identity layer as the REST API. Its tools edit programs, so every /mcp
// request needs the API key when one is configured.
func (s *Server) SetMCP(m *mcpserver.MCPServer) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", lpmcp.HTTPHandler(m, userIDFromContext))
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Get("/programs", s.handleListPrograms)
		r.Get("/programs/{id}", s.handleGetProgram)
		r.Get("/programs/{id}/summary", s.handleProgramSummary)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/edit-logs", s.handleEditLogs)

		// Mutations (API key required when configured)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/programs", s.handleCreateProgram)
			r.Post("/programs/{id}/edits", s.handleApplyEdits)
			r.Post("/exercises", s.handleCreateExercise)
		})
	})
}

// identity defers to whichever identity middleware is current, so
// SetTailscale can run after routes are built.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.identify(next).ServeHTTP(w, r)
	})
}
