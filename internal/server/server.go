package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/fitforge/internal/catalog"
	"github.com/meltforce/fitforge/internal/mcp"
	"github.com/meltforce/fitforge/internal/overload"
	"github.com/meltforce/fitforge/internal/progress"
	"github.com/meltforce/fitforge/internal/storage"
	"github.com/meltforce/fitforge/internal/workout"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db         *storage.DB
	manager    *workout.Manager
	catalog    *catalog.Catalog
	aggregator *progress.Aggregator
	engine     *overload.Engine
	log        *slog.Logger
	apiKey     string
	lc         *local.Client
	router     chi.Router
}

// New creates a new Server with all routes configured. When lc is non-nil,
// request identity is resolved through the tailnet WhoIs lookup; otherwise
// every request maps to the local dev user.
func New(db *storage.DB, manager *workout.Manager, cat *catalog.Catalog,
	aggregator *progress.Aggregator, engine *overload.Engine,
	apiKey string, lc *local.Client, log *slog.Logger) *Server {
	s := &Server{
		db:         db,
		manager:    manager,
		catalog:    cat,
		aggregator: aggregator,
		engine:     engine,
		log:        log,
		apiKey:     apiKey,
		lc:         lc,
		router:     chi.NewRouter(),
	}
	s.routes()
	return s
}

// MountMCP attaches the MCP streamable HTTP transport under /mcp. The mounted
// handler sits behind the identity middleware, so tool calls are scoped to
// the resolved user. Must be called before the server accepts requests.
func (s *Server) MountMCP(m *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(m,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return mcp.WithUserID(ctx, userIDFromContext(r))
		}),
	)
	s.router.Mount("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	if s.lc != nil {
		s.router.Use(TailscaleIdentity(s.lc, s.db, s.log))
	} else {
		s.router.Use(DevIdentity(s.db, s.log))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		// Session lifecycle (API key required when configured)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/sessions", s.handleStartSession)
			r.Post("/sessions/{id}/sets", s.handleLogSet)
			r.Delete("/sessions/{id}/sets/{exercise}/{set}", s.handleDeleteSet)
			r.Post("/sessions/{id}/complete", s.handleCompleteSession)
			r.Post("/sessions/{id}/abandon", s.handleAbandonSession)
			r.Post("/bodystats", s.handleCreateBodyStats)
		})

		// Read surfaces
		r.Get("/sessions", s.handleQuerySessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Get("/bodystats", s.handleQueryBodyStats)
		r.Get("/progress/records", s.handlePersonalRecord)
		r.Get("/progress/volume", s.handleVolumeTrend)
		r.Get("/progress/recovery", s.handleRecovery)
		r.Get("/recommendations", s.handleRecommendation)
		r.Get("/export", s.handleExport)
		r.Get("/stats", s.handleStats)
	})
}
