package mcp

import (
	"context"
	"log/slog"

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

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitForge", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitForge workout tracking server. Query sessions, personal records, volume trends, muscle recovery, and progressive overload recommendations. All data is scoped to the authenticated user. Tools are read-only; sets are logged through the app, not through MCP."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetPersonalRecord, Handler: h.getPersonalRecord},
		server.ServerTool{Tool: toolGetVolumeTrend, Handler: h.getVolumeTrend},
		server.ServerTool{Tool: toolGetRecoveryState, Handler: h.getRecoveryState},
		server.ServerTool{Tool: toolGetRecommendation, Handler: h.getRecommendation},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"fitforge://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Workout sessions from the last 14 days, including logged sets"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"fitforge://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All known exercises with equipment type and muscle engagement percentages"),
	mcp.WithMIMEType("application/json"),
)
