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
	s := server.NewMCPServer("RepCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepCoach strength training server. Query the exercise library, logged sets, per-exercise trends, estimated one-rep maxes, the active workout plan, and coaching insights. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetExercises, Handler: h.getExercises},
		server.ServerTool{Tool: toolGetRecentSets, Handler: h.getRecentSets},
		server.ServerTool{Tool: toolGetSets, Handler: h.getSets},
		server.ServerTool{Tool: toolGetExerciseTrends, Handler: h.getExerciseTrends},
		server.ServerTool{Tool: toolGetOneRepMax, Handler: h.getOneRepMax},
		server.ServerTool{Tool: toolGetCurrentPlan, Handler: h.getCurrentPlan},
		server.ServerTool{Tool: toolGetInsights, Handler: h.getInsights},
		server.ServerTool{Tool: toolGeneratePlan, Handler: h.generatePlan},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentPlan, Handler: h.currentPlanResource},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalogResource},
		server.ServerResource{Resource: resTrainingSnapshot, Handler: h.trainingSnapshotResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentPlan = mcp.NewResource(
	"repcoach://current_plan",
	"Current Workout Plan",
	mcp.WithResourceDescription("The user's active workout plan with all training days and exercises"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"repcoach://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises in the library with their primary muscles"),
	mcp.WithMIMEType("application/json"),
)

var resTrainingSnapshot = mcp.NewResource(
	"repcoach://training_snapshot",
	"Training Snapshot",
	mcp.WithResourceDescription("Per-exercise trends over the last 90 days plus recent coaching insights"),
	mcp.WithMIMEType("application/json"),
)
