package mcp

import (
	"context"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	RecentSets(ctx context.Context, userID, exerciseID, limit int) ([]models.PerformanceSet, error)
	QuerySets(ctx context.Context, userID int, start, end time.Time, exerciseFilter string) ([]models.PerformanceSet, error)
	GetActivePlan(ctx context.Context, userID int) (*storage.PlanRecord, error)
	RecentInsights(ctx context.Context, userID, limit int) ([]models.Insight, error)
}

// PlanGenerator is the optional mutating capability behind the
// generate_plan tool. A DataSource that also implements it gets the tool;
// one that doesn't reports the capability as unavailable at call time.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, userID int, prompt string) (*storage.PlanRecord, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
