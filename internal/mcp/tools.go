package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/repcoach/internal/analytics"
	"github.com/claude/repcoach/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 90 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -90)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetExercises = mcp.NewTool("get_exercises",
	mcp.WithDescription("List the exercise library. Returns each exercise's id, canonical name, and primary muscles."),
)

var toolGetRecentSets = mcp.NewTool("get_recent_sets",
	mcp.WithDescription("Retrieve the most recent logged sets for one exercise, newest first. Each set includes weight, reps, RIR (reps in reserve), and an estimated one-rep max."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise id from the library")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sets to return. Defaults to 10.")),
)

var toolGetSets = mcp.NewTool("get_sets",
	mcp.WithDescription("Query logged sets across all exercises over a time range, oldest first."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetExerciseTrends = mcp.NewTool("get_exercise_trends",
	mcp.WithDescription("Per-exercise progress over a time range: weight, rep, and estimated 1RM deltas between the earliest and latest session. Exercises with fewer than two logged sessions are excluded."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match)")),
)

var toolGetOneRepMax = mcp.NewTool("get_one_rep_max",
	mcp.WithDescription("Estimated one-rep max for one exercise, derived from recent logged sets. Returns the best estimate plus the per-set estimates behind it."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise id from the library")),
)

var toolGetCurrentPlan = mcp.NewTool("get_current_plan",
	mcp.WithDescription("The user's active workout plan: training days, exercises, set/rep prescriptions, and suggested weights."),
)

var toolGetInsights = mcp.NewTool("get_insights",
	mcp.WithDescription("Recent coaching insights (progress, consistency, recommendation), newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of insights to return. Defaults to 10.")),
)

var toolGeneratePlan = mcp.NewTool("generate_plan",
	mcp.WithDescription("Generate a new workout plan from a natural-language prompt. Replaces the user's active plan. Takes several seconds."),
	mcp.WithString("prompt", mcp.Required(), mcp.Description("What the plan should achieve (goals, schedule, constraints)")),
)

// --- Tool handlers ---

func (h *handlers) getExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp get_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	limit := req.GetInt("limit", 10)

	uid := UserIDFromContext(ctx)
	sets, err := h.ds.RecentSets(ctx, uid, exerciseID, limit)
	if err != nil {
		h.log.Error("mcp get_recent_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	type annotatedSet struct {
		Set          any     `json:"set"`
		Estimated1RM float64 `json:"estimated_1rm"`
	}
	out := make([]annotatedSet, 0, len(sets))
	for _, s := range sets {
		out = append(out, annotatedSet{Set: s, Estimated1RM: analytics.Estimate1RM(s)})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	sets, err := h.ds.QuerySets(ctx, uid, start, end, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseTrends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	sets, err := h.ds.QuerySets(ctx, uid, start, end, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_exercise_trends", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(analytics.Trends(sets))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getOneRepMax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	sets, err := h.ds.RecentSets(ctx, uid, exerciseID, 10)
	if err != nil {
		h.log.Error("mcp get_one_rep_max", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	estimates := make([]float64, 0, len(sets))
	for _, s := range sets {
		estimates = append(estimates, analytics.Estimate1RM(s))
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise_id":       exerciseID,
		"estimated_1rm":     analytics.Best1RM(sets),
		"per_set_estimates": estimates,
		"sets_considered":   len(sets),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCurrentPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	record, err := h.ds.GetActivePlan(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNoPlan) {
			return mcp.NewToolResultText("No active workout plan."), nil
		}
		h.log.Error("mcp get_current_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(record)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) generatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("prompt parameter is required"), nil
	}

	gen, ok := h.ds.(PlanGenerator)
	if !ok {
		return mcp.NewToolResultError("plan generation is not available on this data source"), nil
	}

	uid := UserIDFromContext(ctx)
	record, err := gen.GeneratePlan(ctx, uid, prompt)
	if err != nil {
		h.log.Error("mcp generate_plan", "error", err)
		return mcp.NewToolResultError("generation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(record)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)

	uid := UserIDFromContext(ctx)
	insights, err := h.ds.RecentInsights(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_insights", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(insights)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
