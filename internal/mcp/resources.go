package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/claude/repcoach/internal/analytics"
	"github.com/claude/repcoach/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) currentPlanResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	record, err := h.ds.GetActivePlan(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNoPlan) {
			return jsonResource(req.Params.URI, map[string]any{"active": false})
		}
		return nil, err
	}
	return jsonResource(req.Params.URI, record)
}

func (h *handlers) exerciseCatalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, exercises)
}

func (h *handlers) trainingSnapshotResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -90)

	sets, err := h.ds.QuerySets(ctx, uid, start, end, "")
	if err != nil {
		return nil, err
	}

	insights, err := h.ds.RecentInsights(ctx, uid, 5)
	if err != nil {
		h.log.Warn("training_snapshot: insights query failed", "error", err)
	}

	snapshot := map[string]any{
		"since":           start.Format("2006-01-02"),
		"trends":          analytics.Trends(sets),
		"total_sets":      len(sets),
		"recent_insights": insights,
	}
	return jsonResource(req.Params.URI, snapshot)
}
