package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/testutil"
	"github.com/mark3labs/mcp-go/mcp"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// readOnlySource is a DataSource with no data and no mutating capabilities.
type readOnlySource struct{}

func (readOnlySource) ListExercises(context.Context) ([]models.Exercise, error) { return nil, nil }
func (readOnlySource) RecentSets(context.Context, int, int, int) ([]models.PerformanceSet, error) {
	return nil, nil
}
func (readOnlySource) QuerySets(context.Context, int, time.Time, time.Time, string) ([]models.PerformanceSet, error) {
	return nil, nil
}
func (readOnlySource) GetActivePlan(context.Context, int) (*storage.PlanRecord, error) {
	return nil, storage.ErrNoPlan
}
func (readOnlySource) RecentInsights(context.Context, int, int) ([]models.Insight, error) {
	return nil, nil
}

// generatingSource adds the plan generation capability on top of readOnlySource.
type generatingSource struct {
	readOnlySource
	prompt string
}

func (g *generatingSource) GeneratePlan(_ context.Context, _ int, prompt string) (*storage.PlanRecord, error) {
	g.prompt = prompt
	return &storage.PlanRecord{Active: true, Plan: models.WorkoutPlan{Name: "Generated"}}, nil
}

func toolCallText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func generatePlanRequest(prompt string) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "generate_plan"
	req.Params.Arguments = map[string]any{"prompt": prompt}
	return req
}

// TestGeneratePlanToolUnavailable verifies that a data source without plan
// generation reports the capability as unavailable instead of erroring hard.
func TestGeneratePlanToolUnavailable(t *testing.T) {
	h := &handlers{ds: readOnlySource{}, log: testutil.Logger()}

	result, err := h.generatePlan(context.Background(), generatePlanRequest("push/pull/legs"))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected an error result")
	}
	if text := toolCallText(t, result); !strings.Contains(text, "not available") {
		t.Errorf("error text = %q, want mention of unavailability", text)
	}
}

// TestGeneratePlanToolDelegates verifies the prompt reaches the generator and
// the created plan comes back as JSON.
func TestGeneratePlanToolDelegates(t *testing.T) {
	src := &generatingSource{}
	h := &handlers{ds: src, log: testutil.Logger()}

	result, err := h.generatePlan(context.Background(), generatePlanRequest("push/pull/legs"))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolCallText(t, result))
	}
	if src.prompt != "push/pull/legs" {
		t.Errorf("prompt = %q", src.prompt)
	}
	if text := toolCallText(t, result); !strings.Contains(text, "Generated") {
		t.Errorf("result = %q, want generated plan name", text)
	}
}

// TestDefaultTimeRange verifies time range defaults (last 90 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to last 90 days
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 2159 || diff.Hours() > 2161 { // ~2160 hours = 90 days
		t.Errorf("default range = %.0f hours, want ~2160", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2026 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2026-01-01", start)
	}
	if end.Year() != 2026 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2026-01-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2026-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "")
	if err == nil {
		t.Error("expected error for invalid date")
	}
}
