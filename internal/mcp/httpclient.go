package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
)

// HTTPClient implements DataSource by calling the RepCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time checks: HTTPClient satisfies DataSource, and PlanGenerator
// when an API key is configured.
var (
	_ DataSource    = (*HTTPClient)(nil)
	_ PlanGenerator = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is only needed for mutating calls (plan generation); pass "" for
// read-only use.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// getOK is get for endpoints where anything but 200 is an error.
func (c *HTTPClient) getOK(ctx context.Context, path string, params url.Values) ([]byte, error) {
	status, body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	return body, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.getOK(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

// RecentSets reads the exercise history endpoint. The server bounds how many
// sets it returns; the limit is applied client-side on top of that.
func (c *HTTPClient) RecentSets(ctx context.Context, _ int, exerciseID, limit int) ([]models.PerformanceSet, error) {
	path := "/api/v1/exercises/" + strconv.Itoa(exerciseID) + "/history"
	body, err := c.getOK(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	// The history endpoint annotates each set with an estimated 1RM; the
	// embedded set fields decode directly and the annotation is dropped.
	var sets []models.PerformanceSet
	if err := json.Unmarshal(body, &sets); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise history: %w", err)
	}
	if limit > 0 && len(sets) > limit {
		sets = sets[:limit]
	}
	return sets, nil
}

func (c *HTTPClient) QuerySets(ctx context.Context, _ int, start, end time.Time, exerciseFilter string) ([]models.PerformanceSet, error) {
	params := timeParams(start, end)
	if exerciseFilter != "" {
		params.Set("exercise", exerciseFilter)
	}

	body, err := c.getOK(ctx, "/api/v1/sets", params)
	if err != nil {
		return nil, err
	}

	var sets []models.PerformanceSet
	if err := json.Unmarshal(body, &sets); err != nil {
		return nil, fmt.Errorf("httpclient: decode sets: %w", err)
	}
	return sets, nil
}

func (c *HTTPClient) GetActivePlan(ctx context.Context, _ int) (*storage.PlanRecord, error) {
	status, body, err := c.get(ctx, "/api/v1/plans/current", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, storage.ErrNoPlan
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: /api/v1/plans/current returned %d: %s", status, body)
	}

	var record storage.PlanRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return &record, nil
}

// GeneratePlan asks the server to generate and activate a new plan. Requires
// an API key; the server authenticates all mutating endpoints.
func (c *HTTPClient) GeneratePlan(ctx context.Context, _ int, prompt string) (*storage.PlanRecord, error) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/plans/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: /api/v1/plans/generate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("httpclient: /api/v1/plans/generate returned %d: %s", resp.StatusCode, body)
	}

	var record storage.PlanRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("httpclient: decode generated plan: %w", err)
	}
	record.Active = true
	return &record, nil
}

func (c *HTTPClient) RecentInsights(ctx context.Context, _ int, limit int) ([]models.Insight, error) {
	body, err := c.getOK(ctx, "/api/v1/insights", nil)
	if err != nil {
		return nil, err
	}

	var insights []models.Insight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("httpclient: decode insights: %w", err)
	}
	if limit > 0 && len(insights) > limit {
		insights = insights[:limit]
	}
	return insights, nil
}
