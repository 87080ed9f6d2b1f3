package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/claude/repcoach/internal/analytics"
	"github.com/claude/repcoach/internal/llm"
	"github.com/claude/repcoach/internal/models"
)

// InsightTypes are generated in this fixed order.
var InsightTypes = []string{"progress", "consistency", "recommendation"}

const (
	insightMaxTokens   = 256
	insightTemperature = 0.6

	// defaultInsightSpacing paces successive model calls so a burst of
	// insight generation doesn't trip upstream rate limits.
	defaultInsightSpacing = 2 * time.Second
)

// InsightGenerator produces short per-type textual insights over a user's
// training history, pacing successive model calls through a rate limiter
// rather than fixed sleeps.
type InsightGenerator struct {
	llm     llm.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewInsightGenerator creates an InsightGenerator. A non-positive spacing
// falls back to the default.
func NewInsightGenerator(client llm.Client, spacing time.Duration, log *slog.Logger) *InsightGenerator {
	if spacing <= 0 {
		spacing = defaultInsightSpacing
	}
	return &InsightGenerator{
		llm:     client,
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
		log:     log.With("component", "insights"),
	}
}

// Generate produces one insight per type over the given trend data. Types
// whose generation fails are skipped with a warning; the remaining types
// still generate. Returns whatever succeeded plus the first error seen, so
// the caller can decide whether a partial batch is acceptable.
func (g *InsightGenerator) Generate(ctx context.Context, sets []models.PerformanceSet) ([]models.Insight, error) {
	trends := analytics.Trends(sets)
	trendJSON, err := json.Marshal(trends)
	if err != nil {
		return nil, err
	}

	var out []models.Insight
	var firstErr error
	for _, insightType := range InsightTypes {
		if err := g.limiter.Wait(ctx); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}

		content, err := g.generateOne(ctx, insightType, string(trendJSON), len(sets))
		if err != nil {
			g.log.Warn("insight generation failed", "type", insightType, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, models.Insight{Type: insightType, Content: content})
	}
	return out, firstErr
}

func (g *InsightGenerator) generateOne(ctx context.Context, insightType, trendJSON string, totalSets int) (string, error) {
	var focus string
	switch insightType {
	case "progress":
		focus = "Summarize the user's strength progress: which lifts moved, by how much, and what stands out."
	case "consistency":
		focus = "Comment on training consistency: session counts per exercise and any gaps."
	case "recommendation":
		focus = "Give one concrete, actionable recommendation for the next training block."
	default:
		return "", fmt.Errorf("unknown insight type %q", insightType)
	}

	system := fmt.Sprintf(
		"You are a strength coach writing one short insight (2-3 sentences, plain text, no markdown) from training data.\n%s\n\nPer-exercise trends (last-minus-first deltas):\n%s\n\nTotal logged sets: %d",
		focus, trendJSON, totalSets)

	content, err := g.llm.Complete(ctx, llm.CompletionRequest{
		System:      system,
		User:        "Write the insight.",
		MaxTokens:   insightMaxTokens,
		Temperature: insightTemperature,
	})
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty insight response")
	}
	return content, nil
}
