package coach

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/claude/repcoach/internal/llm"
	"github.com/claude/repcoach/internal/models"
)

const (
	generationMaxTokens   = 4096
	generationTemperature = 0.7
)

// Generator turns a free-text request into a structured workout plan via
// the text-generation service, then repairs exercise references against
// the supplied library.
type Generator struct {
	llm llm.Client
	log *slog.Logger
}

// NewGenerator creates a Generator. The llm client is injected so callers
// and tests control the upstream.
func NewGenerator(client llm.Client, log *slog.Logger) *Generator {
	return &Generator{llm: client, log: log.With("component", "generator")}
}

// GenerateRequest carries everything one generation call needs. A non-nil
// CurrentPlan switches the call from create to revise semantics; the model
// is always asked for a complete replacement plan, never a diff.
type GenerateRequest struct {
	Prompt       string
	Exercises    []models.Exercise
	CurrentPlan  *models.WorkoutPlan
	Conversation []models.ConversationTurn
	UserHistory  map[int]ExerciseHistory
}

// Generate builds the system instruction, invokes the model, extracts and
// parses the returned plan, and validates exercise references. It fails
// with *GenerationError on upstream or parse failure and never retries;
// persistence is the caller's responsibility.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*models.WorkoutPlan, error) {
	system := buildSystemPrompt(req.Exercises, req.CurrentPlan, req.Conversation, req.UserHistory)

	raw, err := g.llm.Complete(ctx, llm.CompletionRequest{
		System:      system,
		User:        req.Prompt,
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		return nil, &GenerationError{Reason: "model call", Err: err}
	}

	span, err := extractJSONObject(raw)
	if err != nil {
		g.log.Warn("unparseable generation response", "response_len", len(raw))
		return nil, &GenerationError{Reason: "extracting JSON", Err: err}
	}

	var plan models.WorkoutPlan
	if err := json.Unmarshal([]byte(span), &plan); err != nil {
		return nil, &GenerationError{Reason: "parsing plan JSON", Err: err}
	}
	if err := plan.Validate(); err != nil {
		return nil, &GenerationError{Reason: "incomplete plan", Err: err}
	}

	repaired, err := ValidatePlan(&plan, req.Exercises)
	if err != nil {
		return nil, err
	}

	mode := "create"
	if req.CurrentPlan != nil {
		mode = "revise"
	}
	g.log.Info("plan generated",
		"mode", mode,
		"name", repaired.Name,
		"days", len(repaired.Workouts),
		"difficulty", repaired.Difficulty,
	)
	return repaired, nil
}
