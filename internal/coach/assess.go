package coach

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/claude/repcoach/internal/llm"
	"github.com/claude/repcoach/internal/models"
)

const (
	assessMaxTokens   = 512
	assessTemperature = 0.3

	neutralScore = 6
)

// Assessor scores an ongoing coaching dialogue and recommends whether to
// keep asking questions or proceed to plan generation.
type Assessor struct {
	llm llm.Client
	log *slog.Logger
}

// NewAssessor creates an Assessor.
func NewAssessor(client llm.Client, log *slog.Logger) *Assessor {
	return &Assessor{llm: client, log: log.With("component", "assessor")}
}

// AssessContext describes where in the intake flow the dialogue stands.
type AssessContext struct {
	QuestionCount int
	MaxQuestions  int
	Phase         string
}

// neutralAssessment is returned whenever assessment cannot complete. The
// dialogue must never stall on a failed assessment, so the default keeps
// it going.
func neutralAssessment() models.QualityAssessment {
	return models.QualityAssessment{
		Score: neutralScore,
		Factors: models.AssessmentFactors{
			Depth:      neutralScore,
			Relevance:  neutralScore,
			Engagement: neutralScore,
			Clarity:    neutralScore,
		},
		ShouldContinue: true,
	}
}

// Assess rates the dialogue 1-10 across depth, relevance, engagement, and
// clarity. Mean user-turn length is computed locally and fed to the model
// as a cheap signal. Assess never returns an error: any upstream or parse
// failure degrades to the fixed neutral default.
func (a *Assessor) Assess(ctx context.Context, history []models.ConversationTurn, actx AssessContext) models.QualityAssessment {
	var userChars, userTurns int
	for _, turn := range history {
		if turn.Type == "user" {
			userChars += len(turn.Content)
			userTurns++
		}
	}
	var avgLen float64
	if userTurns > 0 {
		avgLen = float64(userChars) / float64(userTurns)
	}

	system := buildAssessPrompt(history, avgLen, actx.QuestionCount, actx.MaxQuestions, actx.Phase)

	raw, err := a.llm.Complete(ctx, llm.CompletionRequest{
		System:      system,
		User:        "Assess the dialogue.",
		MaxTokens:   assessMaxTokens,
		Temperature: assessTemperature,
	})
	if err != nil {
		a.log.Warn("assessment call failed, using neutral default", "error", err)
		return neutralAssessment()
	}

	span, err := extractJSONObject(raw)
	if err != nil {
		a.log.Warn("assessment response unparseable, using neutral default")
		return neutralAssessment()
	}

	var result models.QualityAssessment
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		a.log.Warn("assessment JSON invalid, using neutral default", "error", err)
		return neutralAssessment()
	}
	if !validRating(result.Score) ||
		!validRating(result.Factors.Depth) || !validRating(result.Factors.Relevance) ||
		!validRating(result.Factors.Engagement) || !validRating(result.Factors.Clarity) {
		a.log.Warn("assessment ratings out of range, using neutral default", "score", result.Score)
		return neutralAssessment()
	}
	return result
}

func validRating(v int) bool { return v >= 1 && v <= 10 }
