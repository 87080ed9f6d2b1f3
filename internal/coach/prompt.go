package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// ExerciseHistory is what the generator knows about a user's past
// performance on one exercise: the best estimated 1RM and the sets behind
// it. A zero Estimated1RM means no usable history.
type ExerciseHistory struct {
	Estimated1RM float64
	RecentSets   []models.PerformanceSet
}

const planSchemaInstruction = `Respond with a single JSON object and nothing else, using exactly this shape:
{
  "name": string,
  "description": string,
  "duration_weeks": integer,
  "days_per_week": integer,
  "difficulty": "beginner" | "intermediate" | "advanced",
  "goals": [string, ...],
  "workouts": [
    {
      "day": weekday name,
      "name": string,
      "description": string,
      "exercises": [
        {
          "exercise_id": integer (MUST be an id from the exercise library),
          "exercise_name": string (MUST match that exercise's name),
          "sets": integer,
          "reps": string rep range like "8-12",
          "rest": string duration like "90s",
          "suggested_weight": string or null,
          "notes": string or null,
          "primary_muscles": [string, ...]
        }
      ]
    }
  ]
}`

const weightPolicyInstruction = `When suggesting weights for an exercise with a known estimated 1RM:
- target 6-12 reps: suggest 75-80% of the 1RM
- target 3-5 reps: suggest 85-90% of the 1RM
- target 12+ reps: suggest 65-75% of the 1RM
When no 1RM is known, suggest "bodyweight" or "start light" instead of a number.`

// buildSystemPrompt assembles the single system instruction for a
// generation call: exercise catalog (annotated with estimated 1RMs where
// known), prior conversation, and the current plan verbatim when revising.
func buildSystemPrompt(
	exercises []models.Exercise,
	currentPlan *models.WorkoutPlan,
	history []models.ConversationTurn,
	userHistory map[int]ExerciseHistory,
) string {
	var b strings.Builder

	b.WriteString("You are an expert strength coach creating personalized workout plans.\n\n")
	b.WriteString("Available exercises (use ONLY these, referenced by id):\n")
	for _, ex := range exercises {
		fmt.Fprintf(&b, "- id=%d, name=%s, muscles=%s", ex.ID, ex.Name, strings.Join(ex.Muscles, "/"))
		if h, ok := userHistory[ex.ID]; ok && h.Estimated1RM > 0 {
			fmt.Fprintf(&b, ", estimated 1RM=%.1fkg", h.Estimated1RM)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(weightPolicyInstruction)
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Type, turn.Content)
		}
		b.WriteString("\n")
	}

	if currentPlan != nil {
		planJSON, err := json.Marshal(currentPlan)
		if err == nil {
			b.WriteString("The user has an existing plan. Modify it per the request and return the COMPLETE updated plan, not a diff:\n")
			b.Write(planJSON)
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("Create a new complete workout plan for the user's request.\n\n")
	}

	b.WriteString(planSchemaInstruction)
	return b.String()
}

const assessSchemaInstruction = `Respond with a single JSON object and nothing else:
{
  "score": integer 1-10,
  "factors": {"depth": 1-10, "relevance": 1-10, "engagement": 1-10, "clarity": 1-10},
  "suggestions": [string, ...],
  "should_continue": boolean (true if more questions would improve the plan)
}`

// buildAssessPrompt assembles the system instruction for scoring a
// coaching dialogue.
func buildAssessPrompt(history []models.ConversationTurn, avgUserLen float64, questionCount, maxQuestions int, phase string) string {
	var b strings.Builder

	b.WriteString("You are evaluating the quality of a workout-coaching intake dialogue.\n")
	fmt.Fprintf(&b, "Phase: %s. Questions asked: %d of at most %d. Mean user answer length: %.0f characters.\n\n", phase, questionCount, maxQuestions, avgUserLen)

	b.WriteString("Dialogue:\n")
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Type, turn.Content)
	}
	b.WriteString("\n")
	b.WriteString("Rate the dialogue on depth, relevance, engagement, and clarity (1-10 each), give an overall score, and decide whether further questions are worthwhile.\n\n")
	b.WriteString(assessSchemaInstruction)
	return b.String()
}

const voiceExtractionInstruction = `Extract workout set data from the transcript. Respond with ONLY a JSON object of exactly three fields:
{"weight": number or null, "reps": integer or null, "rir": integer or null}
- weight: the weight lifted, as a number (no units)
- reps: the repetitions performed
- rir: reps in reserve; "to failure" means 0
Use null for any field the transcript does not state with confidence. No prose, no markdown.`
