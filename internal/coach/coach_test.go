package coach

import (
	"context"
	"errors"

	"github.com/claude/repcoach/internal/llm"
	"github.com/claude/repcoach/internal/models"
)

// fakeLLM scripts upstream responses and records the requests it saw.
type fakeLLM struct {
	completions  []string
	completeErr  error
	transcript   string
	transcribeErr error

	completeReqs []llm.CompletionRequest
	callIdx      int
}

func (f *fakeLLM) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.completeReqs = append(f.completeReqs, req)
	if f.completeErr != nil {
		return "", f.completeErr
	}
	if f.callIdx >= len(f.completions) {
		return "", errors.New("fakeLLM: no scripted completion left")
	}
	out := f.completions[f.callIdx]
	f.callIdx++
	return out, nil
}

func (f *fakeLLM) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	if len(audio) == 0 {
		return "", errors.New("fakeLLM: empty audio")
	}
	return f.transcript, nil
}

var _ llm.Client = (*fakeLLM)(nil)

func testCatalog() []models.Exercise {
	return []models.Exercise{
		{ID: 1, Name: "Barbell Bench Press", Muscles: []string{"chest", "triceps"}},
		{ID: 2, Name: "Back Squat", Muscles: []string{"quads", "glutes"}},
		{ID: 3, Name: "Deadlift", Muscles: []string{"hamstrings", "back"}},
		{ID: 4, Name: "Overhead Press", Muscles: []string{"shoulders"}},
	}
}

const validPlanJSON = `{
  "name": "Strength Base",
  "description": "4-week base block",
  "duration_weeks": 4,
  "days_per_week": 3,
  "difficulty": "intermediate",
  "goals": ["strength"],
  "workouts": [
    {
      "day": "Monday",
      "name": "Push",
      "exercises": [
        {"exercise_id": 1, "exercise_name": "Barbell Bench Press", "sets": 4, "reps": "8-12", "rest": "90s", "primary_muscles": ["chest", "triceps"]}
      ]
    }
  ]
}`
