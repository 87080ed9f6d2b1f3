package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercise is one entry in the exercise library. The library is immutable
// reference data: components read it, nothing mutates it mid-request.
type Exercise struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Muscles []string `json:"muscles"`
}

// PerformanceSet is one logged set. Weight is in kg. A nil RIR means the
// user didn't track it; RIR 0 means the set was taken to failure.
type PerformanceSet struct {
	ID           uuid.UUID `json:"id"`
	UserID       int       `json:"user_id"`
	ExerciseID   int       `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Weight       *float64  `json:"weight"`
	Reps         *int      `json:"reps"`
	RIR          *int      `json:"rir"`
	PerformedAt  time.Time `json:"performed_at"`
}

// ConversationTurn is one message in a coaching dialogue. Type is either
// "user" or "assistant".
type ConversationTurn struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AssessmentFactors are the per-dimension dialogue ratings, each 1-10.
type AssessmentFactors struct {
	Depth      int `json:"depth"`
	Relevance  int `json:"relevance"`
	Engagement int `json:"engagement"`
	Clarity    int `json:"clarity"`
}

// QualityAssessment is the result of scoring a coaching dialogue.
type QualityAssessment struct {
	Score          int               `json:"score"`
	Factors        AssessmentFactors `json:"factors"`
	Suggestions    []string          `json:"suggestions,omitempty"`
	ShouldContinue bool              `json:"should_continue"`
}

// WorkoutData is the structured payload extracted from a voice set-log.
// Each field is independently nullable: null means the transcript didn't
// state it with confidence.
type WorkoutData struct {
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
	RIR    *int     `json:"rir"`
}

// VoiceLogResult pairs the raw transcript with the extracted set data.
type VoiceLogResult struct {
	Transcription string      `json:"transcription"`
	WorkoutData   WorkoutData `json:"workout_data"`
}

// Insight is one generated coaching insight of a given type
// (progress, consistency, recommendation).
type Insight struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
