package models

import (
	"fmt"
	"strings"
)

// Difficulty levels accepted in a generated plan.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// WorkoutPlan is a complete training program. Plans are produced wholesale:
// a revision replaces the entire plan, never patches part of one.
type WorkoutPlan struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	DurationWeeks int       `json:"duration_weeks"`
	DaysPerWeek   int       `json:"days_per_week"`
	Difficulty    string    `json:"difficulty"`
	Goals         []string  `json:"goals"`
	Workouts      []DayPlan `json:"workouts"`
}

// DayPlan is one training day within a plan.
type DayPlan struct {
	Day         string            `json:"day"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Exercises   []PlannedExercise `json:"exercises"`
	Modules     []WorkoutModule   `json:"modules,omitempty"`
}

// WorkoutModule groups a day's exercises into warmup/main/core/cooldown
// sections when the generator chooses to structure a day that way.
type WorkoutModule struct {
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Exercises []PlannedExercise `json:"exercises,omitempty"`
}

// PlannedExercise is one prescribed exercise within a day. After
// validation, ExerciseID always references a library exercise and
// ExerciseName matches that exercise's name exactly.
type PlannedExercise struct {
	ExerciseID      int      `json:"exercise_id"`
	ExerciseName    string   `json:"exercise_name"`
	Sets            int      `json:"sets"`
	Reps            string   `json:"reps"`
	Rest            string   `json:"rest"`
	SuggestedWeight *string  `json:"suggested_weight,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	PrimaryMuscles  []string `json:"primary_muscles,omitempty"`
}

// Validate checks the top-level fields a parsed plan must carry. It does
// not check exercise references; that is the validator's job.
func (p *WorkoutPlan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plan missing name")
	}
	if len(p.Workouts) == 0 {
		return fmt.Errorf("plan has no workout days")
	}
	if p.DurationWeeks <= 0 {
		return fmt.Errorf("plan missing duration_weeks")
	}
	if p.DaysPerWeek <= 0 {
		return fmt.Errorf("plan missing days_per_week")
	}
	switch p.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return fmt.Errorf("plan has unknown difficulty %q", p.Difficulty)
	}
	return nil
}

// EachExercise calls fn for every planned exercise in every day, including
// exercises nested inside modules. fn receives a pointer so callers can
// repair entries in place.
func (p *WorkoutPlan) EachExercise(fn func(*PlannedExercise)) {
	for di := range p.Workouts {
		day := &p.Workouts[di]
		for ei := range day.Exercises {
			fn(&day.Exercises[ei])
		}
		for mi := range day.Modules {
			mod := &day.Modules[mi]
			for ei := range mod.Exercises {
				fn(&mod.Exercises[ei])
			}
		}
	}
}
