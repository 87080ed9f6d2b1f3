package coach

import (
	"reflect"
	"testing"

	"github.com/claude/repcoach/internal/models"
)

func planWith(exercises ...models.PlannedExercise) *models.WorkoutPlan {
	return &models.WorkoutPlan{
		Name: "Test", DurationWeeks: 4, DaysPerWeek: 3,
		Difficulty: models.DifficultyIntermediate,
		Workouts: []models.DayPlan{
			{Day: "Monday", Name: "Day 1", Exercises: exercises},
		},
	}
}

// TestValidatePostcondition verifies that after validation every exercise
// id in the plan, across all days and modules, exists in the catalog.
func TestValidatePostcondition(t *testing.T) {
	catalog := testCatalog()
	plan := &models.WorkoutPlan{
		Name: "Test", DurationWeeks: 4, DaysPerWeek: 2,
		Difficulty: models.DifficultyBeginner,
		Workouts: []models.DayPlan{
			{
				Day: "Monday", Name: "A",
				Exercises: []models.PlannedExercise{
					{ExerciseID: 1, ExerciseName: "Barbell Bench Press"},
					{ExerciseID: 99, ExerciseName: "Mystery Movement"},
				},
				Modules: []models.WorkoutModule{
					{Type: "warmup", Name: "Warmup", Exercises: []models.PlannedExercise{
						{ExerciseID: 42, ExerciseName: "Squat Jump"},
					}},
				},
			},
			{
				Day: "Thursday", Name: "B",
				Exercises: []models.PlannedExercise{
					{ExerciseID: -5, ExerciseName: ""},
				},
			},
		},
	}

	got, err := ValidatePlan(plan, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	valid := map[int]bool{}
	for _, ex := range catalog {
		valid[ex.ID] = true
	}
	got.EachExercise(func(pe *models.PlannedExercise) {
		if !valid[pe.ExerciseID] {
			t.Errorf("exercise id %d not in catalog after validation", pe.ExerciseID)
		}
	})
}

// TestValidateFirstWordRepair verifies an unknown id is repaired to the
// first catalog exercise whose name contains the first word of the
// generated name.
func TestValidateFirstWordRepair(t *testing.T) {
	plan := planWith(models.PlannedExercise{ExerciseID: 77, ExerciseName: "Squat with pause"})

	got, err := ValidatePlan(plan, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pe := got.Workouts[0].Exercises[0]
	if pe.ExerciseID != 2 {
		t.Errorf("exercise id = %d, want 2 (Back Squat)", pe.ExerciseID)
	}
	if pe.ExerciseName != "Back Squat" {
		t.Errorf("exercise name = %q, want %q", pe.ExerciseName, "Back Squat")
	}
	if !reflect.DeepEqual(pe.PrimaryMuscles, []string{"quads", "glutes"}) {
		t.Errorf("primary muscles = %v, want quads/glutes", pe.PrimaryMuscles)
	}
}

// TestValidateCaseInsensitiveRepair verifies the substring match ignores case.
func TestValidateCaseInsensitiveRepair(t *testing.T) {
	plan := planWith(models.PlannedExercise{ExerciseID: 77, ExerciseName: "DEADLIFT variation"})

	got, err := ValidatePlan(plan, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Workouts[0].Exercises[0].ExerciseID != 3 {
		t.Errorf("exercise id = %d, want 3 (Deadlift)", got.Workouts[0].Exercises[0].ExerciseID)
	}
}

// TestValidateFallbackToFirst verifies that when no name matches, the first
// catalog exercise is substituted.
func TestValidateFallbackToFirst(t *testing.T) {
	plan := planWith(models.PlannedExercise{ExerciseID: 77, ExerciseName: "Zercher Hold"})

	got, err := ValidatePlan(plan, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pe := got.Workouts[0].Exercises[0]
	if pe.ExerciseID != 1 || pe.ExerciseName != "Barbell Bench Press" {
		t.Errorf("fallback = (%d, %q), want first catalog exercise", pe.ExerciseID, pe.ExerciseName)
	}
}

// TestValidateTieBreakCatalogOrder verifies that when several exercises
// contain the first word, the earliest in catalog order wins.
func TestValidateTieBreakCatalogOrder(t *testing.T) {
	catalog := []models.Exercise{
		{ID: 10, Name: "Incline Press", Muscles: []string{"chest"}},
		{ID: 11, Name: "Leg Press", Muscles: []string{"quads"}},
	}
	plan := planWith(models.PlannedExercise{ExerciseID: 99, ExerciseName: "Press something"})

	got, err := ValidatePlan(plan, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Workouts[0].Exercises[0].ExerciseID != 10 {
		t.Errorf("exercise id = %d, want 10 (first in catalog order)", got.Workouts[0].Exercises[0].ExerciseID)
	}
}

// TestValidateIdempotent verifies an already-valid plan passes through
// unchanged.
func TestValidateIdempotent(t *testing.T) {
	plan := planWith(models.PlannedExercise{
		ExerciseID: 2, ExerciseName: "Back Squat", Sets: 5, Reps: "3-5", Rest: "180s",
		PrimaryMuscles: []string{"quads", "glutes"},
	})

	once, err := ValidatePlan(plan, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot := *once
	twice, err := ValidatePlan(once, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(&snapshot, twice) {
		t.Errorf("second validation changed the plan:\n first: %+v\nsecond: %+v", snapshot, *twice)
	}
}

// TestValidateEmptyCatalog verifies the one hard failure mode: nothing to
// repair against.
func TestValidateEmptyCatalog(t *testing.T) {
	plan := planWith(models.PlannedExercise{ExerciseID: 1, ExerciseName: "Anything"})
	if _, err := ValidatePlan(plan, nil); err != ErrEmptyCatalog {
		t.Errorf("err = %v, want ErrEmptyCatalog", err)
	}
}
