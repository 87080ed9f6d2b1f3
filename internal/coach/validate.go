package coach

import (
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// ValidatePlan ensures every planned exercise references a real library
// exercise. Unknown references are repaired in order: first an exercise
// whose name contains the first word of the generated name
// (case-insensitive, first match in catalog order), then the first catalog
// exercise as a last resort. On repair the id, name, and muscle list are
// all overwritten from the matched exercise.
//
// This is best-effort: a substituted exercise may not hit the intended
// muscle group. What it does guarantee is that the returned plan is safe
// to persist and render without lookup failures. Running it on an
// already-valid plan changes nothing.
func ValidatePlan(plan *models.WorkoutPlan, exercises []models.Exercise) (*models.WorkoutPlan, error) {
	if len(exercises) == 0 {
		return nil, ErrEmptyCatalog
	}

	byID := make(map[int]models.Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}

	plan.EachExercise(func(pe *models.PlannedExercise) {
		if ex, ok := byID[pe.ExerciseID]; ok {
			// Keep the id, but make sure the name matches the library exactly.
			if pe.ExerciseName != ex.Name {
				pe.ExerciseName = ex.Name
				pe.PrimaryMuscles = append([]string(nil), ex.Muscles...)
			}
			return
		}

		match, ok := matchByFirstWord(pe.ExerciseName, exercises)
		if !ok {
			match = exercises[0]
		}
		pe.ExerciseID = match.ID
		pe.ExerciseName = match.Name
		pe.PrimaryMuscles = append([]string(nil), match.Muscles...)
	})

	return plan, nil
}

// matchByFirstWord finds the first catalog exercise whose name contains the
// first word of the generated name, case-insensitively. Catalog order
// breaks ties.
func matchByFirstWord(generated string, exercises []models.Exercise) (models.Exercise, bool) {
	fields := strings.Fields(generated)
	if len(fields) == 0 {
		return models.Exercise{}, false
	}
	firstWord := strings.ToLower(fields[0])

	for _, ex := range exercises {
		if strings.Contains(strings.ToLower(ex.Name), firstWord) {
			return ex, true
		}
	}
	return models.Exercise{}, false
}
