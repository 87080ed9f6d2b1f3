package analytics

import (
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func set(name string, day int, weight float64, reps, rir int) models.PerformanceSet {
	s := models.PerformanceSet{
		ExerciseName: name,
		Weight:       fptr(weight),
		Reps:         iptr(reps),
		PerformedAt:  time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC),
	}
	if rir >= 0 {
		s.RIR = iptr(rir)
	}
	return s
}

// TestTrendsSingleRecordExcluded verifies an exercise with exactly one
// recorded set does not appear in the output at all.
func TestTrendsSingleRecordExcluded(t *testing.T) {
	out := Trends([]models.PerformanceSet{set("Bench Press", 1, 100, 8, -1)})
	if len(out) != 0 {
		t.Fatalf("got %d trends, want 0 for single-record exercise", len(out))
	}
}

// TestTrendsWeightDelta verifies the last-minus-first weight delta for a
// two-record series [100, 110] is exactly 10.
func TestTrendsWeightDelta(t *testing.T) {
	out := Trends([]models.PerformanceSet{
		set("Bench Press", 1, 100, 8, -1),
		set("Bench Press", 8, 110, 8, -1),
	})
	if len(out) != 1 {
		t.Fatalf("got %d trends, want 1", len(out))
	}
	if out[0].WeightChange != 10 {
		t.Errorf("weight change = %v, want 10", out[0].WeightChange)
	}
	if out[0].Sessions != 2 {
		t.Errorf("sessions = %d, want 2", out[0].Sessions)
	}
}

// TestTrendsUnsortedInput verifies records arriving out of date order are
// sorted ascending before the delta is taken.
func TestTrendsUnsortedInput(t *testing.T) {
	out := Trends([]models.PerformanceSet{
		set("Squat", 20, 140, 5, -1),
		set("Squat", 1, 120, 5, -1),
		set("Squat", 10, 130, 5, -1),
	})
	if len(out) != 1 {
		t.Fatalf("got %d trends, want 1", len(out))
	}
	if out[0].WeightChange != 20 {
		t.Errorf("weight change = %v, want 20 (first=120 last=140)", out[0].WeightChange)
	}
	if out[0].Sessions != 3 {
		t.Errorf("sessions = %d, want 3", out[0].Sessions)
	}
}

// TestTrendsRepsAndEst1RM verifies reps delta and estimated 1RM delta are
// both reported for a progressing exercise.
func TestTrendsRepsAndEst1RM(t *testing.T) {
	out := Trends([]models.PerformanceSet{
		set("Deadlift", 1, 100, 5, 0),
		set("Deadlift", 15, 100, 8, 0),
	})
	if len(out) != 1 {
		t.Fatalf("got %d trends, want 1", len(out))
	}
	if out[0].RepsChange != 3 {
		t.Errorf("reps change = %d, want 3", out[0].RepsChange)
	}
	// Epley at RIR 0: 100*(1+5/30) -> 100*(1+8/30), delta = 10
	want := 100*(1+8.0/30) - 100*(1+5.0/30)
	if diff := out[0].Est1RMChange - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("est 1RM change = %v, want %v", out[0].Est1RMChange, want)
	}
}

// TestTrendsMultipleExercises verifies grouping keeps exercises independent
// and output order is stable (sorted by name).
func TestTrendsMultipleExercises(t *testing.T) {
	out := Trends([]models.PerformanceSet{
		set("Squat", 1, 120, 5, -1),
		set("Bench Press", 1, 80, 8, -1),
		set("Squat", 8, 125, 5, -1),
		set("Bench Press", 8, 85, 8, -1),
		set("Overhead Press", 3, 50, 6, -1), // single record: excluded
	})
	if len(out) != 2 {
		t.Fatalf("got %d trends, want 2", len(out))
	}
	if out[0].Exercise != "Bench Press" || out[1].Exercise != "Squat" {
		t.Errorf("order = [%s, %s], want [Bench Press, Squat]", out[0].Exercise, out[1].Exercise)
	}
}

// TestTrendsIdempotent verifies re-running on the same input produces the
// same result and does not mutate the caller's slice ordering expectations.
func TestTrendsIdempotent(t *testing.T) {
	input := []models.PerformanceSet{
		set("Row", 1, 60, 10, -1),
		set("Row", 5, 65, 10, -1),
	}
	a := Trends(input)
	b := Trends(input)
	if len(a) != 1 || len(b) != 1 || a[0] != b[0] {
		t.Errorf("Trends not idempotent: %+v vs %+v", a, b)
	}
}
