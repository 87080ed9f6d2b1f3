package analytics

import (
	"testing"

	"github.com/claude/repcoach/internal/models"
)

// TestEstimate1RMEpley verifies the Epley estimate for a plain set taken
// to failure (RIR 0).
func TestEstimate1RMEpley(t *testing.T) {
	s := models.PerformanceSet{Weight: fptr(100), Reps: iptr(10), RIR: iptr(0)}
	want := 100 * (1 + 10.0/30)
	if got := Estimate1RM(s); got != want {
		t.Errorf("Estimate1RM = %v, want %v", got, want)
	}
}

// TestEstimate1RMWithRIR verifies reps in reserve extend the effective rep
// count: 8 reps at RIR 2 estimates like 10 reps to failure.
func TestEstimate1RMWithRIR(t *testing.T) {
	withRIR := models.PerformanceSet{Weight: fptr(100), Reps: iptr(8), RIR: iptr(2)}
	toFailure := models.PerformanceSet{Weight: fptr(100), Reps: iptr(10), RIR: iptr(0)}
	if a, b := Estimate1RM(withRIR), Estimate1RM(toFailure); a != b {
		t.Errorf("8 reps @ RIR 2 = %v, 10 reps @ RIR 0 = %v; want equal", a, b)
	}
}

// TestEstimate1RMSingleRep verifies a true single is its own max.
func TestEstimate1RMSingleRep(t *testing.T) {
	s := models.PerformanceSet{Weight: fptr(180), Reps: iptr(1), RIR: iptr(0)}
	if got := Estimate1RM(s); got != 180 {
		t.Errorf("Estimate1RM = %v, want 180", got)
	}
}

// TestEstimate1RMMissingData verifies bodyweight or untracked sets yield no
// estimate rather than a bogus number.
func TestEstimate1RMMissingData(t *testing.T) {
	cases := []struct {
		name string
		set  models.PerformanceSet
	}{
		{"no weight", models.PerformanceSet{Reps: iptr(12)}},
		{"no reps", models.PerformanceSet{Weight: fptr(60)}},
		{"zero weight", models.PerformanceSet{Weight: fptr(0), Reps: iptr(10)}},
	}
	for _, tc := range cases {
		if got := Estimate1RM(tc.set); got != 0 {
			t.Errorf("%s: Estimate1RM = %v, want 0", tc.name, got)
		}
	}
}

// TestBest1RM verifies the best estimate across a session's sets wins.
func TestBest1RM(t *testing.T) {
	sets := []models.PerformanceSet{
		{Weight: fptr(100), Reps: iptr(10), RIR: iptr(0)},
		{Weight: fptr(120), Reps: iptr(3), RIR: iptr(0)},
		{Reps: iptr(15)}, // bodyweight, no estimate
	}
	want := 120 * (1 + 3.0/30)
	if got := Best1RM(sets); got != want {
		t.Errorf("Best1RM = %v, want %v", got, want)
	}
}

// TestBest1RMEmpty verifies no sets means no estimate.
func TestBest1RMEmpty(t *testing.T) {
	if got := Best1RM(nil); got != 0 {
		t.Errorf("Best1RM(nil) = %v, want 0", got)
	}
}
