// Package analytics computes progress trends and estimated one-rep maxes
// from logged performance sets. Everything here is a pure function over its
// input: no network, no persistence, safe to re-run on the same data.
package analytics

import "github.com/claude/repcoach/internal/models"

// Estimate1RM estimates a one-rep max from a single set using the Epley
// formula over effective reps to failure: reps plus reps in reserve. A set
// of 8 reps at RIR 2 is treated like a 10-rep set to failure. Returns 0
// when the set carries no weight or no rep count (bodyweight or untracked
// sets yield no estimate).
func Estimate1RM(set models.PerformanceSet) float64 {
	if set.Weight == nil || set.Reps == nil {
		return 0
	}
	weight := *set.Weight
	reps := *set.Reps
	if weight <= 0 || reps <= 0 {
		return 0
	}

	effReps := reps
	if set.RIR != nil && *set.RIR > 0 {
		effReps += *set.RIR
	}
	if effReps == 1 {
		return weight
	}
	return weight * (1 + float64(effReps)/30)
}

// Best1RM returns the highest single-set estimate across sets, or 0 when
// no set yields an estimate.
func Best1RM(sets []models.PerformanceSet) float64 {
	var best float64
	for _, s := range sets {
		if est := Estimate1RM(s); est > best {
			best = est
		}
	}
	return best
}
