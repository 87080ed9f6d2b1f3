package analytics

import (
	"sort"

	"github.com/claude/repcoach/internal/models"
)

// ExerciseTrend is the first-to-last progress delta for one exercise.
type ExerciseTrend struct {
	Exercise     string  `json:"exercise"`
	WeightChange float64 `json:"weight_change"`
	RepsChange   int     `json:"reps_change"`
	Est1RMChange float64 `json:"est_1rm_change"`
	Sessions     int     `json:"sessions"`
}

// Trends groups sets by exercise name, orders each group by date ascending,
// and reports last-minus-first deltas for weight, reps, and estimated 1RM.
// Exercises with fewer than two recorded sets are excluded entirely: a
// single data point is insufficient data, not zero change. Output is sorted
// by exercise name for stable rendering.
func Trends(sets []models.PerformanceSet) []ExerciseTrend {
	groups := make(map[string][]models.PerformanceSet)
	for _, s := range sets {
		groups[s.ExerciseName] = append(groups[s.ExerciseName], s)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ExerciseTrend
	for _, name := range names {
		group := groups[name]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PerformedAt.Before(group[j].PerformedAt)
		})

		first, last := group[0], group[len(group)-1]
		trend := ExerciseTrend{
			Exercise:     name,
			Est1RMChange: Estimate1RM(last) - Estimate1RM(first),
			Sessions:     len(group),
		}
		if first.Weight != nil && last.Weight != nil {
			trend.WeightChange = *last.Weight - *first.Weight
		}
		if first.Reps != nil && last.Reps != nil {
			trend.RepsChange = *last.Reps - *first.Reps
		}
		out = append(out, trend)
	}
	return out
}
