// Package history supplies a user's recent strength performance per
// exercise, with a derived estimated one-rep max per set. Estimates are
// always recomputed from the source sets, never stored as ground truth.
package history

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/claude/repcoach/internal/analytics"
	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
)

// recentSetLimit bounds how many sets per exercise feed the 1RM estimate.
const recentSetLimit = 10

// prefetchParallelism bounds concurrent per-exercise lookups.
const prefetchParallelism = 8

// SetStore is the slice of the storage layer the provider needs.
type SetStore interface {
	RecentSets(ctx context.Context, userID, exerciseID, limit int) ([]models.PerformanceSet, error)
}

// SetPerformance is one logged set annotated with its estimated 1RM
// (0 when the set yields no estimate).
type SetPerformance struct {
	models.PerformanceSet
	Estimated1RM float64 `json:"estimated_1rm"`
}

// Provider reads performance history from a SetStore.
type Provider struct {
	store SetStore
	log   *slog.Logger
}

// NewProvider creates a Provider.
func NewProvider(store SetStore, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log.With("component", "history")}
}

// Get1RM returns the user's recent sets for one exercise, each annotated
// with its estimated 1RM. May return empty.
func (p *Provider) Get1RM(ctx context.Context, userID, exerciseID int) ([]SetPerformance, error) {
	sets, err := p.store.RecentSets(ctx, userID, exerciseID, recentSetLimit)
	if err != nil {
		return nil, err
	}
	out := make([]SetPerformance, 0, len(sets))
	for _, s := range sets {
		out = append(out, SetPerformance{
			PerformanceSet: s,
			Estimated1RM:   analytics.Estimate1RM(s),
		})
	}
	return out, nil
}

// Prefetch looks up history for every catalog exercise concurrently and
// returns a map keyed by exercise id. Lookups are independent: one failing
// exercise is logged and treated as "no history" without affecting the
// rest. Exercises with no usable estimate are omitted.
func (p *Provider) Prefetch(ctx context.Context, userID int, exercises []models.Exercise) map[int]coach.ExerciseHistory {
	var mu sync.Mutex
	out := make(map[int]coach.ExerciseHistory)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchParallelism)

	for _, ex := range exercises {
		g.Go(func() error {
			sets, err := p.store.RecentSets(gctx, userID, ex.ID, recentSetLimit)
			if err != nil {
				p.log.Warn("history lookup failed, treating as no history",
					"exercise_id", ex.ID, "error", err)
				return nil
			}
			best := analytics.Best1RM(sets)
			if best <= 0 {
				return nil
			}
			mu.Lock()
			out[ex.ID] = coach.ExerciseHistory{Estimated1RM: best, RecentSets: sets}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; Wait is for completion only
	return out
}
