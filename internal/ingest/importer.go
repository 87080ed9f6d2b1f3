package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// SetWriter is the slice of the storage layer the importer needs.
type SetWriter interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	DeleteSetsAt(ctx context.Context, userID int, performedAt time.Time) (int64, error)
	InsertPerformanceSets(ctx context.Context, sets []models.PerformanceSet) (int64, error)
}

// Result holds the outcome of an import.
type Result struct {
	SessionsParsed   int      `json:"sessions_parsed"`
	SetsReceived     int      `json:"sets_received"`
	SetsInserted     int64    `json:"sets_inserted"`
	WarmupsSkipped   int      `json:"warmups_skipped"`
	UnknownExercises []string `json:"unknown_exercises,omitempty"`
}

// Importer converts parsed CSV sessions into performance sets, resolving
// exercise names against the library.
type Importer struct {
	db  SetWriter
	log *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(db SetWriter, log *slog.Logger) *Importer {
	return &Importer{db: db, log: log.With("component", "ingest")}
}

// Import parses a CSV export and stores its working sets. Warmup sets are
// dropped: they would drag every trend and 1RM estimate down. Exercises that
// cannot be resolved against the library are skipped and reported, never
// guessed. Sessions already imported are replaced, so re-running an import
// always reflects the latest export.
func (im *Importer) Import(ctx context.Context, r io.Reader, userID int) (*Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	catalog, err := im.db.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exercise library: %w", err)
	}

	result := &Result{SessionsParsed: len(sessions)}
	unknown := make(map[string]bool)
	var rows []models.PerformanceSet

	for _, session := range sessions {
		if _, err := im.db.DeleteSetsAt(ctx, userID, session.Date); err != nil {
			return nil, fmt.Errorf("replacing session %s: %w", session.Date.Format("2006-01-02"), err)
		}
		for _, ex := range session.Exercises {
			match, ok := resolveExercise(ex.Name, catalog)
			if !ok {
				unknown[ex.Name] = true
				continue
			}
			for _, set := range ex.Sets {
				if set.IsWarmup {
					result.WarmupsSkipped++
					continue
				}
				rows = append(rows, convertSet(set, session.Date, userID, match))
			}
		}
	}

	result.SetsReceived = len(rows)
	if len(rows) > 0 {
		inserted, err := im.db.InsertPerformanceSets(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("inserting sets: %w", err)
		}
		result.SetsInserted = inserted
	}

	for name := range unknown {
		result.UnknownExercises = append(result.UnknownExercises, name)
	}
	sort.Strings(result.UnknownExercises)
	if len(result.UnknownExercises) > 0 {
		im.log.Warn("import skipped unknown exercises",
			"count", len(result.UnknownExercises), "names", result.UnknownExercises)
	}

	return result, nil
}

func convertSet(set LoggedSet, performedAt time.Time, userID int, exercise models.Exercise) models.PerformanceSet {
	var weight *float64
	// Bodyweight-plus with no added load means no meaningful weight.
	if !set.IsBodyweightPlus || set.WeightKg > 0 {
		w := set.WeightKg
		weight = &w
	}
	reps := set.Reps
	rir := int(math.Round(set.RIR))
	return models.PerformanceSet{
		UserID:       userID,
		ExerciseID:   exercise.ID,
		ExerciseName: exercise.Name,
		Weight:       weight,
		Reps:         &reps,
		RIR:          &rir,
		PerformedAt:  performedAt,
	}
}

// resolveExercise matches a logged name against the library: exact match
// first (case-insensitive), then containment either way. First library
// entry wins on ties.
func resolveExercise(name string, catalog []models.Exercise) (models.Exercise, bool) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return models.Exercise{}, false
	}

	for _, ex := range catalog {
		if strings.ToLower(ex.Name) == lowered {
			return ex, true
		}
	}
	for _, ex := range catalog {
		catName := strings.ToLower(ex.Name)
		if strings.Contains(catName, lowered) || strings.Contains(lowered, catName) {
			return ex, true
		}
	}
	return models.Exercise{}, false
}
