package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// InsertPerformanceSet inserts one logged set. A zero ID gets a fresh UUID.
// Returns true if inserted, false if the ID already existed.
func (db *DB) InsertPerformanceSet(ctx context.Context, set models.PerformanceSet) (bool, error) {
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO performance_sets (id, user_id, exercise_id, exercise_name, weight_kg, reps, rir, performed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT DO NOTHING`,
		set.ID, set.UserID, set.ExerciseID, set.ExerciseName,
		set.Weight, set.Reps, set.RIR, set.PerformedAt)
	if err != nil {
		return false, fmt.Errorf("inserting performance set: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertPerformanceSets batch-inserts logged sets. Returns count inserted.
func (db *DB) InsertPerformanceSets(ctx context.Context, sets []models.PerformanceSet) (int64, error) {
	if len(sets) == 0 {
		return 0, nil
	}

	query := `INSERT INTO performance_sets (id, user_id, exercise_id, exercise_name, weight_kg, reps, rir, performed_at) VALUES `
	args := make([]any, 0, len(sets)*8)
	valueStrings := make([]string, 0, len(sets))

	for i, s := range sets {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, s.ID, s.UserID, s.ExerciseID, s.ExerciseName,
			s.Weight, s.Reps, s.RIR, s.PerformedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting performance sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteSetsAt deletes all of a user's sets logged at the given timestamp.
// Used by the importer so re-importing a session replaces its sets rather
// than duplicating them.
func (db *DB) DeleteSetsAt(ctx context.Context, userID int, performedAt time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM performance_sets WHERE user_id = $1 AND performed_at = $2`,
		userID, performedAt)
	if err != nil {
		return 0, fmt.Errorf("deleting sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecentSets retrieves the user's most recent sets for one exercise,
// newest first.
func (db *DB) RecentSets(ctx context.Context, userID, exerciseID, limit int) ([]models.PerformanceSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, exercise_id, exercise_name, weight_kg, reps, rir, performed_at
		 FROM performance_sets
		 WHERE user_id = $1 AND exercise_id = $2
		 ORDER BY performed_at DESC
		 LIMIT $3`,
		userID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

// QuerySets retrieves sets in a date range, optionally filtered by partial
// exercise name, oldest first (trend analysis wants ascending dates).
func (db *DB) QuerySets(ctx context.Context, userID int, start, end time.Time, exerciseFilter string) ([]models.PerformanceSet, error) {
	query := `SELECT id, user_id, exercise_id, exercise_name, weight_kg, reps, rir, performed_at
		 FROM performance_sets
		 WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3`
	args := []any{userID, start, end}
	if exerciseFilter != "" {
		query += ` AND exercise_name ILIKE '%' || $4 || '%'`
		args = append(args, exerciseFilter)
	}
	query += ` ORDER BY performed_at ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

func scanSetRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.PerformanceSet, error) {
	var result []models.PerformanceSet
	for rows.Next() {
		var s models.PerformanceSet
		if err := rows.Scan(&s.ID, &s.UserID, &s.ExerciseID, &s.ExerciseName,
			&s.Weight, &s.Reps, &s.RIR, &s.PerformedAt); err != nil {
			return nil, fmt.Errorf("scanning performance set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
