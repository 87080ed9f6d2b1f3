package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNoPlan is returned when the user has no active plan.
var ErrNoPlan = errors.New("no active plan")

// PlanRecord is a stored plan row. The plan body is kept as one JSONB
// document: plans are replaced wholesale, never patched, so row-per-field
// normalization buys nothing.
type PlanRecord struct {
	ID        uuid.UUID          `json:"id"`
	UserID    int                `json:"user_id"`
	Active    bool               `json:"active"`
	Plan      models.WorkoutPlan `json:"plan"`
	CreatedAt time.Time          `json:"created_at"`
}

// SavePlan stores a new plan as the active one, deactivating any prior
// active plan in the same transaction.
func (db *DB) SavePlan(ctx context.Context, userID int, plan *models.WorkoutPlan) (uuid.UUID, error) {
	body, err := json.Marshal(plan)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding plan: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning plan save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE plans SET active = FALSE WHERE user_id = $1 AND active`, userID); err != nil {
		return uuid.Nil, fmt.Errorf("deactivating prior plan: %w", err)
	}

	id := uuid.New()
	if _, err := tx.Exec(ctx,
		`INSERT INTO plans (id, user_id, active, body) VALUES ($1, $2, TRUE, $3)`,
		id, userID, body); err != nil {
		return uuid.Nil, fmt.Errorf("inserting plan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing plan save: %w", err)
	}
	return id, nil
}

// GetActivePlan returns the user's current plan, or ErrNoPlan.
func (db *DB) GetActivePlan(ctx context.Context, userID int) (*PlanRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, active, body, created_at
		 FROM plans WHERE user_id = $1 AND active`,
		userID)

	rec, err := scanPlanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPlan
		}
		return nil, fmt.Errorf("querying active plan: %w", err)
	}
	return rec, nil
}

// ListPlans returns the user's plans newest first, active and inactive.
func (db *DB) ListPlans(ctx context.Context, userID int) ([]PlanRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, active, body, created_at
		 FROM plans WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var result []PlanRecord
	for rows.Next() {
		rec, err := scanPlanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func scanPlanRow(row pgx.Row) (*PlanRecord, error) {
	var rec PlanRecord
	var body []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Active, &body, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &rec.Plan); err != nil {
		return nil, fmt.Errorf("decoding plan body: %w", err)
	}
	return &rec, nil
}
