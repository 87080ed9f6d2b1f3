package storage

import (
	"context"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// InsertInsights stores a batch of generated insights.
func (db *DB) InsertInsights(ctx context.Context, userID int, insights []models.Insight) error {
	for _, ins := range insights {
		id := ins.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO insights (id, user_id, type, content) VALUES ($1, $2, $3, $4)`,
			id, userID, ins.Type, ins.Content); err != nil {
			return fmt.Errorf("inserting insight: %w", err)
		}
	}
	return nil
}

// RecentInsights returns the user's latest insights, newest first.
func (db *DB) RecentInsights(ctx context.Context, userID, limit int) ([]models.Insight, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, type, content, created_at
		 FROM insights WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying insights: %w", err)
	}
	defer rows.Close()

	var result []models.Insight
	for rows.Next() {
		var ins models.Insight
		if err := rows.Scan(&ins.ID, &ins.UserID, &ins.Type, &ins.Content, &ins.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning insight: %w", err)
		}
		result = append(result, ins)
	}
	return result, rows.Err()
}
