// Package voicelog queues voice recordings captured offline and syncs them
// to the server. The queue lives in a local SQLite database so recordings
// made at the gym without connectivity survive restarts and are uploaded
// exactly once.
package voicelog

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Recording is one queued voice log.
type Recording struct {
	ID         int64
	Path       string
	Size       int64
	Hash       string
	Format     string
	ExerciseID *int
	QueuedAt   time.Time
}

// Queue tracks recordings waiting to be sent, deduplicated by content hash.
type Queue struct {
	db *sql.DB
}

// OpenQueue opens (or creates) the SQLite queue database at dir/voicelog.db.
func OpenQueue(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating queue dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "voicelog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening queue db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS recordings (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		path        TEXT NOT NULL,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL UNIQUE,
		format      TEXT NOT NULL,
		exercise_id INTEGER,
		queued_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		synced_at   TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating queue table: %w", err)
	}

	return &Queue{db: db}, nil
}

// Enqueue adds a recording to the queue. A recording whose content hash is
// already queued or synced is skipped; returns true if newly queued.
func (q *Queue) Enqueue(path, format string, exerciseID *int) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat recording: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return false, fmt.Errorf("hashing recording: %w", err)
	}

	res, err := q.db.Exec(
		`INSERT OR IGNORE INTO recordings (path, size, hash, format, exercise_id) VALUES (?, ?, ?, ?, ?)`,
		path, info.Size(), hash, format, exerciseID,
	)
	if err != nil {
		return false, fmt.Errorf("queueing recording: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Pending returns recordings not yet synced, oldest first.
func (q *Queue) Pending() ([]Recording, error) {
	rows, err := q.db.Query(
		`SELECT id, path, size, hash, format, exercise_id, queued_at
		 FROM recordings WHERE synced_at IS NULL ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing pending recordings: %w", err)
	}
	defer rows.Close()

	var result []Recording
	for rows.Next() {
		var rec Recording
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Size, &rec.Hash,
			&rec.Format, &rec.ExerciseID, &rec.QueuedAt); err != nil {
			return nil, fmt.Errorf("scanning recording: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// MarkSynced records that a recording was successfully sent.
func (q *Queue) MarkSynced(id int64) error {
	_, err := q.db.Exec(
		`UPDATE recordings SET synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// Close closes the queue database.
func (q *Queue) Close() error {
	return q.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
