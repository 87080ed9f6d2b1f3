package voicelog

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/repcoach/internal/testutil"
)

func writeRecording(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestEnqueueDedupe verifies that the same audio content queues only once,
// even under a different path.
func TestEnqueueDedupe(t *testing.T) {
	dir := t.TempDir()
	q, err := OpenQueue(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()

	p1 := writeRecording(t, dir, "a.ogg", "audio-bytes")
	p2 := writeRecording(t, dir, "b.ogg", "audio-bytes")

	queued, err := q.Enqueue(p1, "ogg", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !queued {
		t.Error("first enqueue should queue")
	}

	queued, err = q.Enqueue(p2, "ogg", nil)
	if err != nil {
		t.Fatal(err)
	}
	if queued {
		t.Error("identical content should not queue twice")
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
}

// TestMarkSynced verifies synced recordings drop out of the pending list.
func TestMarkSynced(t *testing.T) {
	dir := t.TempDir()
	q, err := OpenQueue(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()

	exID := 3
	p := writeRecording(t, dir, "set.ogg", "deadlift audio")
	if _, err := q.Enqueue(p, "ogg", &exID); err != nil {
		t.Fatal(err)
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].ExerciseID == nil || *pending[0].ExerciseID != 3 {
		t.Errorf("exercise_id = %v, want 3", pending[0].ExerciseID)
	}

	if err := q.MarkSynced(pending[0].ID); err != nil {
		t.Fatal(err)
	}

	pending, err = q.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}
}

// TestQueueSurvivesReopen verifies pending recordings persist across
// reopening the database.
func TestQueueSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	q, err := OpenQueue(dir)
	if err != nil {
		t.Fatal(err)
	}

	p := writeRecording(t, dir, "set.ogg", "squat audio")
	if _, err := q.Enqueue(p, "ogg", nil); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	q2, err := OpenQueue(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer q2.Close()

	pending, err := q2.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("pending after reopen = %d, want 1", len(pending))
	}
}

// TestSync verifies the end-to-end sync path: pending recordings are posted
// with the exercise_id param and marked synced on success.
func TestSync(t *testing.T) {
	dir := t.TempDir()
	q, err := OpenQueue(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()

	exID := 1
	p := writeRecording(t, dir, "set.ogg", "bench audio")
	if _, err := q.Enqueue(p, "ogg", &exID); err != nil {
		t.Fatal(err)
	}

	var gotExerciseID, gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sets/voice" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotExerciseID = r.URL.Query().Get("exercise_id")
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcription":"bench press 100 for 5","workout_data":{"weight":100,"reps":5,"rir":2}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key123")
	synced, err := Sync(q, client, testutil.Logger())
	if err != nil {
		t.Fatalf("sync error: %v", err)
	}
	if synced != 1 {
		t.Errorf("synced = %d, want 1", synced)
	}
	if gotExerciseID != "1" {
		t.Errorf("exercise_id param = %q, want 1", gotExerciseID)
	}
	if gotKey != "key123" {
		t.Errorf("api key = %q, want key123", gotKey)
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}
}

// TestSyncStopsOnFailure verifies a failed upload leaves the recording
// queued for the next attempt.
func TestSyncStopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	q, err := OpenQueue(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()

	p := writeRecording(t, dir, "set.ogg", "noisy audio")
	if _, err := q.Enqueue(p, "ogg", nil); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid audio"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key123")
	synced, err := Sync(q, client, testutil.Logger())
	if err == nil {
		t.Fatal("expected sync error")
	}
	if synced != 0 {
		t.Errorf("synced = %d, want 0", synced)
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1 (still queued)", len(pending))
	}
}
