package voicelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// Client sends queued recordings to the RepCoach server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the RepCoach server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// SendRecording POSTs one recording's audio to the voice-log endpoint.
// Retries up to 3 times with exponential backoff on failure. Returns the
// server's transcription result on success.
func (c *Client) SendRecording(rec Recording) (*models.VoiceLogResult, error) {
	audio, err := os.ReadFile(rec.Path)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}

	params := url.Values{}
	if rec.Format != "" {
		params.Set("format", rec.Format)
	}
	if rec.ExerciseID != nil {
		params.Set("exercise_id", strconv.Itoa(*rec.ExerciseID))
	}
	endpoint := c.serverURL + "/api/v1/sets/voice"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(audio))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var result models.VoiceLogResult
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding voice log result: %w", err)
			}
			return &result, nil
		}
		lastErr = fmt.Errorf("voice log failed (status %d): %s", resp.StatusCode, body)

		// Client errors won't get better on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}

	return nil, fmt.Errorf("after retries: %w", lastErr)
}

// Sync sends all pending recordings, marking each synced on success.
// Failures stop the sync so ordering is preserved on the next attempt.
func Sync(queue *Queue, client *Client, log *slog.Logger) (int, error) {
	pending, err := queue.Pending()
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, rec := range pending {
		result, err := client.SendRecording(rec)
		if err != nil {
			return synced, fmt.Errorf("sending %s: %w", rec.Path, err)
		}
		if err := queue.MarkSynced(rec.ID); err != nil {
			return synced, fmt.Errorf("marking %s synced: %w", rec.Path, err)
		}
		log.Info("voice log synced",
			"path", rec.Path, "transcription", result.Transcription)
		synced++
	}
	return synced, nil
}
