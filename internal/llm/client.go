// Package llm wraps an OpenAI-compatible HTTP API behind a small
// interface: chat completion for text generation and audio transcription
// for speech-to-text. The rest of the codebase depends only on Client so
// tests can substitute fakes.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/config"
)

// Client is the text-generation and speech-to-text boundary.
type Client interface {
	// Complete sends a system+user instruction pair and returns the raw
	// generated text. The response may contain prose around any JSON the
	// prompt asked for; callers extract what they need.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Transcribe submits audio bytes and returns a plain transcript.
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// CompletionRequest carries one chat-completion call's parameters.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// HTTPError is a non-2xx response from the upstream API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

type client struct {
	log         *slog.Logger
	baseURL     string
	apiKey      string
	model       string
	transcModel string
	httpClient  *http.Client
	maxRetries  int
}

// New creates a Client from config.
func New(cfg config.LLMConfig, log *slog.Logger) Client {
	return &client{
		log:         log.With("component", "llm"),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		transcModel: cfg.TranscriptionModel,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		maxRetries:  cfg.MaxRetries,
	}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests ||
		(code >= 500 && code <= 599)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return isRetryableStatus(httpErr.StatusCode)
	}
	return false
}

// jitter spreads a backoff interval +/- 20% so retries from concurrent
// requests don't align.
func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := 0.2 * base.Seconds()
	v := base.Seconds() - delta + rand.Float64()*2*delta
	return time.Duration(v * float64(time.Second))
}

func (c *client) doOnce(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// do runs buildReq and retries retryable failures with exponential backoff,
// honoring Retry-After when the server sends one. The request body must be
// rebuildable, hence the factory instead of a single *http.Request.
func (c *client) do(ctx context.Context, buildReq func() (*http.Request, error), out any) error {
	backoff := time.Second

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		req, err := buildReq()
		if err != nil {
			return err
		}

		resp, raw, err := c.doOnce(ctx, req)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("decoding llm response: %w", uErr)
			}
			return nil
		}

		if !isRetryable(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitter(sleepFor)

		c.log.Warn("llm request retrying",
			"path", req.URL.Path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-time.After(sleepFor):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	body := chatRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.User})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	build := func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	}

	var resp chatResponse
	if err := c.do(ctx, build, &resp); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *client) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcribe: empty audio")
	}
	if format == "" {
		format = "webm"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "audio."+format)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio); err != nil {
		return "", err
	}
	if err := mw.WriteField("model", c.transcModel); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	payload := buf.Bytes()
	contentType := mw.FormDataContentType()

	build := func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/audio/transcriptions", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", contentType)
		return r, nil
	}

	var resp transcriptionResponse
	if err := c.do(ctx, build, &resp); err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}
