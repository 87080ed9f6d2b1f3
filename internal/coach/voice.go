package coach

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/claude/repcoach/internal/llm"
	"github.com/claude/repcoach/internal/models"
)

const (
	voiceMaxTokens   = 128
	voiceTemperature = 0
)

// Transcriber converts an audio set-log into a transcript plus structured
// weight/reps/RIR data via two upstream calls: speech-to-text, then a
// strict extraction prompt against the text model.
type Transcriber struct {
	llm llm.Client
	log *slog.Logger
}

// NewTranscriber creates a Transcriber.
func NewTranscriber(client llm.Client, log *slog.Logger) *Transcriber {
	return &Transcriber{llm: client, log: log.With("component", "transcriber")}
}

// Transcribe runs the two-stage pipeline. Either both stages succeed and
// all three extracted fields resolve (each independently nullable), or the
// whole call fails with *TranscriptionError; there is no partial result.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, format string) (*models.VoiceLogResult, error) {
	if len(audio) == 0 {
		return nil, &TranscriptionError{Reason: "empty audio"}
	}

	transcript, err := t.llm.Transcribe(ctx, audio, format)
	if err != nil {
		return nil, &TranscriptionError{Reason: "speech-to-text", Err: err}
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, &TranscriptionError{Reason: "empty transcript"}
	}

	data, err := t.extract(ctx, transcript)
	if err != nil {
		return nil, err
	}

	t.log.Info("voice log transcribed",
		"transcript_len", len(transcript),
		"has_weight", data.Weight != nil,
		"has_reps", data.Reps != nil,
		"has_rir", data.RIR != nil,
	)
	return &models.VoiceLogResult{Transcription: transcript, WorkoutData: *data}, nil
}

// extract runs the second stage: transcript in, three-field JSON out.
func (t *Transcriber) extract(ctx context.Context, transcript string) (*models.WorkoutData, error) {
	raw, err := t.llm.Complete(ctx, llm.CompletionRequest{
		System:      voiceExtractionInstruction,
		User:        transcript,
		MaxTokens:   voiceMaxTokens,
		Temperature: voiceTemperature,
	})
	if err != nil {
		return nil, &TranscriptionError{Reason: "extraction call", Err: err}
	}

	span, err := extractJSONObject(raw)
	if err != nil {
		return nil, &TranscriptionError{Reason: "extraction output not JSON", Err: err}
	}

	var data models.WorkoutData
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, &TranscriptionError{Reason: "parsing extraction output", Err: err}
	}
	return &data, nil
}
