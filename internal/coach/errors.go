// Package coach implements the workout-plan pipeline: plan generation and
// revision against a text-generation service, exercise-reference repair,
// dialogue quality assessment, voice set-log transcription, and insight
// generation.
package coach

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned when plan repair has no exercise library to
// fall back on. A non-empty catalog is a caller precondition; with one, the
// validator never fails.
var ErrEmptyCatalog = errors.New("exercise catalog is empty")

// GenerationError is a failed plan-generation call: the upstream model
// errored, returned no parseable JSON object, or returned a plan missing
// required fields. It is not retried internally; resubmitting is the
// caller's decision.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("plan generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// TranscriptionError is a failed voice-log call: empty or unreadable audio,
// a speech service error, or unparseable extraction output. The call is
// all-or-nothing; no partial result accompanies this error.
type TranscriptionError struct {
	Reason string
	Err    error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("voice transcription failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("voice transcription failed: %s", e.Reason)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }
