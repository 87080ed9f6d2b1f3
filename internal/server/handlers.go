package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/analytics"
	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxAudioBytes caps voice-log uploads.
const maxAudioBytes = 20 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	sets, err := s.history.Get1RM(r.Context(), defaultUserID, exerciseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sets, err := s.db.QuerySets(r.Context(), defaultUserID, start, end, r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sets, err := s.db.QuerySets(r.Context(), defaultUserID, start, end, r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, analytics.Trends(sets))
}

type logSetRequest struct {
	ExerciseID  int        `json:"exercise_id"`
	Weight      *float64   `json:"weight"`
	Reps        *int       `json:"reps"`
	RIR         *int       `json:"rir"`
	PerformedAt *time.Time `json:"performed_at"`
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req logSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	exercise, ok := s.findExercise(w, r, req.ExerciseID)
	if !ok {
		return
	}

	performedAt := time.Now()
	if req.PerformedAt != nil {
		performedAt = *req.PerformedAt
	}
	set := models.PerformanceSet{
		ID:           uuid.New(),
		UserID:       defaultUserID,
		ExerciseID:   exercise.ID,
		ExerciseName: exercise.Name,
		Weight:       req.Weight,
		Reps:         req.Reps,
		RIR:          req.RIR,
		PerformedAt:  performedAt,
	}
	if _, err := s.db.InsertPerformanceSet(r.Context(), set); err != nil {
		s.log.Error("log set", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

// handleVoiceLog transcribes an audio set-log. When an exercise_id query
// parameter is supplied the extracted set is also persisted; otherwise the
// caller gets the structured data back and decides.
func (s *Server) handleVoiceLog(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading audio: " + err.Error()})
		return
	}

	format := r.URL.Query().Get("format")
	result, err := s.transcriber.Transcribe(r.Context(), audio, format)
	if err != nil {
		var tErr *coach.TranscriptionError
		if errors.As(err, &tErr) {
			s.log.Warn("voice log failed", "reason", tErr.Reason)
		}
		// Retryable from the client's perspective
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if idStr := r.URL.Query().Get("exercise_id"); idStr != "" {
		exerciseID, convErr := strconv.Atoi(idStr)
		if convErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise_id"})
			return
		}
		exercise, ok := s.findExercise(w, r, exerciseID)
		if !ok {
			return
		}
		set := models.PerformanceSet{
			ID:           uuid.New(),
			UserID:       defaultUserID,
			ExerciseID:   exercise.ID,
			ExerciseName: exercise.Name,
			Weight:       result.WorkoutData.Weight,
			Reps:         result.WorkoutData.Reps,
			RIR:          result.WorkoutData.RIR,
			PerformedAt:  time.Now(),
		}
		if _, err := s.db.InsertPerformanceSet(r.Context(), set); err != nil {
			s.log.Error("persisting voice log", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, result)
}

type assessRequest struct {
	Conversation  []models.ConversationTurn `json:"conversation"`
	QuestionCount int                       `json:"question_count"`
	MaxQuestions  int                       `json:"max_questions"`
	Phase         string                    `json:"phase"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	// Assess never fails; a degraded upstream yields the neutral default.
	result := s.assessor.Assess(r.Context(), req.Conversation, coach.AssessContext{
		QuestionCount: req.QuestionCount,
		MaxQuestions:  req.MaxQuestions,
		Phase:         req.Phase,
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateInsights(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sets, err := s.db.QuerySets(r.Context(), defaultUserID, start, end, "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	insights, genErr := s.insights.Generate(r.Context(), sets)
	if len(insights) > 0 {
		if err := s.db.InsertInsights(r.Context(), defaultUserID, insights); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	if genErr != nil && len(insights) == 0 {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": genErr.Error()})
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.db.RecentInsights(r.Context(), defaultUserID, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// findExercise resolves an exercise id against the library, writing the
// error response itself when the id is unknown.
func (s *Server) findExercise(w http.ResponseWriter, r *http.Request, exerciseID int) (models.Exercise, bool) {
	exercises, err := s.db.ListExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return models.Exercise{}, false
	}
	for _, ex := range exercises {
		if ex.ID == exerciseID {
			return ex, true
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown exercise"})
	return models.Exercise{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 90 days
		end = time.Now()
		start = end.AddDate(0, 0, -90)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
		return
	}
	end, err = parseFlexTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
