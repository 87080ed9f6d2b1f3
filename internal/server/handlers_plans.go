package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
)

type generatePlanRequest struct {
	Prompt       string                    `json:"prompt"`
	Conversation []models.ConversationTurn `json:"conversation,omitempty"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}
	s.generateAndSave(w, r, req, nil)
}

// handleRevisePlan regenerates the user's active plan with new instructions.
// The model is given the full current plan and must return a complete
// replacement, which becomes the new active plan.
func (s *Server) handleRevisePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}

	current, err := s.db.GetActivePlan(r.Context(), defaultUserID)
	if err != nil {
		if errors.Is(err, storage.ErrNoPlan) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active plan to revise"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.generateAndSave(w, r, req, &current.Plan)
}

func (s *Server) generateAndSave(w http.ResponseWriter, r *http.Request, req generatePlanRequest, current *models.WorkoutPlan) {
	exercises, err := s.db.ListExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(exercises) == 0 {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "exercise library is empty"})
		return
	}

	userHistory := s.history.Prefetch(r.Context(), defaultUserID, exercises)

	plan, err := s.generator.Generate(r.Context(), coach.GenerateRequest{
		Prompt:       req.Prompt,
		Exercises:    exercises,
		CurrentPlan:  current,
		Conversation: req.Conversation,
		UserHistory:  userHistory,
	})
	if err != nil {
		var genErr *coach.GenerationError
		if errors.As(err, &genErr) {
			s.log.Warn("plan generation failed", "reason", genErr.Reason)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	id, err := s.db.SavePlan(r.Context(), defaultUserID, plan)
	if err != nil {
		s.log.Error("saving plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":   id,
		"plan": plan,
	})
}

func (s *Server) handleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	record, err := s.db.GetActivePlan(r.Context(), defaultUserID)
	if err != nil {
		if errors.Is(err, storage.ErrNoPlan) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active plan"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.db.ListPlans(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}
