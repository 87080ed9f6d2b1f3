package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/history"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// defaultUserID scopes all data in single-user deployments. Multi-user
// identity is delegated to whatever fronts the server.
const defaultUserID = 1

// PlanStore is the slice of storage the handlers need for plans and sets.
// *storage.DB satisfies it; tests substitute fakes.
type PlanStore interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	InsertPerformanceSet(ctx context.Context, set models.PerformanceSet) (bool, error)
	QuerySets(ctx context.Context, userID int, start, end time.Time, exerciseFilter string) ([]models.PerformanceSet, error)
	SavePlan(ctx context.Context, userID int, plan *models.WorkoutPlan) (uuid.UUID, error)
	GetActivePlan(ctx context.Context, userID int) (*storage.PlanRecord, error)
	ListPlans(ctx context.Context, userID int) ([]storage.PlanRecord, error)
	InsertInsights(ctx context.Context, userID int, insights []models.Insight) error
	RecentInsights(ctx context.Context, userID, limit int) ([]models.Insight, error)
}

var _ PlanStore = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db          PlanStore
	generator   *coach.Generator
	assessor    *coach.Assessor
	transcriber *coach.Transcriber
	insights    *coach.InsightGenerator
	history     *history.Provider
	log         *slog.Logger
	apiKey      string
	router      chi.Router
}

// New creates a new Server with all routes configured.
func New(
	db PlanStore,
	generator *coach.Generator,
	assessor *coach.Assessor,
	transcriber *coach.Transcriber,
	insights *coach.InsightGenerator,
	historyProvider *history.Provider,
	apiKey string,
	log *slog.Logger,
) *Server {
	s := &Server{
		db:          db,
		generator:   generator,
		assessor:    assessor,
		transcriber: transcriber,
		insights:    insights,
		history:     historyProvider,
		log:         log,
		apiKey:      apiKey,
		router:      chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/health", s.handleHealth)

	// Read endpoints
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}/history", s.handleExerciseHistory)
	s.router.Get("/api/v1/sets", s.handleListSets)
	s.router.Get("/api/v1/trends", s.handleTrends)
	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/current", s.handleCurrentPlan)
	s.router.Get("/api/v1/insights", s.handleListInsights)

	// Mutating and model-invoking endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/plans/generate", s.handleGeneratePlan)
		r.Post("/api/v1/plans/revise", s.handleRevisePlan)
		r.Post("/api/v1/sets", s.handleLogSet)
		r.Post("/api/v1/sets/voice", s.handleVoiceLog)
		r.Post("/api/v1/dialogue/assess", s.handleAssess)
		r.Post("/api/v1/insights/generate", s.handleGenerateInsights)
	})
}
