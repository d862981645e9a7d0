package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/repforge/repforge/internal/ingest/alpha"
	"github.com/repforge/repforge/internal/metrics"
	"github.com/repforge/repforge/internal/workspace"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	ws     *workspace.Workspace
	alpha  *alpha.Provider
	log    *slog.Logger
	apiKey string
	router chi.Router

	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
}

// Option configures optional Server features.
type Option func(*Server)

// WithMetrics records request metrics into m and serves g on /metrics.
func WithMetrics(m *metrics.Manager, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New creates a new Server with all routes configured.
func New(ws *workspace.Workspace, alphaProvider *alpha.Provider, apiKey string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		ws:     ws,
		alpha:  alphaProvider,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
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
	if s.metrics != nil {
		s.router.Use(Instrument(s.metrics))
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		// Reads (no auth, tsnet handles access)
		r.Get("/program", s.handleGetProgram)
		r.Get("/program/orphans", s.handleOrphans)
		r.Get("/program/weeks/{weekID}", s.handleGetWeek)
		r.Get("/program/workouts/{workoutID}", s.handleGetWorkout)
		r.Get("/library/workouts", s.handleListWorkoutTemplates)
		r.Get("/library/weeks", s.handleListWeekTemplates)
		r.Get("/library/programs", s.handleListProgramTemplates)
		r.Get("/maxweights", s.handleListMaxWeights)
		r.Get("/maxweights/{name}", s.handleGetMaxWeight)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/circuits/kinds", s.handleCircuitKinds)
		r.Get("/calc/convert", s.handleConvert)
		r.Get("/calc/percentage", s.handleWeightToPercentage)
		r.Get("/calc/weight", s.handlePercentageToWeight)

		// Edits (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))

			r.Post("/program", s.handleNewProgram)
			r.Post("/program/sample", s.handleResetToSample)
			r.Patch("/program", s.handleRenameProgram)
			r.Post("/program/prune", s.handlePruneOrphans)

			r.Post("/program/weeks", s.handleAddWeek)
			r.Patch("/program/weeks/{weekID}", s.handleUpdateWeek)
			r.Delete("/program/weeks/{weekID}", s.handleDeleteWeek)
			r.Post("/program/weeks/{weekID}/move", s.handleMoveWeek)
			r.Post("/program/weeks/{weekID}/workouts", s.handleAddWorkout)
			r.Post("/program/weeks/{weekID}/workouts/load", s.handleLoadInlineWorkout)
			r.Delete("/program/weeks/{weekID}/workouts/{workoutID}", s.handleDeleteWorkout)

			r.Patch("/program/workouts/{workoutID}", s.handleUpdateWorkout)
			r.Post("/program/workouts/{workoutID}/move", s.handleMoveWorkout)
			r.Post("/program/workouts/{workoutID}/exercises", s.handleAddExercise)
			r.Patch("/program/workouts/{workoutID}/exercises/{exerciseID}", s.handleUpdateExercise)
			r.Delete("/program/workouts/{workoutID}/exercises/{exerciseID}", s.handleDeleteExercise)
			r.Post("/program/workouts/{workoutID}/exercises/{exerciseID}/sets", s.handleAddSet)
			r.Patch("/program/workouts/{workoutID}/exercises/{exerciseID}/sets/{setID}", s.handleUpdateSet)
			r.Delete("/program/workouts/{workoutID}/exercises/{exerciseID}/sets/{setID}", s.handleDeleteSet)
			r.Post("/program/workouts/{workoutID}/circuits", s.handleAddCircuit)
			r.Post("/program/workouts/{workoutID}/circuits/{circuitID}/members", s.handleAddCircuitMember)
			r.Delete("/program/workouts/{workoutID}/circuits/{circuitID}", s.handleDissolveCircuit)
			r.Post("/program/workouts/{workoutID}/groups", s.handleGroupExercises)
			r.Delete("/program/workouts/{workoutID}/groups/{groupID}", s.handleUngroup)

			r.Post("/library/workouts", s.handleSaveWorkout)
			r.Post("/library/workouts/{id}/load", s.handleLoadWorkout)
			r.Delete("/library/workouts/{id}", s.handleDeleteWorkoutTemplate)
			r.Post("/library/weeks", s.handleSaveWeek)
			r.Post("/library/weeks/{id}/load", s.handleLoadWeek)
			r.Delete("/library/weeks/{id}", s.handleDeleteWeekTemplate)
			r.Post("/library/programs", s.handleSaveProgram)
			r.Post("/library/programs/{id}/instantiate", s.handleInstantiateProgram)
			r.Delete("/library/programs/{id}", s.handleDeleteProgramTemplate)

			r.Put("/maxweights/{name}", s.handleSetMaxWeight)
			r.Delete("/maxweights/{name}", s.handleRemoveMaxWeight)

			r.Post("/ingest/alpha", s.handleAlphaIngest)
		})
	})
}
