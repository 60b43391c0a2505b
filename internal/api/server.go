package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vivalabs/viva/internal/interview"
	"github.com/vivalabs/viva/internal/store"
)

// Server exposes the interview orchestrator over HTTP.
type Server struct {
	router  *chi.Mux
	port    int
	ctrl    *interview.Controller
	archive *store.Store // nil when archiving is not configured
}

func NewServer(port int, apiToken string, ctrl *interview.Controller, archive *store.Store) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		ctrl:    ctrl,
		archive: archive,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/viva/status", s.status)

	router.Route("/api/v1/interview", func(r chi.Router) {
		if apiToken != "" {
			r.Use(bearerAuth(apiToken))
		}
		r.Post("/document", s.submitDocument)
		r.Get("/state", s.state)
		r.Post("/answer", s.submitAnswer)
		r.Post("/answer/audio", s.submitAudioAnswer)
		r.Post("/answer/retry", s.retryQuestion)
		r.Post("/advance", s.requestAdvance)
		r.Post("/advance/confirm", s.confirmAdvance)
		r.Post("/advance/cancel", s.cancelAdvance)
		r.Post("/typing", s.notifyTyping)
		r.Post("/playback", s.notifyPlayback)
		r.Post("/reset", s.reset)
	})

	router.Get("/api/v1/interviews/recent", s.recentInterviews)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// bearerAuth rejects requests whose Authorization header does not
// carry the configured token.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.ctrl.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "viva",
		"phase":   snap.Phase,
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the orchestrator's error taxonomy onto HTTP status
// codes. Recoverable generation failures are bad-gateway so the UI can
// offer a retry; validation failures are the caller's to fix.
func writeError(w http.ResponseWriter, err error) {
	var ve *interview.ValidationError
	var te *interview.InvalidTopicsError
	var ge *interview.GenerationError
	var iv *interview.InvariantViolation
	switch {
	case errors.As(err, &ve), errors.As(err, &te):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error(), "kind": "validation"})
	case errors.As(err, &ge):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error(), "kind": "generation", "retryable": "true"})
	case errors.As(err, &iv):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error(), "kind": "invariant"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
