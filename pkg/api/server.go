// Package api exposes the demo engine's operations as JSON endpoints.
// The server is a thin adapter: request decoding, error-to-status
// mapping, and nothing else.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/entrhq/tourguide/pkg/browser"
	"github.com/entrhq/tourguide/pkg/demo"
	"github.com/entrhq/tourguide/pkg/logging"
	"github.com/entrhq/tourguide/pkg/tour"
	"github.com/entrhq/tourguide/pkg/types"
)

// Orchestrator is the engine surface the server adapts. demo satisfies
// this.
type Orchestrator interface {
	CreateSession(ctx context.Context, req demo.CreateSessionRequest) (string, error)
	StartTour(ctx context.Context, sessionID string, pageURLs []string) error
	AdvanceTour(ctx context.Context, sessionID string) (tour.StepResult, error)
	GetTourProgress(sessionID string) (tour.Progress, error)
	EndTour(sessionID string) error
	DispatchBrowserAction(ctx context.Context, sessionID string, action types.BrowserAction) error
	CaptureScreenshot(sessionID string) (string, error)
	ExtractPageContent(sessionID string) (types.PageContent, error)
	InterpretCommand(ctx context.Context, sessionID, command string) (demo.InterpretResult, error)
	Speak(ctx context.Context, sessionID, text string) error
	GenerateScript(ctx context.Context, siteURL string) ([]tour.ScriptStep, error)
	CloseSession(sessionID string) error
	ListSessions() []demo.SessionInfo
}

// Server routes HTTP requests onto the orchestrator.
type Server struct {
	router chi.Router
	orch   Orchestrator
	logger *logging.Logger
}

// NewServer builds the router. logger may be nil.
func NewServer(orch Orchestrator, logger *logging.Logger) *Server {
	s := &Server{orch: orch, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Get("/script", s.handleGenerateScript)

		api.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/", s.handleListSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Delete("/", s.handleCloseSession)
				r.Get("/tour", s.handleTourProgress)
				r.Post("/tour/start", s.handleStartTour)
				r.Post("/tour/advance", s.handleAdvanceTour)
				r.Post("/tour/end", s.handleEndTour)
				r.Post("/actions", s.handleDispatchAction)
				r.Get("/screenshot", s.handleScreenshot)
				r.Get("/content", s.handleContent)
				r.Post("/command", s.handleCommand)
				r.Post("/speak", s.handleSpeak)
			})
		})
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req demo.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	sessionID, err := s.orch.CreateSession(r.Context(), req)
	if err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]string{"sessionId": sessionID})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{"sessions": s.orch.ListSessions()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.CloseSession(chi.URLParam(r, "sessionID")); err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "closed"})
}

func (s *Server) handleStartTour(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageURLs []string `json:"pageUrls"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
			return
		}
	}

	if err := s.orch.StartTour(r.Context(), chi.URLParam(r, "sessionID"), req.PageURLs); err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "started"})
}

func (s *Server) handleAdvanceTour(w http.ResponseWriter, r *http.Request) {
	result, err := s.orch.AdvanceTour(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, result)
}

func (s *Server) handleTourProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.orch.GetTourProgress(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, progress)
}

func (s *Server) handleEndTour(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.EndTour(chi.URLParam(r, "sessionID")); err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "ended"})
}

func (s *Server) handleDispatchAction(w http.ResponseWriter, r *http.Request) {
	var payload types.ActionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	action, err := types.ParseAction(payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.orch.DispatchBrowserAction(r.Context(), chi.URLParam(r, "sessionID"), action); err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "executed"})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	image, err := s.orch.CaptureScreenshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]string{"screenshot": image})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	content, err := s.orch.ExtractPageContent(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, content)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	result, err := s.orch.InterpretCommand(r.Context(), chi.URLParam(r, "sessionID"), req.Command)
	if err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, result)
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	if err := s.orch.Speak(r.Context(), chi.URLParam(r, "sessionID"), req.Text); err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "spoken"})
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	steps, err := s.orch.GenerateScript(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		s.respondMapped(w, err)
		return
	}
	respondJSON(w, map[string]any{"script": steps})
}

// respondMapped translates engine errors onto HTTP status codes.
func (s *Server) respondMapped(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, demo.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, demo.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, demo.ErrSessionExists):
		status = http.StatusConflict
	case errors.Is(err, demo.ErrSessionEnded), errors.Is(err, tour.ErrNotRunning):
		status = http.StatusConflict
	case errors.Is(err, demo.ErrTooManySessions):
		status = http.StatusTooManyRequests
	case errors.Is(err, browser.ErrElementNotFound), errors.Is(err, browser.ErrNavigationTimeout):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError && s.logger != nil {
		s.logger.Errorf("request failed: %v", err)
	}
	respondError(w, status, err)
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	response := struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  err.Error(),
		Status: status,
	}
	_ = json.NewEncoder(w).Encode(response)
}
