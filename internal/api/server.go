// Package api exposes the run status and a manual trigger over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ratesync/internal/pipeline"
)

// Coordinator is the run surface the handlers need.
type Coordinator interface {
	RunOnce(ctx context.Context, force bool) (pipeline.RunStatus, error)
	Status() (pipeline.RunStatus, bool)
}

// Settings is the static configuration echoed by the status endpoint.
type Settings struct {
	SourceURL  string `json:"sourceUrl"`
	Schedule   string `json:"schedule"`
	CacheTTLMS int    `json:"cacheTtlMs"`
	SheetTitle string `json:"sheetTitle"`
}

type statusResponse struct {
	pipeline.RunStatus
	Running bool     `json:"running"`
	Config  Settings `json:"config"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Server holds the HTTP handlers.
type Server struct {
	coord    Coordinator
	settings Settings
	logger   *slog.Logger
}

// New creates a Server.
func New(coord Coordinator, settings Settings, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{coord: coord, settings: settings, logger: logger}
}

// Router returns the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", s.handleStatus)
	r.Get("/status", s.handleStatus)
	r.Get("/run", s.handleRun)
	r.Post("/run", s.handleRun)
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, running := s.coord.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		RunStatus: status,
		Running:   running,
		Config:    s.settings,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	force := parseForce(r.URL.Query().Get("force"))

	// A client hanging up must not abort a run other callers rely on.
	status, err := s.coord.RunOnce(context.WithoutCancel(r.Context()), force)
	if err != nil {
		s.logger.Warn("api: manual run failed", "force", force, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// parseForce accepts 1/true/yes in any case; anything else is false.
func parseForce(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return strings.EqualFold(v, "yes")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
