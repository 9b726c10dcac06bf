package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/dsg/pkg/handler"
	"github.com/aretw0/dsg/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SceneSource provides the scene summary served on /scene.
type SceneSource interface {
	Summary() handler.Summary
	Part(id int64) (handler.PartSummary, bool)
}

// Server serves the inspection endpoints.
type Server struct {
	Status   ports.StatusReader
	Scene    SceneSource
	Streams  *StreamManager
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStatus serves progress from r.
func WithStatus(r ports.StatusReader) Option {
	return func(s *Server) { s.Status = r }
}

// WithScene serves scene summaries from src.
func WithScene(src SceneSource) Option {
	return func(s *Server) { s.Scene = src }
}

// WithStreams shares a StreamManager fed by the session hooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.Gatherer = g }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// NewHandler creates the HTTP handler.
func NewHandler(opts ...Option) http.Handler {
	s := &Server{
		Gatherer: prometheus.DefaultGatherer,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/status", s.GetStatus)
	r.Get("/scene", s.GetScene)
	r.Get("/scene/parts/{id}", s.GetPart)
	r.Get("/events", s.SubscribeEvents)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	if s.Status == nil {
		http.Error(w, "status reporting disabled", http.StatusNotFound)
		return
	}
	progress, err := s.Status.ReadStatus(r.Context())
	if err != nil {
		s.Logger.Error("failed to read status", "error", err)
		http.Error(w, "failed to read status", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, progress)
}

func (s *Server) GetScene(w http.ResponseWriter, r *http.Request) {
	if s.Scene == nil {
		http.Error(w, "scene recording disabled", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Scene.Summary())
}

func (s *Server) GetPart(w http.ResponseWriter, r *http.Request) {
	if s.Scene == nil {
		http.Error(w, "scene recording disabled", http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid part id", http.StatusBadRequest)
		return
	}
	part, ok := s.Scene.Part(id)
	if !ok {
		http.Error(w, "part not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, part)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("failed to encode response", "error", err)
	}
}
