// Package web serves the optional status API.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/reactor"
)

// Config holds server configuration
type Config struct {
	Port int
}

// Server exposes process health and reaction stats over HTTP.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *Config
	service    *reactor.Service
	stats      *reactor.Stats
	backoff    *reactor.Backoff
}

// NewServer creates a new status server.
func NewServer(cfg *Config, service *reactor.Service, stats *reactor.Stats, backoff *reactor.Backoff) *Server {
	srv := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		service: service,
		stats:   stats,
		backoff: backoff,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/stats", s.handleStats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// statsResponse is the JSON shape of /api/stats.
type statsResponse struct {
	Reacted           int64     `json:"reacted"`
	Skipped           int64     `json:"skipped"`
	Failed            int64     `json:"failed"`
	StartedAt         time.Time `json:"started_at"`
	UptimeSeconds     float64   `json:"uptime_seconds"`
	PollIntervalMs    int64     `json:"poll_interval_ms"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	LastSeenMessageID string    `json:"last_seen_message_id,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.stats.Snapshot()

	resp := statsResponse{
		Reacted:           snap.Reacted,
		Skipped:           snap.Skipped,
		Failed:            snap.Failed,
		StartedAt:         snap.StartedAt,
		UptimeSeconds:     snap.Uptime.Seconds(),
		PollIntervalMs:    s.backoff.Interval().Milliseconds(),
		ConsecutiveErrors: s.backoff.ConsecutiveErrors(),
	}
	if id, ok := s.service.CursorPosition(); ok {
		resp.LastSeenMessageID = id
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
