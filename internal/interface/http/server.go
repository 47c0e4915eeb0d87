// Package http serves the daemon's operational endpoints: Prometheus metrics,
// liveness and readiness checks, and read-only views of the current day and
// lifetime stats.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/levelup-fitness/levelup-core/internal/application/query"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Addr is the listen address (default ":9090").
	Addr string

	// ReadHeaderTimeout bounds header reads.
	ReadHeaderTimeout time.Duration

	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              ":9090",
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
}

// Reader is the read side of the application the views are built from.
type Reader interface {
	Dashboard(ctx context.Context) (*query.DashboardResult, error)
	Stats(ctx context.Context, q query.StatsQuery) (*query.StatsResult, error)
}

// Dependencies holds what the server routes to. Nil fields disable routes.
type Dependencies struct {
	Metrics http.Handler
	Health  *HealthChecker
	Reader  Reader
	Logger  *slog.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the operational HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	router     *http.ServeMux
	httpServer *http.Server
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewServer creates a Server.
func NewServer(config Config, deps Dependencies) *Server {
	if config.Addr == "" {
		config.Addr = DefaultConfig().Addr
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger.With(logger.Component("http")),
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /healthz", s.handleLive)
	s.router.HandleFunc("GET /readyz", s.handleReady)
	if s.deps.Metrics != nil {
		s.router.Handle("GET /metrics", s.deps.Metrics)
	}
	if s.deps.Reader != nil {
		s.router.HandleFunc("GET /v1/dashboard", s.handleDashboard)
		s.router.HandleFunc("GET /v1/stats", s.handleStats)
	}
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("serving http", slog.String("addr", s.config.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// StartAsync runs Start in a goroutine. The channel yields at most one error
// and is closed when the server stops.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, HealthStatus{Healthy: true, Timestamp: time.Now().UTC()})
		return
	}
	status := s.deps.Health.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Reader.Dashboard(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "dashboard query failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var q query.StatsQuery
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		q.HistoryDays = days
	}
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.deps.Reader.Stats(r.Context(), q)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "stats query failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyRequestID contextKey = "request_id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, id)))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rw.statusCode),
			logger.Latency(time.Since(start)),
			slog.String("request_id", requestID(r.Context())),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
