// Package server exposes the brand report API over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BAWSA3/brandos/internal/conductor"
	"github.com/BAWSA3/brandos/internal/server/ratelimit"
	"github.com/BAWSA3/brandos/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port int
	// StreamKeepAlive is the SSE comment ping interval.
	StreamKeepAlive time.Duration
	RateLimit       ratelimit.Config
}

// Server serves report creation, retrieval, and streaming. The store
// is optional; when present it backs report history after the cache
// and run tracker have forgotten a handle.
type Server struct {
	httpServer  *http.Server
	conductor   *conductor.Conductor
	db          *store.DB
	rateLimiter *ratelimit.Limiter
	keepAlive   time.Duration
	logger      *zap.Logger
}

// New creates a server around an assembled conductor. db may be nil.
func New(cfg Config, cond *conductor.Conductor, db *store.DB, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	keepAlive := cfg.StreamKeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}

	s := &Server{
		conductor:   cond,
		db:          db,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		keepAlive:   keepAlive,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/reports/{handle}", s.handleCreateReport)
	mux.HandleFunc("GET /api/reports/{handle}", s.handleGetReport)
	mux.HandleFunc("GET /api/reports/{handle}/stream", s.handleStreamReport)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the stream endpoint holds its connection
		// open for the life of a run.
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Start listens until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	if s.db != nil {
		s.db.Close()
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) newKeepAliveTicker() *time.Ticker {
	return time.NewTicker(s.keepAlive)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.rateLimiter.Allow(clientIP(r), r.Method, r.URL.Path)
		if !info.Allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())+1))
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
