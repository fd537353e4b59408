// Package server provides the HTTP API for the compliance audit service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"readily-hq/auditor/pkg/audit"
	"readily-hq/auditor/pkg/config"
	"readily-hq/auditor/pkg/questionnaire"
	"readily-hq/auditor/pkg/server/middleware"
	"readily-hq/auditor/pkg/telemetry/metrics"
)

// DocumentCounter reports how many policy documents are indexed.
type DocumentCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Server is the HTTP front end: evaluation endpoints, questionnaire
// upload, health and metrics.
type Server struct {
	config        config.ServerConfig
	auditor       *audit.Service
	questionnaire *questionnaire.Extractor
	counter       DocumentCounter
	metrics       *metrics.Collector
	logger        *slog.Logger
	templateDir   string

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options carries the collaborators a Server needs.
type Options struct {
	Config        config.ServerConfig
	Auditor       *audit.Service
	Questionnaire *questionnaire.Extractor
	Counter       DocumentCounter
	Metrics       *metrics.Collector
	Logger        *slog.Logger
	TemplateDir   string
}

// New creates a server. The metrics collector may be nil, which
// disables the /metrics endpoint.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:        opts.Config,
		auditor:       opts.Auditor,
		questionnaire: opts.Questionnaire,
		counter:       opts.Counter,
		metrics:       opts.Metrics,
		logger:        logger.With("component", "server"),
		templateDir:   opts.TemplateDir,
		shutdownChan:  make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled, a
// shutdown is requested, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting audit server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop requests a graceful shutdown from another goroutine.
func (s *Server) Stop() {
	select {
	case s.shutdownChan <- struct{}{}:
	default:
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("audit server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /process_question", s.handleEvaluate)
	mux.HandleFunc("POST /batch_evaluate", s.handleBatchEvaluate)
	mux.HandleFunc("POST /upload_questionnaire", s.handleUploadQuestionnaire)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)
	return handler
}
