// Package server exposes the job pipeline over HTTP: job creation, status
// polling, approval-gated upload and artifact serving.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"autotube/jobs"
)

// PipelineRunner runs one job to completion in the background
type PipelineRunner interface {
	Run(ctx context.Context, jobID, topic string)
}

// Config wires the HTTP layer's collaborators
type Config struct {
	Port      int
	OutputDir string
	Store     *jobs.Store
	Runner    PipelineRunner
	Uploader  jobs.Publisher
	Logger    *slog.Logger
	StartTime time.Time
}

// Server wraps the HTTP server lifecycle
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the API server
func NewServer(cfg Config) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      NewRouter(cfg),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start blocks serving requests until shutdown
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
