// Package api serves a minimal read-only observability surface: /health and
// /status. There is no dashboard UI and no WebSocket event stream: exactly
// one symbol runs per process, so a single JSON object is enough.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server runs the read-only status HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer builds a Server bound to the given port, backed by provider for
// the /status response.
func NewServer(port int, provider StatusProvider, logger *slog.Logger) *Server {
	handlers := NewHandlers(provider, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HandleHealth)
	mux.HandleFunc("/status", handlers.HandleStatus)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.With("component", "api_server"),
	}
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("observability server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("observability server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.logger.Info("stopping observability server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
