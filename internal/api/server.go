package api

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the HTTP router and server lifecycle.
type Server struct {
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// NewServer creates the API server with all routes configured.
func NewServer(h *Handlers) *Server {
	return &Server{
		handler:  SetupRoutes(h),
		handlers: h,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// A campaign execution holds the request while every SMS goes
		// out with a pause in between, so the write timeout must cover
		// the worst-case batch, not a single handler.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
