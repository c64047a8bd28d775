// Package web provides the HTTP server and routing
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/app"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/web/handlers"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	handlers *handlers.Handlers
	logger   *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(application *app.App, port, downloadsPath string) *Server {
	h := handlers.NewHandlers(application, downloadsPath)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server:   server,
		handlers: h,
		logger:   slog.Default(),
	}
}

// NewRouter builds the route table for the given handlers
func NewRouter(h *handlers.Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Views
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /library", h.Library)
	mux.HandleFunc("GET /settings", h.Settings)
	mux.HandleFunc("GET /help", h.Help)

	// JSON API
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /api/analyze", h.Analyze)
	mux.HandleFunc("POST /api/download", h.Download)
	mux.HandleFunc("POST /api/download/cancel", h.CancelDownload)
	mux.HandleFunc("GET /api/progress", h.Progress)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("DELETE /api/history", h.ClearHistory)
	mux.HandleFunc("POST /api/history/clear", h.ClearHistory)
	mux.HandleFunc("POST /api/history/{id}/select", h.SelectFromHistory)
	mux.HandleFunc("GET /api/settings", h.GetSettings)
	mux.HandleFunc("POST /api/settings", h.SaveSettings)

	// Saved demo files
	mux.HandleFunc("GET /downloads/{file}", h.ServeDownload)

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
