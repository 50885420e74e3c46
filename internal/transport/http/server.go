package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sri-Rahul/linkanalysis/internal/analytics"
	"github.com/Sri-Rahul/linkanalysis/internal/service"
)

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	port    string
}

// NewServer creates a new HTTP server
func NewServer(links service.LinkService, engine *analytics.Engine, port, serverURL string, verbose bool) *Server {
	handler := NewHandler(links, engine, serverURL)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(handler, verbose),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  server,
		port:    port,
	}
}

// NewRouter builds the routing table and middleware chain
func NewRouter(handler *Handler, verbose bool) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/urls", handler.LinksHandler)
	mux.HandleFunc("/api/urls/", handler.LinksDetailHandler)
	mux.HandleFunc("/api/analytics/summary", handler.Summary)
	mux.HandleFunc("/api/analytics/urls/", handler.AnalyticsDetailHandler)

	// Operational endpoints
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Redirect endpoint (catch-all)
	mux.HandleFunc("/", handler.Redirect)

	var finalHandler http.Handler = mux
	finalHandler = MetricsMiddleware(finalHandler)
	if verbose {
		loggingMiddleware := NewLoggingMiddleware(verbose)
		finalHandler = loggingMiddleware.Middleware(finalHandler)
	}

	return finalHandler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Server starting on port %s", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Server shutting down...")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}
