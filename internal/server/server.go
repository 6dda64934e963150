package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dockerlab/demoapp/internal/config"
	appmw "github.com/dockerlab/demoapp/internal/middleware"
)

// Server runs the demo HTTP API.
type Server struct {
	cfg    *config.Config
	log    *zap.Logger
	router chi.Router
	http   *http.Server
}

// New creates a new server.
func New(cfg *config.Config, deps *Deps) *Server {
	r := chi.NewRouter()

	r.Use(appmw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.Record(deps.Log.Logger, deps.Log.Local(), deps.Metrics))
	r.Use(appmw.Recover(deps.Log.Logger, cfg.IsDevelopment()))

	r.Get("/", deps.Routes.Root)
	r.Get("/health", deps.Routes.Health)
	r.Get("/status", deps.Routes.Status)
	r.Get("/test-logs", deps.Routes.TestLogs)
	r.Method(http.MethodGet, "/metrics", deps.Scrape)

	r.NotFound(deps.Routes.NotFound)
	r.MethodNotAllowed(deps.Routes.NotFound)

	addr := fmt.Sprintf(":%d", cfg.Port)
	return &Server{
		cfg:    cfg,
		log:    deps.Log.Logger,
		router: r,
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return ln, nil
}

// Serve serves HTTP on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("starting server", zap.String("addr", ln.Addr().String()))
	return s.http.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
