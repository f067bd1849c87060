// Package server exposes timelines and their layouts over a JSON HTTP API.
//
// Every /api/v1/timeline route requires a bearer token issued by pkg/auth;
// the token subject selects whose timeline is read.
//
//	GET  /health
//	GET  /api/v1/timeline                   snapshot
//	GET  /api/v1/timeline/layout            layout JSON
//	GET  /api/v1/timeline/layout.svg        rendered SVG
//	GET  /api/v1/timeline/nodes/{nodeID}    detail panel data
//	POST /api/v1/auth/refresh               new token for an old one
//
// Layout routes accept refresh, side_order, no_header and detailed query
// parameters. Errors are JSON objects {"code": ..., "message": ...}.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lifetree/lifetree/pkg/auth"
	"github.com/lifetree/lifetree/pkg/pipeline"
)

// Server serves the API. Runner, Validator and Issuer are required.
type Server struct {
	Runner    *pipeline.Runner
	Validator *auth.Validator
	Issuer    *auth.Issuer
	Logger    *log.Logger

	// Defaults are the layout options requests start from.
	Defaults pipeline.Options

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string

	// RefreshWindow bounds how long after expiry a token can be refreshed.
	RefreshWindow time.Duration
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	logger := s.logger()

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(recoverer(logger))
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Cache", "ETag"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/refresh", s.refresh)

		r.Route("/timeline", func(r chi.Router) {
			r.Use(authenticate(s.Validator))
			r.Get("/", s.timeline)
			r.Get("/layout", s.layout)
			r.Get("/layout.svg", s.layoutSVG)
			r.Get("/nodes/{nodeID}", s.node)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}
