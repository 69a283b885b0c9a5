// Package server exposes the solver over HTTP.
//
// # Endpoints
//
//   - POST /v1/solve: solve a board diagram or token list
//   - GET /healthz: liveness and build version
//   - GET /metrics: Prometheus metrics, when a handler is configured
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with a
// status derived from the error code: 400 for invalid input, 422 for puzzles
// that have no answer within the limits, 504 when the request times out.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/burrow/pkg/buildinfo"
	"github.com/matzehuels/burrow/pkg/solver"
)

const (
	// maxBodyBytes bounds a solve request. Boards are far smaller.
	maxBodyBytes = 64 << 10

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	MaxExpansions  int          // Upper bound on a request's budget; 0 means none
	Metrics        http.Handler // Served on /metrics when set
	Logger         *log.Logger

	// Base holds the puzzle geometry, token types and search settings that
	// requests are laid over.
	Base solver.Options
}

// Server is the HTTP front end of a solver.Runner.
type Server struct {
	runner *solver.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server around runner.
func New(runner *solver.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{runner: runner, opts: opts, logger: opts.Logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
	})
	return r
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// logRequests logs one line per request at info level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
