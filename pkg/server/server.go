package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/talklike/pkg/observability/metrics"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

const (
	// DefaultAddr is the HTTP listen address.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
	// MaxRequestBytes caps a request body.
	MaxRequestBytes = 1 << 20
)

// Server serves the HTTP API for one pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	metrics *metrics.Metrics
	addr    string
	timeout time.Duration

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithMetrics records request metrics in m and serves them at /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithShutdownTimeout sets how long in-flight requests may finish.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New builds the router. A nil logger uses the charm default logger.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		logger:  logger,
		addr:    DefaultAddr,
		timeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/filters", s.handleListFilters)
		r.Get("/filters/{id}", s.handleGetFilter)
		r.Post("/transform", s.handleTransform)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on the configured address until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("http api listening", "addr", ln.Addr().String())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
