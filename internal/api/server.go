package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/radutopala/rickroller/internal/logging"
	"github.com/radutopala/rickroller/internal/metrics"
)

// Options configures the HTTP server.
type Options struct {
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// Server exposes the MCP endpoint plus health and metrics over HTTP.
type Server struct {
	router          chi.Router
	logger          *slog.Logger
	shutdownTimeout time.Duration
	server          *http.Server
	listener        net.Listener
	started         chan struct{}
}

// NewServer creates a new API server mounting mcpHandler at /mcp.
// m may be nil, in which case /metrics is not served. An empty origin list
// disables CORS headers entirely.
func NewServer(mcpHandler http.Handler, m *metrics.Metrics, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(corsHandler(opts.CORSAllowedOrigins))
	}

	r.Get("/healthz", handleHealth)
	r.Handle("/mcp", mcpHandler)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return &Server{
		router:          r,
		logger:          logger,
		shutdownTimeout: opts.ShutdownTimeout,
		started:         make(chan struct{}),
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Started is closed once the server is listening.
func (s *Server) Started() <-chan struct{} { return s.started }

// Addr returns the bound address. Only valid after Started is closed.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run listens on addr and serves until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	close(s.started)
	s.logger.Info("api server started", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		s.logger.Info("api server stopped")
		return nil
	})
	return g.Wait()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
