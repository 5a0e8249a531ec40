package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/sampler"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// StateFunc reports the sampling loop's current state.
type StateFunc func() sampler.State

// Server exposes self metrics and the loop's health over HTTP.
type Server struct {
	cfg         config.ServerConfig
	componentID string
	logger      *zap.Logger
	server      *http.Server
	registry    *prometheus.Registry
	mux         *customMux
	state       StateFunc
	listener    net.Listener
}

// statusWriter records the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// customMux records every registered pattern for the index page and startup log.
type customMux struct {
	http.ServeMux
	routes []string
	mu     sync.Mutex
}

func (m *customMux) Handle(pattern string, handler http.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, pattern)
	m.ServeMux.Handle(pattern, handler)
}

func (m *customMux) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	m.Handle(pattern, http.HandlerFunc(handler))
}

func (m *customMux) Routes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.routes...)
}

// DefaultShutdownTimeout bounds Shutdown when the caller has no deadline of its own.
const DefaultShutdownTimeout = 5 * time.Second

// NewHTTPServer wires /, /metrics and /health. Nothing listens until Start.
func NewHTTPServer(cfg config.ServerConfig, componentID string, logger *zap.Logger, registry *prometheus.Registry, state StateFunc) *Server {
	srv := &Server{
		cfg:         cfg,
		componentID: componentID,
		logger:      logger,
		registry:    registry,
		mux:         &customMux{},
		state:       state,
	}
	srv.registerEndpoints()

	srv.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	return srv
}

// Handler is the full handler chain, request logging included.
func (s *Server) Handler() http.Handler {
	return s.logMiddleware(&s.mux.ServeMux)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.logger.Debug(
			"HTTP request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type healthResponse struct {
	State       string `json:"state"`
	ComponentID string `json:"component_id"`
}

func (s *Server) registerEndpoints() {
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>nmd</title></head>
<body>
	<h1>Node Monitoring Daemon</h1>
	<p>Version: <code>%s</code></p>
	<p>Component: <code>%s</code></p>
	<a href="/health">/health - loop state</a><br>
	<a href="/metrics">/metrics - Prometheus metrics</a>
</body>
</html>
`, Version, s.componentID)
	})

	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(s.logger),
	}))

	// 503 while connecting or stopped
	s.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		state := s.state()
		status := http.StatusOK
		if state == sampler.StateConnecting || state == sampler.StateStopped {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(healthResponse{State: state.String(), ComponentID: s.componentID})
	})
}

// Start binds the listener synchronously and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.logger.Info(
		"starting HTTP server",
		zap.String("listen_addr", ln.Addr().String()),
		zap.Strings("handle_funcs", s.mux.Routes()),
	)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultShutdownTimeout)
		defer cancel()
	}

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded")
			return nil
		}
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server shutdown successfully")
	return nil
}
