package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonwraymond/ltdstatus/health"
	"github.com/jonwraymond/ltdstatus/observe"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 120 * time.Second
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string

	// Checker produces reports. Required.
	Checker health.Checker

	// Metadata is served at the metadata routes.
	Metadata Metadata

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Logger receives request and lifecycle logs. Default: no-op.
	Logger observe.Logger
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	checker    health.Checker
	metadata   Metadata
	gatherer   prometheus.Gatherer
	logger     observe.Logger
	router     http.Handler
	httpServer *http.Server
}

// New builds a Server from opts.
func New(opts Options) (*Server, error) {
	if opts.Checker == nil {
		return nil, ErrNilChecker
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = observe.NopLogger()
	}

	s := &Server{
		checker:  opts.Checker,
		metadata: opts.Metadata,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info(context.Background(), "server listening", observe.F("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
