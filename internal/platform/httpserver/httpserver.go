package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"
)

var (
	// ErrServerStopped is returned by Start once Stop has been called.
	ErrServerStopped = errors.New("httpserver: server stopped")
	// ErrAlreadyRunning is returned by Start while the server is serving.
	ErrAlreadyRunning = errors.New("httpserver: server already running")
)

const defaultReadHeaderTimeout = 5 * time.Second

// Server owns a listening socket and the goroutine serving it. Start returns
// once the socket is bound; Stop closes the listener and waits for in-flight
// requests without aborting them.
type Server struct {
	handler           http.Handler
	logger            *slog.Logger
	maxConnections    int
	readHeaderTimeout time.Duration

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
	stopped  bool
	running  atomic.Bool
}

type Option func(*Server)

// WithLogger sets the logger used for lifecycle and serve errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxConnections bounds concurrently open connections. Zero means unbounded.
func WithMaxConnections(n int) Option {
	return func(s *Server) {
		s.maxConnections = n
	}
}

// WithReadHeaderTimeout overrides the header read deadline.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.readHeaderTimeout = d
	}
}

// New builds a server with sane defaults for this project.
func New(handler http.Handler, opts ...Option) *Server {
	s := &Server{
		handler:           handler,
		logger:            slog.Default(),
		readHeaderTimeout: defaultReadHeaderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds addr and serves on a background goroutine.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrServerStopped
	}
	if s.srv != nil {
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if s.maxConnections > 0 {
		ln = netutil.LimitListener(ln, s.maxConnections)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	done := make(chan struct{})
	s.srv, s.listener, s.done = srv, ln, done
	s.running.Store(true)

	go func() {
		defer close(done)
		defer s.running.Store(false)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped unexpectedly", "addr", ln.Addr().String(), "error", err)
		}
	}()

	s.logger.Info("server started", "addr", ln.Addr().String(), "max_connections", s.maxConnections)
	return nil
}

// Stop closes the listener, then waits for active requests to finish or for
// ctx to expire, and finally joins the serve goroutine. Requests still running
// when ctx expires are left to complete on their own.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	if s.srv == nil {
		return nil
	}

	s.running.Store(false)
	err := s.srv.Shutdown(ctx)
	<-s.done

	if err != nil {
		s.logger.Warn("server stopped before in-flight requests drained", "addr", s.listener.Addr().String(), "error", err)
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped", "addr", s.listener.Addr().String())
	return nil
}

// IsRunning reports whether the dispatch loop is accepting connections.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
