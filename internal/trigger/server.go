package trigger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shaharia-lab/triggerd/internal/logger"
)

// LoopbackHost is the only address the server ever binds.
const LoopbackHost = "127.0.0.1"

const (
	DefaultShutdownTimeout       = 10 * time.Second
	DefaultMaxBodyBytes    int64 = 1_000_000
	readHeaderTimeout            = 10 * time.Second
)

// Config holds the tunables of a Server
type Config struct {
	// ShutdownTimeout bounds the graceful part of Stop before connections are closed.
	ShutdownTimeout time.Duration
	// MaxBodyBytes is the largest accepted POST body. Larger bodies drop the connection.
	MaxBodyBytes int64
}

// Server owns at most one loopback listener. The zero value is not usable; call NewServer.
type Server struct {
	cfg Config
	log logger.Logger

	mu   sync.Mutex
	srv  *http.Server
	port int
}

// NewServer creates an idle Server.
func NewServer(cfg Config, log logger.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if log == nil {
		log = logger.Discard
	}
	return &Server{
		cfg: cfg,
		log: log.WithField("component", "trigger"),
	}
}

// Start binds 127.0.0.1:port and serves trigger requests with h. It returns true
// when the server is listening, including when it was already listening (the
// existing port is kept). Bind failures are logged and reported as false.
func (s *Server) Start(port int, h Handler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return true
	}
	if h == nil {
		s.log.Warn("Failed to start HTTP trigger server", map[string]interface{}{
			logger.ErrorKey: "handler is nil",
		})
		return false
	}

	addr := net.JoinHostPort(LoopbackHost, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.log.Warn("Failed to start HTTP trigger server", map[string]interface{}{
			"address":       addr,
			logger.ErrorKey: err,
		})
		return false
	}

	srv := &http.Server{
		Handler:           s.routes(h),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          log.New(serveErrorWriter{log: s.log}, "", 0),
	}
	s.srv = srv
	s.port = ln.Addr().(*net.TCPAddr).Port

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("HTTP server error", map[string]interface{}{logger.ErrorKey: err})
		}
	}()

	s.log.Info("HTTP trigger server listening", map[string]interface{}{
		"address": fmt.Sprintf("http://%s", ln.Addr().String()),
	})
	return true
}

// Stop closes the listener if one is active. Redundant calls are no-ops.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.port = 0
	s.mu.Unlock()

	if srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.log.Debug("Graceful shutdown incomplete, closing connections", map[string]interface{}{
			logger.ErrorKey: err,
		})
		_ = srv.Close()
	}
	s.log.Info("HTTP trigger server stopped", nil)
}

// Running reports whether a listener is active.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srv != nil
}

// Port returns the bound port, or 0 when idle.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Addr returns the base URL of the listener, or "" when idle.
func (s *Server) Addr() string {
	port := s.Port()
	if port == 0 {
		return ""
	}
	return LocalURL(port)
}

// Handler returns the router the server would use for h.
func (s *Server) Handler(h Handler) http.Handler {
	return s.routes(h)
}

// LocalURL returns the base URL of a trigger server on the given loopback port.
func LocalURL(port int) string {
	return "http://" + net.JoinHostPort(LoopbackHost, strconv.Itoa(port))
}

// serveErrorWriter routes net/http's internal error log (accept failures,
// TLS handshake noise, handler panics) into the structured logger.
type serveErrorWriter struct {
	log logger.Logger
}

func (w serveErrorWriter) Write(p []byte) (int, error) {
	detail := strings.TrimSpace(string(p))
	fields := map[string]interface{}{"detail": detail}

	// Queries are split on '&' only, so a ';' is part of a value.
	if strings.Contains(detail, "URL query contains semicolon") {
		w.log.Debug("HTTP server notice", fields)
		return len(p), nil
	}
	w.log.Warn("HTTP server error", fields)
	return len(p), nil
}
