package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"waitline/internal/api"
	"waitline/internal/config"
	"waitline/internal/logging"
	"waitline/internal/queue"
)

// Server serves the queue API over HTTP.
type Server struct {
	bind       string
	adminToken string
	logger     *slog.Logger
	engine     *queue.Engine
	svc        *api.Service

	lockPath string
	lock     *flock.Flock
	listener net.Listener
	server   *http.Server
}

// New builds a server around the engine. The listener is not opened until
// Start.
func New(cfg *config.Config, engine *queue.Engine, logger *slog.Logger) (*Server, error) {
	if cfg == nil || engine == nil {
		return nil, errors.New("server requires config and engine")
	}
	bind := strings.TrimSpace(cfg.Server.Bind)
	if bind == "" {
		return nil, errors.New("server bind address is not configured")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "waitline.lock")
	srv := &Server{
		bind:       bind,
		adminToken: strings.TrimSpace(cfg.Server.AdminToken),
		logger:     logger,
		engine:     engine,
		svc:        api.NewService(engine.Store()),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/center", srv.handleCenter)
	mux.HandleFunc("/api/stations", srv.handleStations)
	mux.HandleFunc("/api/report", srv.handleReport)
	mux.HandleFunc("/api/finished", srv.handleFinished)
	mux.HandleFunc("/api/history/", srv.handleHistory)
	mux.HandleFunc("/api/operators/verify", srv.handleVerifyOperator)
	mux.HandleFunc("/api/queue", srv.handleEnqueue)
	mux.HandleFunc("/api/queue/call-next", srv.handleCallNext)
	mux.HandleFunc("/api/queue/insert", srv.handleInsert)
	mux.HandleFunc("/api/queue/finish", srv.handleFinish)
	mux.HandleFunc("/api/queue/release", srv.handleRelease)
	mux.HandleFunc("/api/queue/transfer", srv.handleTransfer)
	mux.HandleFunc("/api/stations/toggle", srv.handleToggleActive)
	if srv.adminToken != "" {
		mux.HandleFunc("/admin/entries", srv.adminAuth(srv.handleAdminEntries))
		mux.HandleFunc("/admin/entries/", srv.adminAuth(srv.handleAdminEntry))
		mux.HandleFunc("/admin/stations", srv.adminAuth(srv.handleAdminStations))
		mux.HandleFunc("/admin/stations/", srv.adminAuth(srv.handleAdminStation))
	}

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start acquires the instance lock and begins serving. It returns once the
// listener is accepting; the server shuts down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another waitline instance is already running")
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.log().Info("listening", slog.String("address", listener.Addr().String()), slog.String("lock", s.lockPath))
	return nil
}

// Stop drains in-flight requests and releases the instance lock.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	if err := s.lock.Unlock(); err != nil {
		s.log().Warn("failed to release instance lock", logging.Error(err))
	}
}

// Addr reports the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "server"))
	}
	return logging.NewNop()
}
