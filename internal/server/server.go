package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/core/engine"
	"github.com/voxgate/voxgate/internal/core/store"
	apperrors "github.com/voxgate/voxgate/internal/errors"
	"github.com/voxgate/voxgate/internal/observability"
	"github.com/voxgate/voxgate/internal/server/handlers"
	servermw "github.com/voxgate/voxgate/internal/server/middleware"
)

// Dependencies carries the domain components the HTTP surface serves.
type Dependencies struct {
	Manager           *engine.Manager
	Transcriber       *engine.Transcriber
	TranscribeLimiter *engine.Limiter
	EchoLimiter       *engine.Limiter
	ProcessLimiter    *engine.Limiter
	Store             *store.Store // nil when history is disabled
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	deps   Dependencies
}

// New creates a new HTTP server instance. Zero timeout values in cfg fall
// back to the package defaults in Start.
func New(cfg config.ServerConfig, deps Dependencies) *Server {
	r := chi.NewRouter()

	// RealIP first so rate limiting keys on the real client behind proxies
	r.Use(middleware.RealIP)

	// Custom middleware in order: RequestID → Metrics → Recovery
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.ErrorHandler)
	r.Use(servermw.Recovery)

	// Standardized error responses using centralized HandleError
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewNotFoundError("The requested resource was not found")
		HandleError(w, req, err)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource")
		HandleError(w, req, err)
	})

	s := &Server{
		router: r,
		cfg:    cfg,
		deps:   deps,
	}

	// Ensure handlers use the centralized error responder
	handlers.SetHTTPErrorResponder(HandleError)

	s.registerRoutes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	readTimeout, writeTimeout, idleTimeout := s.timeouts()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		zap.String("addr", addr),
		zap.Duration("read_timeout", readTimeout),
		zap.Duration("write_timeout", writeTimeout),
		zap.Duration("idle_timeout", idleTimeout))

	return s.server.ListenAndServe()
}

// timeouts resolves the configured HTTP timeouts, substituting defaults for
// unset values.
func (s *Server) timeouts() (read, write, idle time.Duration) {
	read = s.cfg.ReadTimeout
	if read == 0 {
		read = 30 * time.Second
	}
	write = s.cfg.WriteTimeout
	if write == 0 {
		write = 30 * time.Second
	}
	idle = s.cfg.IdleTimeout
	if idle == 0 {
		idle = 120 * time.Second
	}
	return read, write, idle
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.cfg.Port
}
