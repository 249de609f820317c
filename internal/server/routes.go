package server

import (
	"context"
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/voxgate/voxgate/internal/appid"
	"github.com/voxgate/voxgate/internal/observability"
	"github.com/voxgate/voxgate/internal/server/handlers"
	servermw "github.com/voxgate/voxgate/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	ai := handlers.NewAIHandlers(s.deps.Transcriber, s.deps.Manager, s.deps.Store)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/", handlers.APIInfo)
		r.Get("/status", handlers.APIStatus)
		r.Get("/users", handlers.ListUsers)
		r.Post("/users", handlers.CreateUser)

		if s.deps.EchoLimiter != nil {
			r.With(servermw.RateLimit("echo", s.deps.EchoLimiter, respondWithCode)).
				Post("/echo", handlers.Echo)
		} else {
			r.Post("/echo", handlers.Echo)
		}

		if s.deps.ProcessLimiter != nil {
			r.With(servermw.RateLimit("process", s.deps.ProcessLimiter, respondWithCode)).
				Post("/process", handlers.ProcessData)
		} else {
			r.Post("/process", handlers.ProcessData)
		}

		r.Route("/ai", func(r chi.Router) {
			r.Get("/health", ai.Health)
			r.Get("/supported-languages", handlers.SupportedLanguages)
			r.Get("/transcriptions", ai.Transcriptions)

			if s.deps.TranscribeLimiter != nil {
				r.With(servermw.RateLimit("transcribe", s.deps.TranscribeLimiter, respondWithCode)).
					Post("/transcribe", ai.Transcribe)
			} else {
				r.Post("/transcribe", ai.Transcribe)
			}
		})
	})

	// Admin signal endpoint (optional, requires VOXGATE_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	// Get admin token from environment (identity-aware)
	ctx := context.Background()
	identity, _ := appid.Get(ctx)
	envPrefix := "VOXGATE_"
	if identity != nil && identity.EnvPrefix != "" {
		envPrefix = identity.EnvPrefix
	}

	adminToken := os.Getenv(envPrefix + "ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + envPrefix + "ADMIN_TOKEN set)")
		}
		return
	}

	// HTTP signal handler with bearer token auth and its own rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil, // use default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
