package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/core/engine"
	"github.com/voxgate/voxgate/internal/core/speech"
	"github.com/voxgate/voxgate/internal/core/store"
	errwrap "github.com/voxgate/voxgate/internal/errors"
	"github.com/voxgate/voxgate/internal/metrics"
	"github.com/voxgate/voxgate/internal/observability"
	"github.com/voxgate/voxgate/internal/server"
	"github.com/voxgate/voxgate/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the voice transcription HTTP server with graceful shutdown support.

The whisper model loads lazily on the first transcription request and is
evicted after sitting idle, so a freshly started server holds no model in
memory until traffic arrives.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (placeholder - restart recommended)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get app identity for telemetry namespace
		identity := GetAppIdentity()
		namespace := identity.TelemetryNamespace()

		// Initialize server logger with namespace
		logLevel := viper.GetString("logging.level")
		observability.InitServerLogger(identity.BinaryName, logLevel, namespace)

		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			observability.ServerLogger.Error("Invalid configuration", zap.Error(err))
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration invalid")
		}

		metricsPort := cfg.Metrics.Port
		if metricsPort == 0 {
			metricsPort = 9090
		}

		// Initialize metrics with namespace; when disabled the /metrics
		// endpoint reports 503 instead of scraping an exporter
		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(identity.BinaryName, metricsPort, namespace); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics",
					zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		} else {
			observability.ServerLogger.Info("Metrics collection disabled by configuration")
		}

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("host", serverHost),
			zap.Int("port", serverPort),
			zap.Int("metrics_port", metricsPort),
			zap.String("model_path", cfg.Engine.ModelPath),
			zap.Duration("model_idle_timeout", cfg.Engine.IdleTimeout))

		// Shared recognizer behind lazy construction and idle eviction
		modelPath := cfg.Engine.ModelPath
		factory := func() (speech.Recognizer, error) {
			observability.ServerLogger.Info("Loading whisper model",
				zap.String("model_path", modelPath))
			rec, err := speech.NewWhisper(modelPath)
			metrics.RecordModelConstruction(err == nil)
			if err == nil {
				metrics.SetModelLoaded(true)
			}
			return rec, err
		}

		manager := engine.NewManager(factory, engine.ManagerConfig{
			IdleTimeout:   cfg.Engine.IdleTimeout,
			SweepInterval: cfg.Engine.SweepInterval,
			OnEvict: func() {
				observability.ServerLogger.Info("Whisper model evicted after idle timeout")
				metrics.RecordModelEviction()
				metrics.SetModelLoaded(false)
			},
		})
		manager.Start()

		transcribeLimiter := engine.NewLimiter(engine.LimiterConfig{
			MaxRequests:   cfg.Limits.Transcribe.MaxRequests,
			Window:        cfg.Limits.Transcribe.Window,
			SweepInterval: cfg.Limits.KeySweepInterval,
		})
		transcribeLimiter.Start()

		echoLimiter := engine.NewLimiter(engine.LimiterConfig{
			MaxRequests:   cfg.Limits.Echo.MaxRequests,
			Window:        cfg.Limits.Echo.Window,
			SweepInterval: cfg.Limits.KeySweepInterval,
		})
		echoLimiter.Start()

		processLimiter := engine.NewLimiter(engine.LimiterConfig{
			MaxRequests:   cfg.Limits.Process.MaxRequests,
			Window:        cfg.Limits.Process.Window,
			SweepInterval: cfg.Limits.KeySweepInterval,
		})
		processLimiter.Start()

		// Optional transcription history store
		var db *store.Store
		if cfg.Store.Enabled {
			db, err = store.Open(cmd.Context(), cfg.Store)
			if err != nil {
				observability.ServerLogger.Error("Failed to open history store", zap.Error(err))
				return errwrap.WrapDatabaseError(cmd.Context(), err, "history store open failed")
			}
			if err := store.Migrate(cmd.Context(), db); err != nil {
				_ = db.Close()
				observability.ServerLogger.Error("Failed to migrate history store", zap.Error(err))
				return errwrap.WrapDatabaseError(cmd.Context(), err, "history store migration failed")
			}
			observability.ServerLogger.Info("Transcription history store ready",
				zap.String("path", cfg.Store.Path))
		}

		// Initialize health manager
		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		hm.RegisterChecker("app_identity", identityHealthChecker{
			binaryName: identity.BinaryName,
			envPrefix:  identity.EnvPrefix,
			configName: identity.ConfigName,
		})
		if db != nil {
			hm.RegisterChecker("history_store", db)
		}

		// Create server
		serverCfg := cfg.Server
		serverCfg.Host = serverHost
		serverCfg.Port = serverPort
		srv := server.New(serverCfg, server.Dependencies{
			Manager:           manager,
			Transcriber:       engine.NewTranscriber(manager, cfg.Engine.TempDir),
			TranscribeLimiter: transcribeLimiter,
			EchoLimiter:       echoLimiter,
			ProcessLimiter:    processLimiter,
			Store:             db,
		})

		// Set app identity for handlers
		handlers.SetAppIdentity(identity)
		handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)

		metrics.SetServerStartTime(time.Now().Unix())

		// Get shutdown timeout from config
		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered,
		// first executed): HTTP drain, then engine teardown, then store close,
		// then logger flush.

		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		// Handler 2: Close the history store
		if db != nil {
			signals.OnShutdown(func(ctx context.Context) error {
				observability.ServerLogger.Info("Closing history store...")
				return db.Close()
			})
		}

		// Handler 3: Stop limiters and evict the model
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Stopping admission and engine lifecycles...")
			transcribeLimiter.Stop()
			echoLimiter.Stop()
			processLimiter.Stop()
			manager.Stop()
			return nil
		})

		// Handler 4: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		// Register config reload handler (SIGHUP)
		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); ok {
					observability.ServerLogger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				observability.ServerLogger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			observability.ServerLogger.Info("Configuration reloaded successfully",
				zap.String("file", viper.ConfigFileUsed()))

			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		// Start server in background goroutine
		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", serverHost),
				zap.Int("port", serverPort))
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		// Start signal listener in background
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		// Wait for error or shutdown completion
		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
