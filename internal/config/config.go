// Package config defines the application configuration surface. Values are
// layered by the CLI: setDefaults() in internal/cmd, then an optional config
// file, then environment variables with the app-identity prefix.
package config

import "time"

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EngineConfig controls the shared speech recognizer lifecycle.
type EngineConfig struct {
	// ModelPath points at the whisper.cpp model file.
	ModelPath string `mapstructure:"model_path"`

	// IdleTimeout is how long the loaded model may sit unused before the
	// background sweep evicts it.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// SweepInterval is how often the eviction sweep runs.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// TempDir is where per-request audio files are staged; empty means the
	// OS temp directory.
	TempDir string `mapstructure:"temp_dir"`
}

// RateLimitConfig is one protected operation's admission budget.
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// LimitsConfig contains the per-operation admission budgets.
type LimitsConfig struct {
	Transcribe RateLimitConfig `mapstructure:"transcribe"`
	Echo       RateLimitConfig `mapstructure:"echo"`
	Process    RateLimitConfig `mapstructure:"process"`

	// KeySweepInterval is how often abandoned caller keys are removed.
	KeySweepInterval time.Duration `mapstructure:"key_sweep_interval"`
}

// StoreConfig contains database configuration for the libsql history store.
type StoreConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level.
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
