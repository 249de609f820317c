package config

import (
	"fmt"
	"path/filepath"
	"strings"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// FromViper decodes the currently-loaded viper state into a Config.
// Durations may be given as Go duration strings ("10m", "1h") in both the
// config file and environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks invariants that viper defaults alone cannot guarantee.
func (c *Config) Validate() error {
	if c.Limits.Transcribe.MaxRequests <= 0 {
		return fmt.Errorf("limits.transcribe.max_requests must be positive, got %d", c.Limits.Transcribe.MaxRequests)
	}
	if c.Limits.Transcribe.Window <= 0 {
		return fmt.Errorf("limits.transcribe.window must be positive, got %s", c.Limits.Transcribe.Window)
	}
	if c.Limits.Echo.MaxRequests <= 0 {
		return fmt.Errorf("limits.echo.max_requests must be positive, got %d", c.Limits.Echo.MaxRequests)
	}
	if c.Limits.Echo.Window <= 0 {
		return fmt.Errorf("limits.echo.window must be positive, got %s", c.Limits.Echo.Window)
	}
	if c.Limits.Process.MaxRequests <= 0 {
		return fmt.Errorf("limits.process.max_requests must be positive, got %d", c.Limits.Process.MaxRequests)
	}
	if c.Limits.Process.Window <= 0 {
		return fmt.Errorf("limits.process.window must be positive, got %s", c.Limits.Process.Window)
	}
	if c.Engine.IdleTimeout <= 0 {
		return fmt.Errorf("engine.idle_timeout must be positive, got %s", c.Engine.IdleTimeout)
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" && strings.TrimSpace(c.Store.URL) == "" {
		return fmt.Errorf("store.path or store.url is required when the store is enabled")
	}
	return nil
}

// DefaultModelPath returns the XDG-compliant path to the whisper model file.
func DefaultModelPath() string {
	dataDir := gfconfig.GetAppDataDir("voxgate")
	if strings.TrimSpace(dataDir) == "" {
		return "./models/ggml-tiny.bin"
	}
	return filepath.Join(dataDir, "models", "ggml-tiny.bin")
}

// DefaultStorePath returns the XDG-compliant path to the history database.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir("voxgate")
	if strings.TrimSpace(dataDir) == "" {
		return "./voxgate.db"
	}
	return filepath.Join(dataDir, "voxgate.db")
}
