package cmd

import (
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/voxgate/voxgate/internal/config"
	errwrap "github.com/voxgate/voxgate/internal/errors"
	"github.com/voxgate/voxgate/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the application can start successfully.",
	Run: func(cmd *cobra.Command, args []string) {
		observability.CLILogger.Info("Running health check...")

		// Check 1: Version info available
		if versionInfo.Version == "" {
			observability.CLILogger.Error("❌ FAIL: Version information missing")
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		observability.CLILogger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		observability.CLILogger.Info("✅ Version information available")

		// Check 2: Configuration decodes and validates
		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			observability.CLILogger.Error("❌ FAIL: Configuration invalid", zap.Error(err))
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		observability.CLILogger.Info("✅ Configuration system ready")

		// Check 3: Whisper model file present (advisory - the server loads it
		// lazily, so a missing file only fails the first transcription)
		if _, err := os.Stat(cfg.Engine.ModelPath); err != nil {
			observability.CLILogger.Warn("⚠️  Whisper model file not found - first transcription will fail",
				zap.String("model_path", cfg.Engine.ModelPath))
		} else {
			observability.CLILogger.Info("✅ Whisper model file present",
				zap.String("model_path", cfg.Engine.ModelPath))
		}

		// Overall status
		observability.CLILogger.Info("")
		observability.CLILogger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
