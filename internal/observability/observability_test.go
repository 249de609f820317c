package observability_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/voxgate/voxgate/internal/observability"
)

func TestInitCLILogger(t *testing.T) {
	observability.InitCLILogger("voxgate-test", false)

	if observability.CLILogger == nil {
		t.Fatal("CLI logger should not be nil after initialization")
	}

	observability.CLILogger.Info("cli logger smoke test",
		zap.String("component", "test"))
}

func TestInitServerLogger(t *testing.T) {
	observability.InitServerLogger("voxgate-test", "info", "voxgate")

	if observability.ServerLogger == nil {
		t.Fatal("server logger should not be nil after initialization")
	}

	observability.ServerLogger.Info("server logger smoke test",
		zap.String("component", "test"),
		zap.Int("status", 200))
}

func TestParseUnknownLogLevelDefaultsToInfo(t *testing.T) {
	// An unrecognized level string must not fail initialization.
	observability.InitServerLogger("voxgate-test", "not-a-level")

	if observability.ServerLogger == nil {
		t.Fatal("server logger should initialize with default level")
	}
}
