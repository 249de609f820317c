package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/voxgate/voxgate/internal/appid"
)

func TestAppIdentityLoading(t *testing.T) {
	t.Run("load app identity from embedded app.yaml", func(t *testing.T) {
		// Load app identity the same way the application does
		ctx := context.Background()
		identity, err := appid.Get(ctx)

		if err != nil {
			t.Fatalf("Failed to load app identity: %v", err)
		}

		if identity == nil {
			t.Fatal("App identity is nil")
		}

		t.Logf("Loaded identity: %+v", identity)

		if identity.BinaryName != "voxgate" {
			t.Errorf("Expected binary name 'voxgate', got '%s'", identity.BinaryName)
		}
		if identity.Vendor == "" {
			t.Error("App identity field Vendor is empty")
		}
		if identity.ConfigName == "" {
			t.Error("App identity field ConfigName is empty")
		}

		// Env prefix drives viper's AutomaticEnv binding and must end in "_"
		if identity.EnvPrefix == "" {
			t.Error("Expected env_prefix to be non-empty")
		}
		if identity.EnvPrefix != "" && !strings.HasSuffix(identity.EnvPrefix, "_") {
			t.Errorf("Expected env_prefix to end with underscore, got '%s'", identity.EnvPrefix)
		}
	})
}
