package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/core/store"
)

// openStore opens the transcription history store from the loaded
// configuration and applies pending migrations. Callers own the Close.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if !cfg.Store.Enabled {
		return nil, fmt.Errorf("history store disabled: set store.enabled to true")
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
