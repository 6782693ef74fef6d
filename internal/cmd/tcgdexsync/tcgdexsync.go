// Package tcgdexsync runs the TCGdex catalog sync command.
package tcgdexsync

import (
	"context"
	"flag"
	"fmt"
	"log"

	platformcmd "github.com/pockettcg/tracker/internal/platform/cmd"
	"github.com/pockettcg/tracker/internal/storage/sqlite"
	"github.com/pockettcg/tracker/internal/tcgdex"
)

// Config holds the sync command configuration.
type Config struct {
	DatabasePath string `env:"TCGTRACKER_DB_PATH" envDefault:"tracker.db"`
	APIBaseURL   string `env:"TCGTRACKER_TCGDEX_BASE_URL"`
}

// ParseConfig loads environment defaults and then parses flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "TCGdex API base URL override")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run syncs sets and cards from the TCGdex API into the local catalog.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceTCGdexSync, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = store.Close() }()

		syncer := tcgdex.NewSyncer(tcgdex.NewClient(cfg.APIBaseURL), store, log.Default())
		if err := syncer.Sync(ctx); err != nil {
			return fmt.Errorf("sync catalog: %w", err)
		}
		return nil
	})
}
