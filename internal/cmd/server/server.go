// Package server runs the tracker web server command.
package server

import (
	"context"
	"flag"
	"fmt"
	"time"

	platformcmd "github.com/pockettcg/tracker/internal/platform/cmd"
	"github.com/pockettcg/tracker/internal/storage/sqlite"
	"github.com/pockettcg/tracker/internal/web"
)

// Config holds the server command configuration.
type Config struct {
	HTTPAddr            string        `env:"TCGTRACKER_HTTP_ADDR" envDefault:"localhost:8000"`
	DatabasePath        string        `env:"TCGTRACKER_DB_PATH" envDefault:"tracker.db"`
	SessionSecret       string        `env:"TCGTRACKER_SESSION_SECRET"`
	SessionTTL          time.Duration `env:"TCGTRACKER_SESSION_TTL"`
	TrustForwardedProto bool          `env:"TCGTRACKER_TRUST_FORWARDED_PROTO"`
}

// ParseConfig loads environment defaults and then parses flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store and serves HTTP until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceServer, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = store.Close() }()

		server, err := web.NewServer(web.Config{
			HTTPAddr:            cfg.HTTPAddr,
			SessionSecret:       cfg.SessionSecret,
			SessionTTL:          cfg.SessionTTL,
			TrustForwardedProto: cfg.TrustForwardedProto,
		}, store)
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
