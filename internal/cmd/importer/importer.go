// Package importer runs the CSV catalog import command.
package importer

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/pockettcg/tracker/internal/importer"
	platformcmd "github.com/pockettcg/tracker/internal/platform/cmd"
	"github.com/pockettcg/tracker/internal/storage/sqlite"
)

// Config holds the importer command configuration.
type Config struct {
	DatabasePath string `env:"TCGTRACKER_DB_PATH" envDefault:"tracker.db"`
	DataDir      string `env:"TCGTRACKER_DATA_DIR" envDefault:"data"`
}

// ParseConfig loads environment defaults and then parses flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory containing CSV files")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run imports all CSV files found in the configured data directory.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceImporter, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = store.Close() }()

		return ImportDir(ctx, importer.New(store, log.Default()), cfg.DataDir)
	})
}

// importStep binds a well-known CSV filename to its import function.
type importStep struct {
	filename string
	run      func(ctx context.Context, r io.Reader) error
}

// ImportDir imports every known CSV file present in dir. Files are processed
// in dependency order so later files can reference earlier rows. Missing
// files are skipped.
func ImportDir(ctx context.Context, imp *importer.Importer, dir string) error {
	steps := []importStep{
		{"generations.csv", imp.ImportGenerations},
		{"rarities.csv", imp.ImportRarities},
		{"pack_types.csv", imp.ImportPackTypes},
		{"rarity_probabilities.csv", imp.ImportRarityProbabilities},
		{"sets.csv", imp.ImportSets},
		{"cards.csv", imp.ImportCards},
		{"set_translations.csv", imp.ImportSetTranslations},
		{"pack_translations.csv", imp.ImportPackTranslations},
		{"card_translations.csv", imp.ImportCardTranslations},
	}
	imported := 0
	for _, step := range steps {
		path := filepath.Join(dir, step.filename)
		file, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		err = step.run(ctx, file)
		_ = file.Close()
		if err != nil {
			return fmt.Errorf("import %s: %w", step.filename, err)
		}
		imported++
	}
	if imported == 0 {
		return fmt.Errorf("no importable CSV files found in %s", dir)
	}
	return nil
}
