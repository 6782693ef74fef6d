package importer

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"testing"

	catalogimport "github.com/pockettcg/tracker/internal/importer"
	"github.com/pockettcg/tracker/internal/storage/sqlite"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.DataDir != "data" {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, "data")
	}
}

func TestImportDirSkipsMissingFiles(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "generations.csv"),
		"name,display_name,description\nG1,Generation 1,First distribution scheme\n")
	writeFile(t, filepath.Join(dir, "rarities.csv"),
		"name,display_name,order,icon_name,repeat_count\ncommon,Common,1,diamond,1\n")

	imp := catalogimport.New(store, log.New(os.Stderr, "", 0))
	if err := ImportDir(ctx, imp, dir); err != nil {
		t.Fatalf("ImportDir() error = %v", err)
	}

	generations, err := store.ListGenerations(ctx)
	if err != nil || len(generations) != 1 || generations[0].Name != "G1" {
		t.Fatalf("generations = %v err = %v", generations, err)
	}
	rarities, err := store.ListRarities(ctx)
	if err != nil || len(rarities) != 1 {
		t.Fatalf("rarities = %v err = %v", rarities, err)
	}
}

func TestImportDirFailsOnEmptyDirectory(t *testing.T) {
	store, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	imp := catalogimport.New(store, log.New(os.Stderr, "", 0))
	if err := ImportDir(context.Background(), imp, t.TempDir()); err == nil {
		t.Fatal("expected error for directory without CSV files")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
