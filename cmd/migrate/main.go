// Command migrate performs the one-time storage-format migration:
// legacy per-collection JSON files under the data directory are
// imported into the SQLite store, and the imported files are renamed
// with a .backup suffix. Safe to run when there is nothing to do.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/indica-app/indica/internal/metrics"
	"github.com/indica-app/indica/internal/migrate"
	"github.com/indica-app/indica/internal/storage/sqlite"
	"github.com/indica-app/indica/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	logging.Setup()

	if err := metrics.Register(nil); err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	dataDir := getEnv("DATA_DIR", "./data")
	dbPath := getEnv("DB_PATH", "./data/indica.db")

	// An unopenable backing store is the one fatal condition: nothing
	// after this point can succeed without it.
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	if !migrate.HasLegacyFiles(dataDir) {
		slog.Info("No legacy collection files found, nothing to import", "data_dir", dataDir)
		return
	}

	report, err := migrate.ImportLegacy(context.Background(), dataDir, store)
	if err != nil {
		slog.Error("Legacy import failed", "error", err)
		os.Exit(1)
	}

	for collection, count := range report.Imported {
		slog.Info("Imported legacy collection", "collection", collection, "records", count)
	}
	for _, collection := range report.Skipped {
		slog.Warn("Skipped unparseable legacy collection, file left in place",
			"collection", collection)
	}
	slog.Info("Legacy import complete",
		"imported", len(report.Imported), "skipped", len(report.Skipped))
}
