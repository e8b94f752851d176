package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/indica-app/indica/internal/metrics"
	"github.com/indica-app/indica/internal/storage"
)

// BackupSuffix is appended to legacy collection files after a
// successful import. Files are renamed, never deleted, so the import is
// recoverable and inspectable.
const BackupSuffix = ".backup"

// Report summarizes one legacy import run.
type Report struct {
	// Imported maps collection name to the number of records moved
	// into the target store.
	Imported map[string]int

	// Skipped lists collections whose legacy file failed to parse and
	// was left untouched.
	Skipped []string
}

// ImportLegacy performs the one-time storage-format migration: each
// legacy flat-file collection found under dir is parsed, normalized to
// the current schema shape, bulk-written into store, and renamed with
// BackupSuffix. A file that fails to parse is skipped with a log line
// and left exactly as it was; the remaining files are still processed.
//
// Files are parsed here rather than read through the flat-file store:
// that store recovers from corruption by substituting the empty
// default, which would wrongly import nothing and rename the evidence.
func ImportLegacy(ctx context.Context, dir string, store storage.Store) (*Report, error) {
	report := &Report{Imported: make(map[string]int)}

	users, found, err := parseUsersFile(dir)
	if err != nil {
		skip(report, storage.CollectionUsers, err)
	} else if found {
		normalized, _ := Users(users)
		if err := store.SaveUsers(ctx, normalized); err != nil {
			return report, fmt.Errorf("importing users: %w", err)
		}
		finish(report, dir, storage.CollectionUsers, len(normalized))
	}

	groups, found, err := parseListFile(dir, storage.CollectionGroups)
	if err != nil {
		skip(report, storage.CollectionGroups, err)
	} else if found {
		normalized, _ := Groups(groups)
		if err := store.SaveGroups(ctx, normalized); err != nil {
			return report, fmt.Errorf("importing groups: %w", err)
		}
		finish(report, dir, storage.CollectionGroups, len(normalized))
	}

	recs, found, err := parseListFile(dir, storage.CollectionRecommendations)
	if err != nil {
		skip(report, storage.CollectionRecommendations, err)
	} else if found {
		normalized, _ := Recommendations(recs)
		if err := store.SaveRecommendations(ctx, normalized); err != nil {
			return report, fmt.Errorf("importing recommendations: %w", err)
		}
		finish(report, dir, storage.CollectionRecommendations, len(normalized))
	}

	return report, nil
}

// HasLegacyFiles reports whether any legacy collection file exists
// under dir, i.e. whether ImportLegacy has work to do.
func HasLegacyFiles(dir string) bool {
	for _, collection := range []string{
		storage.CollectionUsers,
		storage.CollectionGroups,
		storage.CollectionRecommendations,
	} {
		if _, err := os.Stat(legacyPath(dir, collection)); err == nil {
			return true
		}
	}
	return false
}

func legacyPath(dir, collection string) string {
	return filepath.Join(dir, collection+".json")
}

func parseUsersFile(dir string) (map[string]any, bool, error) {
	data, err := os.ReadFile(legacyPath(dir, storage.CollectionUsers))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func parseListFile(dir, collection string) ([]any, bool, error) {
	data, err := os.ReadFile(legacyPath(dir, collection))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func skip(report *Report, collection string, err error) {
	slog.Warn("legacy file unreadable, skipping import",
		"collection", collection, "error", err)
	metrics.LegacySkips.WithLabelValues(collection).Inc()
	report.Skipped = append(report.Skipped, collection)
}

func finish(report *Report, dir, collection string, count int) {
	path := legacyPath(dir, collection)
	if err := os.Rename(path, path+BackupSuffix); err != nil {
		slog.Warn("failed to rename imported legacy file",
			"collection", collection, "error", err)
	}
	slog.Info("legacy collection imported",
		"collection", collection, "records", count)
	metrics.LegacyImports.WithLabelValues(collection).Inc()
	report.Imported[collection] = count
}
