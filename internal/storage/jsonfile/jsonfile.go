// Package jsonfile implements storage.Store over the legacy
// file-per-collection layout: one indented UTF-8 JSON file per
// collection under a data directory.
//
// This is the representation earlier versions of the application wrote.
// It remains a full Store implementation so the one-time import into the
// relational store can read through it, and so tests can exercise the
// migration rules against real legacy files.
package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/indica-app/indica/internal/apperror"
	"github.com/indica-app/indica/internal/metrics"
	"github.com/indica-app/indica/internal/migrate"
	"github.com/indica-app/indica/internal/models"
	"github.com/indica-app/indica/internal/storage"
)

// Ensure FileStore implements storage.Store
var _ storage.Store = (*FileStore)(nil)

// FileStore implements storage.Store using one JSON file per collection.
type FileStore struct {
	dir string
}

// New creates a FileStore rooted at dir and initializes it.
func New(dir string) (*FileStore, error) {
	s := &FileStore{dir: dir}
	if err := s.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize creates the data directory and seeds any missing
// collection file with its empty default. Idempotent.
func (s *FileStore) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: creating data directory: %w", err)
	}
	defaults := map[string]string{
		storage.CollectionUsers:           "{}",
		storage.CollectionGroups:          "[]",
		storage.CollectionRecommendations: "[]",
	}
	for collection, empty := range defaults {
		path := s.path(collection)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("jsonfile: checking %s: %w", path, err)
		}
		if err := writeFileAtomic(path, []byte(empty+"\n")); err != nil {
			return fmt.Errorf("jsonfile: seeding %s: %w", collection, err)
		}
	}
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

// LoadUsers returns the users collection, normalizing stale records and
// writing the healed collection back if anything changed.
func (s *FileStore) LoadUsers(ctx context.Context) (map[string]models.User, error) {
	var raw map[string]any
	if !s.read(storage.CollectionUsers, &raw) {
		return map[string]models.User{}, nil
	}
	users, healed := migrate.Users(raw)
	if healed > 0 {
		s.heal(ctx, storage.CollectionUsers, healed, func() error {
			return s.SaveUsers(ctx, users)
		})
	}
	return users, nil
}

// SaveUsers atomically replaces the users collection.
func (s *FileStore) SaveUsers(ctx context.Context, users map[string]models.User) error {
	return s.write(storage.CollectionUsers, users)
}

// LoadGroups returns the groups collection, normalizing stale records.
func (s *FileStore) LoadGroups(ctx context.Context) ([]models.Group, error) {
	var raw []any
	if !s.read(storage.CollectionGroups, &raw) {
		return []models.Group{}, nil
	}
	groups, healed := migrate.Groups(raw)
	if healed > 0 {
		s.heal(ctx, storage.CollectionGroups, healed, func() error {
			return s.SaveGroups(ctx, groups)
		})
	}
	return groups, nil
}

// SaveGroups atomically replaces the groups collection.
func (s *FileStore) SaveGroups(ctx context.Context, groups []models.Group) error {
	return s.write(storage.CollectionGroups, groups)
}

// LoadRecommendations returns the recommendations collection,
// normalizing stale records.
func (s *FileStore) LoadRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	var raw []any
	if !s.read(storage.CollectionRecommendations, &raw) {
		return []models.Recommendation{}, nil
	}
	recs, healed := migrate.Recommendations(raw)
	if healed > 0 {
		s.heal(ctx, storage.CollectionRecommendations, healed, func() error {
			return s.SaveRecommendations(ctx, recs)
		})
	}
	return recs, nil
}

// SaveRecommendations atomically replaces the recommendations collection.
func (s *FileStore) SaveRecommendations(ctx context.Context, recs []models.Recommendation) error {
	return s.write(storage.CollectionRecommendations, recs)
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// read decodes a collection file into out. It reports false when the
// caller should fall back to the empty default: the file is missing, or
// its container is unparseable. Corruption is logged and counted, never
// surfaced as an error.
func (s *FileStore) read(collection string, out any) bool {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("collection unreadable, using empty default",
				"collection", collection, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("collection corrupt, using empty default",
			"collection", collection,
			"error", fmt.Errorf("%w: %v", apperror.ErrStorageCorrupt, err))
		metrics.CorruptCollections.WithLabelValues(collection).Inc()
		return false
	}
	return true
}

// write marshals v with 2-space indentation and replaces the collection
// file atomically: the new content is written to a temp file in the
// same directory and renamed over the target, so a partial write is
// never visible to a subsequent load.
func (s *FileStore) write(collection string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding %s: %w", collection, err)
	}
	if err := writeFileAtomic(s.path(collection), append(data, '\n')); err != nil {
		return fmt.Errorf("jsonfile: writing %s: %w", collection, err)
	}
	return nil
}

// heal persists a normalized collection after a load upgraded stale
// records. A failed write-back is logged, not returned: the caller
// already holds correct in-memory data and the next load will retry.
func (s *FileStore) heal(ctx context.Context, collection string, healed int, save func() error) {
	if err := save(); err != nil {
		slog.Warn("failed to persist migrated collection",
			"collection", collection, "error", err)
		return
	}
	slog.Info("collection migrated to current schema",
		"collection", collection, "records", healed)
	metrics.RecordsHealed.WithLabelValues(collection).Add(float64(healed))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
