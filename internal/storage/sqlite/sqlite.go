// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface. This is the current backing store; the
// legacy flat-file layout is imported into it once at startup.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/indica-app/indica/internal/metrics"
	"github.com/indica-app/indica/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using a single SQLite database
// file. List-valued fields (categories, members, tags, liked_by,
// disliked_by) are stored as JSON array text columns.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and the schema automatically.
// An unopenable database here is the one fatal condition in the
// persistence core: no later operation can succeed without it.
func New(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The full-replace save pattern assumes one connection's view;
	// a single open connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// schema creates the three collection tables. Columns other than the
// primary keys are nullable on purpose: rows written by earlier schema
// versions carry NULLs, which the migration rules fill on read.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    username        TEXT PRIMARY KEY,
    password        TEXT,
    created_at      TEXT,
    preferred_group INTEGER,
    last_group      INTEGER
);

CREATE TABLE IF NOT EXISTS groups (
    id          INTEGER PRIMARY KEY,
    name        TEXT,
    description TEXT,
    categories  TEXT,
    created_by  TEXT,
    created_at  TEXT,
    members     TEXT,
    is_public   INTEGER
);

CREATE TABLE IF NOT EXISTS recommendations (
    id          INTEGER PRIMARY KEY,
    title       TEXT,
    description TEXT,
    category    TEXT,
    rating      INTEGER,
    tags        TEXT,
    author      TEXT,
    group_id    INTEGER,
    created_at  TEXT,
    likes       INTEGER,
    dislikes    INTEGER,
    liked_by    TEXT,
    disliked_by TEXT
);

CREATE INDEX IF NOT EXISTS idx_recommendations_group_id ON recommendations(group_id);
CREATE INDEX IF NOT EXISTS idx_recommendations_author ON recommendations(author);
`

// Initialize ensures the three collection tables exist. Idempotent.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// replaceAll runs a full-collection replace in a single transaction:
// delete everything, insert the new contents, commit. On any failure
// the transaction rolls back and the prior state stays visible.
func (s *SQLiteStore) replaceAll(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// heal persists a collection after a load upgraded stale rows, and
// emits the migration diagnostic. A failed write-back is logged, not
// returned: the in-memory data is already correct and the next load
// retries.
func heal(collection string, healed int, save func() error) {
	if err := save(); err != nil {
		slog.Warn("failed to persist migrated collection",
			"collection", collection, "error", err)
		return
	}
	slog.Info("collection migrated to current schema",
		"collection", collection, "records", healed)
	metrics.RecordsHealed.WithLabelValues(collection).Add(float64(healed))
}

// decodeList decodes a JSON array text column into the raw record under
// key. A NULL or undecodable column is left absent so the migration
// rules fill it; a valid array is stored as []any to match the shape
// the flat-file decoder produces.
func decodeList(obj map[string]any, key string, col sql.NullString) {
	if !col.Valid {
		return
	}
	var items []any
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return
	}
	obj[key] = items
}

// encodeList encodes a string list as a JSON array for a text column.
func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
