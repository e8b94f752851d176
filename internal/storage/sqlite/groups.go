package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/indica-app/indica/internal/migrate"
	"github.com/indica-app/indica/internal/models"
	"github.com/indica-app/indica/internal/storage"
)

// LoadGroups returns the full groups collection in id order, healing
// rows that predate the current schema shape.
func (s *SQLiteStore) LoadGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, categories, created_by, created_at, members, is_public FROM groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var raw []any
	for rows.Next() {
		var id int64
		var name, description, categories, createdBy, createdAt, members sql.NullString
		var isPublic sql.NullBool
		if err := rows.Scan(&id, &name, &description, &categories, &createdBy, &createdAt, &members, &isPublic); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}

		obj := map[string]any{"id": id}
		putString(obj, "name", name)
		putString(obj, "description", description)
		putString(obj, "created_by", createdBy)
		putString(obj, "created_at", createdAt)
		decodeList(obj, "categories", categories)
		decodeList(obj, "members", members)
		if isPublic.Valid {
			obj["is_public"] = isPublic.Bool
		}
		raw = append(raw, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups, healed := migrate.Groups(raw)
	if healed > 0 {
		heal(storage.CollectionGroups, healed, func() error {
			return s.SaveGroups(ctx, groups)
		})
	}
	return groups, nil
}

// SaveGroups atomically replaces the groups collection.
func (s *SQLiteStore) SaveGroups(ctx context.Context, groups []models.Group) error {
	return s.replaceAll(ctx, "groups", func(tx *sql.Tx) error {
		for _, group := range groups {
			categories, err := encodeList(group.Categories)
			if err != nil {
				return fmt.Errorf("failed to encode categories for group %d: %w", group.ID, err)
			}
			members, err := encodeList(group.Members)
			if err != nil {
				return fmt.Errorf("failed to encode members for group %d: %w", group.ID, err)
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO groups (id, name, description, categories, created_by, created_at, members, is_public) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				group.ID, group.Name, group.Description, categories,
				group.CreatedBy, group.CreatedAt, members, group.IsPublic,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group %d: %w", group.ID, err)
			}
		}
		return nil
	})
}

// putString sets key when the column holds a value, leaving stale NULLs
// absent for the migration rules to fill.
func putString(obj map[string]any, key string, col sql.NullString) {
	if col.Valid {
		obj[key] = col.String
	}
}
