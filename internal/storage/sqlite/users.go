package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/indica-app/indica/internal/migrate"
	"github.com/indica-app/indica/internal/models"
	"github.com/indica-app/indica/internal/storage"
)

// LoadUsers returns the full users collection. Rows with missing
// columns (written by an earlier schema version or an external tool)
// are normalized by the migration rules and the healed collection is
// written back.
func (s *SQLiteStore) LoadUsers(ctx context.Context) (map[string]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, password, created_at, preferred_group, last_group FROM users")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]any)
	for rows.Next() {
		var username string
		var password, createdAt sql.NullString
		var preferred, last sql.NullInt64
		if err := rows.Scan(&username, &password, &createdAt, &preferred, &last); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		obj := make(map[string]any)
		if password.Valid {
			obj["password"] = password.String
		}
		if createdAt.Valid {
			obj["created_at"] = createdAt.String
		}
		// NULL is a legitimate stored value for the group references,
		// not a missing field: keep the keys present.
		obj["preferred_group"] = nullableID(preferred)
		obj["last_group"] = nullableID(last)
		raw[username] = obj
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	users, healed := migrate.Users(raw)
	if healed > 0 {
		heal(storage.CollectionUsers, healed, func() error {
			return s.SaveUsers(ctx, users)
		})
	}
	return users, nil
}

// SaveUsers atomically replaces the users collection.
func (s *SQLiteStore) SaveUsers(ctx context.Context, users map[string]models.User) error {
	return s.replaceAll(ctx, "users", func(tx *sql.Tx) error {
		for username, user := range users {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO users (username, password, created_at, preferred_group, last_group) VALUES (?, ?, ?, ?, ?)",
				username, user.Password, user.CreatedAt, user.PreferredGroup, user.LastGroup,
			)
			if err != nil {
				return fmt.Errorf("failed to insert user %s: %w", username, err)
			}
		}
		return nil
	})
}

// nullableID converts a nullable integer column to the raw-record
// representation the migration rules expect.
func nullableID(col sql.NullInt64) any {
	if !col.Valid {
		return nil
	}
	return col.Int64
}
