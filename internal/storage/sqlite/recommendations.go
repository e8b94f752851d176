package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/indica-app/indica/internal/migrate"
	"github.com/indica-app/indica/internal/models"
	"github.com/indica-app/indica/internal/storage"
)

// LoadRecommendations returns the full recommendations collection in id
// order, healing rows that predate the current schema shape.
func (s *SQLiteStore) LoadRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, category, rating, tags, author,
		        group_id, created_at, likes, dislikes, liked_by, disliked_by
		 FROM recommendations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var raw []any
	for rows.Next() {
		var id int64
		var title, description, category, tags, author, createdAt, likedBy, dislikedBy sql.NullString
		var rating, groupID, likes, dislikes sql.NullInt64
		if err := rows.Scan(&id, &title, &description, &category, &rating, &tags,
			&author, &groupID, &createdAt, &likes, &dislikes, &likedBy, &dislikedBy); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}

		obj := map[string]any{"id": id}
		putString(obj, "title", title)
		putString(obj, "description", description)
		putString(obj, "category", category)
		putString(obj, "author", author)
		putString(obj, "created_at", createdAt)
		putInt(obj, "rating", rating)
		putInt(obj, "group_id", groupID)
		putInt(obj, "likes", likes)
		putInt(obj, "dislikes", dislikes)
		decodeList(obj, "tags", tags)
		decodeList(obj, "liked_by", likedBy)
		decodeList(obj, "disliked_by", dislikedBy)
		raw = append(raw, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}

	recs, healed := migrate.Recommendations(raw)
	if healed > 0 {
		heal(storage.CollectionRecommendations, healed, func() error {
			return s.SaveRecommendations(ctx, recs)
		})
	}
	return recs, nil
}

// SaveRecommendations atomically replaces the recommendations collection.
func (s *SQLiteStore) SaveRecommendations(ctx context.Context, recs []models.Recommendation) error {
	return s.replaceAll(ctx, "recommendations", func(tx *sql.Tx) error {
		for _, rec := range recs {
			tags, err := encodeList(rec.Tags)
			if err != nil {
				return fmt.Errorf("failed to encode tags for recommendation %d: %w", rec.ID, err)
			}
			likedBy, err := encodeList(rec.LikedBy)
			if err != nil {
				return fmt.Errorf("failed to encode liked_by for recommendation %d: %w", rec.ID, err)
			}
			dislikedBy, err := encodeList(rec.DislikedBy)
			if err != nil {
				return fmt.Errorf("failed to encode disliked_by for recommendation %d: %w", rec.ID, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO recommendations
				 (id, title, description, category, rating, tags, author,
				  group_id, created_at, likes, dislikes, liked_by, disliked_by)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, rec.Title, rec.Description, rec.Category, rec.Rating, tags,
				rec.Author, rec.GroupID, rec.CreatedAt, rec.Likes, rec.Dislikes,
				likedBy, dislikedBy,
			)
			if err != nil {
				return fmt.Errorf("failed to insert recommendation %d: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// putInt sets key when the column holds a value, leaving stale NULLs
// absent for the migration rules to fill.
func putInt(obj map[string]any, key string, col sql.NullInt64) {
	if col.Valid {
		obj[key] = col.Int64
	}
}
