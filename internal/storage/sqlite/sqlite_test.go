package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/indica-app/indica/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("fresh store yields empty defaults", func(t *testing.T) {
		users, err := store.LoadUsers(ctx)
		if err != nil {
			t.Fatalf("LoadUsers failed: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("got %d users, want 0", len(users))
		}

		groups, err := store.LoadGroups(ctx)
		if err != nil {
			t.Fatalf("LoadGroups failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("got %d groups, want 0", len(groups))
		}

		recs, err := store.LoadRecommendations(ctx)
		if err != nil {
			t.Fatalf("LoadRecommendations failed: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d recommendations, want 0", len(recs))
		}
	})

	t.Run("users round trip", func(t *testing.T) {
		groupID := int64(2)
		users := map[string]models.User{
			"alice": {Password: "pw", CreatedAt: "2023-05-01T10:00:00Z"},
			"bob": {
				Password:       "pw2",
				CreatedAt:      "2023-06-01T10:00:00Z",
				PreferredGroup: &groupID,
				LastGroup:      &groupID,
			},
		}
		if err := store.SaveUsers(ctx, users); err != nil {
			t.Fatalf("SaveUsers failed: %v", err)
		}

		loaded, err := store.LoadUsers(ctx)
		if err != nil {
			t.Fatalf("LoadUsers failed: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("got %d users, want 2", len(loaded))
		}
		if loaded["alice"].PreferredGroup != nil {
			t.Errorf("alice preferred_group = %v, want nil", loaded["alice"].PreferredGroup)
		}
		if loaded["bob"].LastGroup == nil || *loaded["bob"].LastGroup != 2 {
			t.Errorf("bob last_group = %v, want 2", loaded["bob"].LastGroup)
		}
	})

	t.Run("groups round trip preserves list fields", func(t *testing.T) {
		groups := []models.Group{{
			ID:          1,
			Name:        "Movies",
			Description: "Film talk",
			Categories:  []string{"Film", "Series"},
			CreatedBy:   "alice",
			CreatedAt:   "2023-05-01T10:00:00Z",
			Members:     []string{"alice", "bob"},
			IsPublic:    true,
		}}
		if err := store.SaveGroups(ctx, groups); err != nil {
			t.Fatalf("SaveGroups failed: %v", err)
		}

		loaded, err := store.LoadGroups(ctx)
		if err != nil {
			t.Fatalf("LoadGroups failed: %v", err)
		}
		if len(loaded) != 1 {
			t.Fatalf("got %d groups, want 1", len(loaded))
		}
		if !reflect.DeepEqual(loaded[0], groups[0]) {
			t.Errorf("loaded group = %+v, want %+v", loaded[0], groups[0])
		}
	})

	t.Run("save replaces the whole collection", func(t *testing.T) {
		two := []models.Group{
			{ID: 1, Name: "A", Categories: []string{}, Members: []string{}, IsPublic: true, CreatedAt: "2023-05-01T10:00:00Z"},
			{ID: 2, Name: "B", Categories: []string{}, Members: []string{}, IsPublic: true, CreatedAt: "2023-05-01T10:00:00Z"},
		}
		if err := store.SaveGroups(ctx, two); err != nil {
			t.Fatalf("SaveGroups failed: %v", err)
		}
		one := two[:1]
		if err := store.SaveGroups(ctx, one); err != nil {
			t.Fatalf("SaveGroups failed: %v", err)
		}

		loaded, err := store.LoadGroups(ctx)
		if err != nil {
			t.Fatalf("LoadGroups failed: %v", err)
		}
		if len(loaded) != 1 {
			t.Fatalf("got %d groups, want 1", len(loaded))
		}
		if loaded[0].ID != 1 {
			t.Errorf("remaining group id = %d, want 1", loaded[0].ID)
		}
	})

	t.Run("recommendations round trip", func(t *testing.T) {
		recs := []models.Recommendation{{
			ID:          1,
			Title:       "The Godfather",
			Description: "A classic",
			Category:    "Film",
			Rating:      5,
			Tags:        []string{"classic"},
			Author:      "alice",
			GroupID:     1,
			CreatedAt:   "2023-05-01T10:00:00Z",
			Likes:       1,
			Dislikes:    0,
			LikedBy:     []string{"bob"},
			DislikedBy:  []string{},
		}}
		if err := store.SaveRecommendations(ctx, recs); err != nil {
			t.Fatalf("SaveRecommendations failed: %v", err)
		}

		loaded, err := store.LoadRecommendations(ctx)
		if err != nil {
			t.Fatalf("LoadRecommendations failed: %v", err)
		}
		if len(loaded) != 1 {
			t.Fatalf("got %d recommendations, want 1", len(loaded))
		}
		if !reflect.DeepEqual(loaded[0], recs[0]) {
			t.Errorf("loaded recommendation = %+v, want %+v", loaded[0], recs[0])
		}
	})
}

func TestLoadHealsStaleRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A row written by an earlier schema version: no dislike columns,
	// no created_at.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO recommendations (id, title, description, category, rating, tags, author, group_id, likes, liked_by)
		 VALUES (1, 'Old', '', 'Film', 4, '["x"]', 'alice', 1, 0, '[]')`)
	if err != nil {
		t.Fatalf("failed to insert stale row: %v", err)
	}

	recs, err := store.LoadRecommendations(ctx)
	if err != nil {
		t.Fatalf("LoadRecommendations failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Dislikes != 0 || rec.DislikedBy == nil {
		t.Errorf("dislike fields not filled: %+v", rec)
	}
	if rec.Dislikes != len(rec.DislikedBy) {
		t.Error("dislikes counter does not match set size")
	}
	if rec.CreatedAt == "" {
		t.Error("created_at not filled")
	}

	// The healed row was written back: the column is concrete now.
	var dislikes sql.NullInt64
	if err := store.db.QueryRowContext(ctx,
		"SELECT dislikes FROM recommendations WHERE id = 1").Scan(&dislikes); err != nil {
		t.Fatalf("failed to re-read row: %v", err)
	}
	if !dislikes.Valid || dislikes.Int64 != 0 {
		t.Errorf("dislikes column = %+v, want concrete 0 after heal", dislikes)
	}

	// A second load finds nothing left to heal and returns identical data.
	again, err := store.LoadRecommendations(ctx)
	if err != nil {
		t.Fatalf("second LoadRecommendations failed: %v", err)
	}
	if !reflect.DeepEqual(again, recs) {
		t.Errorf("second load differs: %+v vs %+v", again, recs)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	users := map[string]models.User{"alice": {Password: "pw", CreatedAt: "2023-05-01T10:00:00Z"}}
	if err := store.SaveUsers(ctx, users); err != nil {
		t.Fatalf("SaveUsers failed: %v", err)
	}
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("third Initialize failed: %v", err)
	}

	loaded, err := store.LoadUsers(ctx)
	if err != nil {
		t.Fatalf("LoadUsers failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("Initialize dropped data: got %d users, want 1", len(loaded))
	}
}
