// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/indica-app/indica/internal/models"
)

// Collection names shared by every backing store.
const (
	CollectionUsers           = "users"
	CollectionGroups          = "groups"
	CollectionRecommendations = "recommendations"
)

// Store defines the uniform contract over the three persisted
// collections. This abstraction allows swapping storage backends (the
// legacy flat-file store, SQLite) without changing the repository layer.
//
// Load methods return the full contents of a collection; a collection
// that has never been created yields its type-appropriate empty default.
// Structurally stale records are normalized to the current shape before
// they are returned, and an unparseable container degrades to the empty
// default rather than failing the call.
//
// Save methods atomically replace the stored contents: a partial write
// is never visible to a subsequent Load.
type Store interface {
	// Initialize ensures the three collections exist in the backing
	// store. Idempotent; called by constructors and safe to call again.
	Initialize(ctx context.Context) error

	LoadUsers(ctx context.Context) (map[string]models.User, error)
	SaveUsers(ctx context.Context, users map[string]models.User) error

	LoadGroups(ctx context.Context) ([]models.Group, error)
	SaveGroups(ctx context.Context, groups []models.Group) error

	LoadRecommendations(ctx context.Context) ([]models.Recommendation, error)
	SaveRecommendations(ctx context.Context, recs []models.Recommendation) error

	// Close releases any resources held by the store.
	Close() error
}
