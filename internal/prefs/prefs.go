// Package prefs tracks a user's preferred and last-visited group. It is
// a small derived-state helper layered on the storage layer: setting is
// best effort, reads are pure.
package prefs

import (
	"context"

	"github.com/indica-app/indica/internal/storage"
)

// Tracker records group preferences on user records.
type Tracker struct {
	store storage.Store
}

// New creates a Tracker with the given storage backend.
func New(store storage.Store) *Tracker {
	return &Tracker{store: store}
}

// SetPreferredGroup sets both preferred_group and last_group on the
// user record. It reports false, with no error, for an unknown
// username: this is a convenience, not a guarded invariant.
func (t *Tracker) SetPreferredGroup(ctx context.Context, username string, groupID int64) (bool, error) {
	users, err := t.store.LoadUsers(ctx)
	if err != nil {
		return false, err
	}
	user, exists := users[username]
	if !exists {
		return false, nil
	}

	id := groupID
	user.PreferredGroup = &id
	user.LastGroup = &id
	users[username] = user
	if err := t.store.SaveUsers(ctx, users); err != nil {
		return false, err
	}
	return true, nil
}

// GetPreferredGroup returns the user's preferred group, or nil when the
// user is unknown or has no preference.
func (t *Tracker) GetPreferredGroup(ctx context.Context, username string) (*int64, error) {
	users, err := t.store.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	if user, exists := users[username]; exists {
		return user.PreferredGroup, nil
	}
	return nil, nil
}

// GetLastGroup returns the group the user last had active, or nil.
func (t *Tracker) GetLastGroup(ctx context.Context, username string) (*int64, error) {
	users, err := t.store.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	if user, exists := users[username]; exists {
		return user.LastGroup, nil
	}
	return nil, nil
}
