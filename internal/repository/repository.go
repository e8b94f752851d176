// Package repository provides the typed, invariant-preserving
// operations over the three collections. It composes a storage.Store
// (which normalizes stale records on every load) and never sees
// anything but the current record shapes.
//
// All operations take the acting username explicitly; there is no
// ambient session state at this layer.
package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/indica-app/indica/internal/apperror"
	"github.com/indica-app/indica/internal/models"
	"github.com/indica-app/indica/internal/storage"
)

// Repository implements the collection operations over a Store.
type Repository struct {
	store storage.Store
}

// New creates a Repository with the given storage backend.
func New(store storage.Store) *Repository {
	return &Repository{store: store}
}

// Store exposes the underlying backing store, for layers built on top
// of the repository (preference tracking, bulk import).
func (r *Repository) Store() storage.Store {
	return r.store
}

// SessionInfo is returned on a successful login for session
// restoration by the embedding UI.
type SessionInfo struct {
	Username string

	// LastGroup is the group to restore, set only when the user's
	// stored last_group still references an existing group of which
	// the user is still a member.
	LastGroup *int64
}

// RegisterUser inserts a fully populated user record. Usernames are
// unique case-sensitively.
func (r *Repository) RegisterUser(ctx context.Context, username, password string) error {
	users, err := r.store.LoadUsers(ctx)
	if err != nil {
		return err
	}
	if _, exists := users[username]; exists {
		return apperror.AlreadyExists("user", username)
	}

	users[username] = models.User{
		Password:  password,
		CreatedAt: timestamp(),
	}
	if err := r.store.SaveUsers(ctx, users); err != nil {
		return err
	}
	slog.Info("user registered", "username", username)
	return nil
}

// LoginUser checks the stored credential and returns session
// restoration info. Passwords are compared as opaque values; hashing is
// out of scope for this core.
func (r *Repository) LoginUser(ctx context.Context, username, password string) (*SessionInfo, error) {
	users, err := r.store.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	user, exists := users[username]
	if !exists {
		return nil, apperror.NotFound("user", username)
	}
	if user.Password != password {
		return nil, apperror.InvalidCredential(username)
	}

	info := &SessionInfo{Username: username}
	if user.LastGroup != nil {
		group, err := r.findGroup(ctx, *user.LastGroup)
		if err == nil && group.HasMember(username) {
			info.LastGroup = user.LastGroup
		}
	}
	return info, nil
}

// CreateGroup creates a group with the creator as its sole initial
// member and returns the allocated id. Group names are unique
// case-insensitively at creation time.
func (r *Repository) CreateGroup(ctx context.Context, name, description string, categories []string, createdBy string) (int64, error) {
	groups, err := r.store.LoadGroups(ctx)
	if err != nil {
		return 0, err
	}
	for _, group := range groups {
		if strings.EqualFold(group.Name, name) {
			return 0, apperror.DuplicateName("group", name)
		}
	}

	group := models.Group{
		ID:          nextGroupID(groups),
		Name:        name,
		Description: description,
		Categories:  categories,
		CreatedBy:   createdBy,
		CreatedAt:   timestamp(),
		Members:     []string{createdBy},
		IsPublic:    true,
	}
	groups = append(groups, group)
	if err := r.store.SaveGroups(ctx, groups); err != nil {
		return 0, err
	}
	slog.Info("group created", "group_id", group.ID, "name", name, "created_by", createdBy)
	return group.ID, nil
}

// JoinGroup appends username to the group's member list.
func (r *Repository) JoinGroup(ctx context.Context, groupID int64, username string) error {
	groups, err := r.store.LoadGroups(ctx)
	if err != nil {
		return err
	}
	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}
		if groups[i].HasMember(username) {
			return apperror.AlreadyMember(username, groupID)
		}
		groups[i].Members = append(groups[i].Members, username)
		if err := r.store.SaveGroups(ctx, groups); err != nil {
			return err
		}
		slog.Info("user joined group", "group_id", groupID, "username", username)
		return nil
	}
	return apperror.NotFound("group", groupID)
}

// NewRecommendation carries the caller-supplied fields for
// AddRecommendation. Tags is the raw comma-separated input.
type NewRecommendation struct {
	Title       string
	Description string
	Category    string
	Rating      int
	Tags        string
	Author      string
	GroupID     int64
}

// AddRecommendation inserts a recommendation with a freshly allocated
// id and zeroed vote state. The category is deliberately not validated
// against the owning group's category list, matching the historical
// behavior of the application.
func (r *Repository) AddRecommendation(ctx context.Context, in NewRecommendation) (int64, error) {
	recs, err := r.store.LoadRecommendations(ctx)
	if err != nil {
		return 0, err
	}

	rec := models.Recommendation{
		ID:          nextRecommendationID(recs),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Rating:      in.Rating,
		Tags:        SplitTags(in.Tags),
		Author:      in.Author,
		GroupID:     in.GroupID,
		CreatedAt:   timestamp(),
		Likes:       0,
		Dislikes:    0,
		LikedBy:     []string{},
		DislikedBy:  []string{},
	}
	recs = append(recs, rec)
	if err := r.store.SaveRecommendations(ctx, recs); err != nil {
		return 0, err
	}
	slog.Info("recommendation added",
		"rec_id", rec.ID, "group_id", in.GroupID, "author", in.Author)
	return rec.ID, nil
}

// ToggleLike applies a like vote by username on the recommendation:
// a repeated like undoes itself, a standing dislike switches to a like,
// and a first-time vote adds a like.
func (r *Repository) ToggleLike(ctx context.Context, recID int64, username string) error {
	return r.toggleVote(ctx, recID, username, false)
}

// ToggleDislike is the symmetric counterpart of ToggleLike.
func (r *Repository) ToggleDislike(ctx context.Context, recID int64, username string) error {
	return r.toggleVote(ctx, recID, username, true)
}

// toggleVote mutates the vote state so that, afterwards, username is in
// at most one of liked_by/disliked_by and both counters equal the
// length of their set.
func (r *Repository) toggleVote(ctx context.Context, recID int64, username string, dislike bool) error {
	recs, err := r.store.LoadRecommendations(ctx)
	if err != nil {
		return err
	}
	for i := range recs {
		if recs[i].ID != recID {
			continue
		}

		same, opposite := &recs[i].LikedBy, &recs[i].DislikedBy
		sameCount, oppositeCount := &recs[i].Likes, &recs[i].Dislikes
		if dislike {
			same, opposite = opposite, same
			sameCount, oppositeCount = oppositeCount, sameCount
		}

		switch {
		case contains(*same, username):
			// Undo: voting the same direction twice removes the vote.
			*same = remove(*same, username)
			*sameCount--
		case contains(*opposite, username):
			// Switch: move the voter between the exclusive sets.
			*opposite = remove(*opposite, username)
			*oppositeCount--
			*same = append(*same, username)
			*sameCount++
		default:
			// First-time vote.
			*same = append(*same, username)
			*sameCount++
		}

		return r.store.SaveRecommendations(ctx, recs)
	}
	return apperror.NotFound("recommendation", recID)
}

// ListByGroup returns the recommendations posted into the group.
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]models.Recommendation, error) {
	recs, err := r.store.LoadRecommendations(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Recommendation{}
	for _, rec := range recs {
		if rec.GroupID == groupID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListByUser returns the recommendations authored by username.
func (r *Repository) ListByUser(ctx context.Context, username string) ([]models.Recommendation, error) {
	recs, err := r.store.LoadRecommendations(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Recommendation{}
	for _, rec := range recs {
		if rec.Author == username {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SplitTags derives the tag list from comma-separated input: split,
// trim whitespace, drop empties, preserve order, no deduplication.
func SplitTags(tags string) []string {
	out := []string{}
	for _, tag := range strings.Split(tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (r *Repository) findGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	groups, err := r.store.LoadGroups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == groupID {
			return &groups[i], nil
		}
	}
	return nil, apperror.NotFound("group", groupID)
}

// nextGroupID allocates max(existing)+1, starting at 1. Not safe under
// concurrent writers; single-session use is assumed.
func nextGroupID(groups []models.Group) int64 {
	var max int64
	for _, g := range groups {
		if g.ID > max {
			max = g.ID
		}
	}
	return max + 1
}

func nextRecommendationID(recs []models.Recommendation) int64 {
	var max int64
	for _, r := range recs {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}
