// Package migrate normalizes persisted records of any earlier schema
// shape to the current shape.
//
// Earlier versions of the data differ structurally: users were stored
// as bare password strings, recommendations predate the dislike fields,
// groups predate the visibility flag. The rules here upgrade each record
// field by field, in a fixed order, and every rule is independently
// idempotent: running it twice produces no further change.
//
// The package holds no state of its own. Stores call it on every load
// and persist the normalized result when anything was filled in, so the
// transform runs at most once per stale record.
package migrate

import (
	"time"

	"github.com/indica-app/indica/internal/models"
)

// now returns the current ISO-8601 timestamp. Overridable in tests.
var now = func() string { return time.Now().Format(time.RFC3339) }

// Users normalizes the raw users mapping (username -> record) and
// returns the typed collection plus the number of records that needed
// upgrading.
func Users(raw map[string]any) (map[string]models.User, int) {
	users := make(map[string]models.User, len(raw))
	healed := 0
	for username, rec := range raw {
		user, changed := UserRecord(rec)
		if changed {
			healed++
		}
		users[username] = user
	}
	return users, healed
}

// UserRecord normalizes a single user record. A value that is not a
// structured object is a bare credential from the oldest data version
// and is wrapped into a full record.
func UserRecord(raw any) (models.User, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		password, _ := raw.(string)
		return models.User{
			Password:  password,
			CreatedAt: now(),
		}, true
	}

	changed := missingAny(obj, "preferred_group", "last_group", "created_at")
	return models.User{
		Password:       stringField(obj, "password"),
		CreatedAt:      stringFieldOr(obj, "created_at", now),
		PreferredGroup: idField(obj, "preferred_group"),
		LastGroup:      idField(obj, "last_group"),
	}, changed
}

// Groups normalizes the raw groups sequence.
func Groups(raw []any) ([]models.Group, int) {
	groups := make([]models.Group, 0, len(raw))
	healed := 0
	for _, rec := range raw {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		group, changed := GroupRecord(obj)
		if changed {
			healed++
		}
		groups = append(groups, group)
	}
	return groups, healed
}

// groupRequired are the fields every current group record carries,
// beyond the is_public flag added in a later version.
var groupRequired = []string{
	"id", "name", "description", "categories",
	"created_by", "created_at", "members",
}

// GroupRecord normalizes a single group record.
func GroupRecord(obj map[string]any) (models.Group, bool) {
	changed := missingAny(obj, "is_public")
	changed = missingAny(obj, groupRequired...) || changed

	return models.Group{
		ID:          intField(obj, "id"),
		Name:        stringField(obj, "name"),
		Description: stringField(obj, "description"),
		Categories:  stringListField(obj, "categories"),
		CreatedBy:   stringField(obj, "created_by"),
		CreatedAt:   stringFieldOr(obj, "created_at", now),
		Members:     stringListField(obj, "members"),
		IsPublic:    boolFieldOr(obj, "is_public", true),
	}, changed
}

// Recommendations normalizes the raw recommendations sequence.
func Recommendations(raw []any) ([]models.Recommendation, int) {
	recs := make([]models.Recommendation, 0, len(raw))
	healed := 0
	for _, rec := range raw {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		r, changed := RecommendationRecord(obj)
		if changed {
			healed++
		}
		recs = append(recs, r)
	}
	return recs, healed
}

// recRequired are the fields every current recommendation record
// carries, beyond the dislike fields added in a later version.
var recRequired = []string{
	"id", "title", "description", "category", "rating",
	"tags", "author", "group_id", "created_at", "likes", "liked_by",
}

// RecommendationRecord normalizes a single recommendation record.
// The dislike fields are checked first (they were added first,
// historically), then the remaining required fields.
func RecommendationRecord(obj map[string]any) (models.Recommendation, bool) {
	changed := missingAny(obj, "dislikes", "disliked_by")
	changed = missingAny(obj, recRequired...) || changed

	return models.Recommendation{
		ID:          intField(obj, "id"),
		Title:       stringField(obj, "title"),
		Description: stringField(obj, "description"),
		Category:    stringField(obj, "category"),
		Rating:      int(intField(obj, "rating")),
		Tags:        stringListField(obj, "tags"),
		Author:      stringField(obj, "author"),
		GroupID:     intField(obj, "group_id"),
		CreatedAt:   stringFieldOr(obj, "created_at", now),
		Likes:       int(intField(obj, "likes")),
		Dislikes:    int(intField(obj, "dislikes")),
		LikedBy:     stringListField(obj, "liked_by"),
		DislikedBy:  stringListField(obj, "disliked_by"),
	}, changed
}

// missingAny reports whether any of the keys is absent from obj.
// A key that is present with a null value counts as present: null is a
// legitimate stored value for the nullable group references.
func missingAny(obj map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			return true
		}
	}
	return false
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// stringFieldOr returns the string at key, or fallback() if the key is
// absent. Used for created_at, whose fill value is the current time.
func stringFieldOr(obj map[string]any, key string, fallback func() string) string {
	if v, ok := obj[key]; ok {
		s, _ := v.(string)
		return s
	}
	return fallback()
}

// intField reads an integer that JSON decoding may have produced as a
// float64 or an int64 depending on the source.
func intField(obj map[string]any, key string) int64 {
	switch v := obj[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// idField reads a nullable group reference.
func idField(obj map[string]any, key string) *int64 {
	switch v := obj[key].(type) {
	case float64:
		id := int64(v)
		return &id
	case int64:
		return &v
	}
	return nil
}

func boolFieldOr(obj map[string]any, key string, fallback bool) bool {
	if v, ok := obj[key]; ok {
		b, _ := v.(bool)
		return b
	}
	return fallback
}

// stringListField reads a list of strings, never returning nil so the
// encoded form is always [] rather than null.
func stringListField(obj map[string]any, key string) []string {
	out := []string{}
	list, _ := obj[key].([]any)
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
