package models

// Recommendation represents a rated, tagged post inside a group.
type Recommendation struct {
	// ID is the unique identifier, allocated as max(existing)+1
	// starting at 1.
	ID int64 `json:"id"`

	// Title and Description are the user-visible content.
	Title       string `json:"title"`
	Description string `json:"description"`

	// Category should be one of the owning group's categories. This is
	// not enforced at the storage level.
	Category string `json:"category"`

	// Rating is an integer from 1 to 5.
	Rating int `json:"rating"`

	// Tags is an ordered list of trimmed, non-empty strings derived
	// from comma-separated input. Not deduplicated.
	Tags []string `json:"tags"`

	// Author is the posting username.
	Author string `json:"author"`

	// GroupID references the owning Group.
	GroupID int64 `json:"group_id"`

	// CreatedAt is the ISO-8601 creation timestamp.
	CreatedAt string `json:"created_at"`

	// Likes and Dislikes are vote counters. The invariants
	// Likes == len(LikedBy) and Dislikes == len(DislikedBy) hold after
	// every mutation.
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`

	// LikedBy and DislikedBy are mutually exclusive sets of usernames:
	// a user appears in at most one of the two at any time.
	LikedBy    []string `json:"liked_by"`
	DislikedBy []string `json:"disliked_by"`
}

// LikedByUser reports whether username has an active like on r.
func (r *Recommendation) LikedByUser(username string) bool {
	for _, u := range r.LikedBy {
		if u == username {
			return true
		}
	}
	return false
}

// DislikedByUser reports whether username has an active dislike on r.
func (r *Recommendation) DislikedByUser(username string) bool {
	for _, u := range r.DislikedBy {
		if u == username {
			return true
		}
	}
	return false
}
