package models

// Group represents a topical community that recommendations are posted
// into.
type Group struct {
	// ID is the unique identifier, allocated as max(existing)+1
	// starting at 1.
	ID int64 `json:"id"`

	// Name is the display name. Uniqueness is enforced
	// case-insensitively at creation time only.
	Name string `json:"name"`

	// Description is free-form text shown on the group page.
	Description string `json:"description"`

	// Categories is the ordered list of categories recommendations in
	// this group are expected to use. Non-empty at creation.
	Categories []string `json:"categories"`

	// CreatedBy is the username of the creator.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the ISO-8601 creation timestamp.
	CreatedAt string `json:"created_at"`

	// Members is the set of usernames in the group, creator first.
	Members []string `json:"members"`

	// IsPublic reports whether the group is visible to non-members.
	// Defaults to true; groups written before the field existed are
	// migrated to true.
	IsPublic bool `json:"is_public"`
}

// HasMember reports whether username is in the member list.
func (g *Group) HasMember(username string) bool {
	for _, m := range g.Members {
		if m == username {
			return true
		}
	}
	return false
}
