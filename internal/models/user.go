package models

// User represents a registered account.
//
// Users are keyed by username (case-sensitive) rather than by a surrogate
// ID; the username is the stable identity referenced from group member
// lists and recommendation authorship.
type User struct {
	// Password is the stored credential, compared as an opaque value.
	// Hashing is deliberately out of scope for this core.
	Password string `json:"password"`

	// CreatedAt is the ISO-8601 timestamp when the account was created.
	// Timestamps are carried as opaque strings so records written by
	// earlier versions round-trip unchanged.
	CreatedAt string `json:"created_at"`

	// PreferredGroup is the group the user chose to start in, or nil.
	PreferredGroup *int64 `json:"preferred_group"`

	// LastGroup is the group the user last had active, or nil.
	// Restored on login when the group still exists and the user is
	// still a member.
	LastGroup *int64 `json:"last_group"`
}
