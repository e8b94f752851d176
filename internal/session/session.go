// Package session models the UI-facing session state as an explicit
// value instead of ambient globals. The embedding UI owns a Session and
// threads the acting username and active group into repository calls.
package session

import "github.com/google/uuid"

// PageHome is the page every fresh or reset session starts on.
const PageHome = "home"

// Session is the per-user navigation and authentication state. It has
// no storage effect of its own: Logout is a pure reset.
type Session struct {
	// ID identifies this session instance. It survives Logout so one
	// UI run keeps a stable identity across sign-ins.
	ID string

	Authenticated bool
	Username      string

	// CurrentGroup is the active group, or nil when none is selected.
	CurrentGroup *int64

	Page string
}

// New returns an unauthenticated session on the home page.
func New() *Session {
	return &Session{
		ID:   uuid.NewString(),
		Page: PageHome,
	}
}

// Login marks the session authenticated and restores the validated
// last group, if any.
func (s *Session) Login(username string, lastGroup *int64) {
	s.Authenticated = true
	s.Username = username
	s.CurrentGroup = lastGroup
}

// Logout resets every field except the session ID to its initial
// value.
func (s *Session) Logout() {
	s.Authenticated = false
	s.Username = ""
	s.CurrentGroup = nil
	s.Page = PageHome
}

// SelectGroup makes groupID the active group.
func (s *Session) SelectGroup(groupID int64) {
	id := groupID
	s.CurrentGroup = &id
}
