package session

import "testing"

func TestSessionLifecycle(t *testing.T) {
	s := New()

	if s.ID == "" {
		t.Error("expected a session ID")
	}
	if s.Authenticated || s.Username != "" || s.CurrentGroup != nil {
		t.Errorf("fresh session not zeroed: %+v", s)
	}
	if s.Page != PageHome {
		t.Errorf("Page = %q, want %q", s.Page, PageHome)
	}

	groupID := int64(3)
	s.Login("alice", &groupID)
	if !s.Authenticated || s.Username != "alice" {
		t.Errorf("login state wrong: %+v", s)
	}
	if s.CurrentGroup == nil || *s.CurrentGroup != 3 {
		t.Errorf("CurrentGroup = %v, want restored group 3", s.CurrentGroup)
	}

	s.Page = "groups"
	s.SelectGroup(5)
	if s.CurrentGroup == nil || *s.CurrentGroup != 5 {
		t.Errorf("CurrentGroup = %v, want 5", s.CurrentGroup)
	}

	id := s.ID
	s.Logout()
	if s.Authenticated || s.Username != "" || s.CurrentGroup != nil {
		t.Errorf("logout did not reset state: %+v", s)
	}
	if s.Page != PageHome {
		t.Errorf("Page after logout = %q, want %q", s.Page, PageHome)
	}
	if s.ID != id {
		t.Error("logout changed the session ID")
	}
}

func TestNewSessionsHaveDistinctIDs(t *testing.T) {
	if New().ID == New().ID {
		t.Error("expected distinct session IDs")
	}
}
