package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NotFound("group", int64(7)), ErrNotFound},
		{"already exists", AlreadyExists("user", "alice"), ErrAlreadyExists},
		{"duplicate name", DuplicateName("group", "Movies"), ErrDuplicateName},
		{"already member", AlreadyMember("alice", 7), ErrAlreadyMember},
		{"invalid credential", InvalidCredential("alice"), ErrInvalidCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
			wrapped := fmt.Errorf("handling request: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("sentinel lost through wrapping: %v", wrapped)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
