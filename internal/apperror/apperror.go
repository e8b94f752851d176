// Package apperror defines the error taxonomy shared by the repository
// and storage layers. Callers branch on the sentinel errors with
// errors.Is; the embedding UI decides user-visible presentation.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrAlreadyMember     = errors.New("already a member")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrStorageCorrupt    = errors.New("storage corrupt")
)

// AppError carries a sentinel plus a human-readable message.
type AppError struct {
	Err     error  // sentinel category
	Message string // human-readable error message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that the referenced record does not exist.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
	}
}

// AlreadyExists reports a case-sensitive key collision.
func AlreadyExists(resource, key string) *AppError {
	return &AppError{
		Err:     ErrAlreadyExists,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// DuplicateName reports a case-insensitive name collision.
func DuplicateName(resource, name string) *AppError {
	return &AppError{
		Err:     ErrDuplicateName,
		Message: fmt.Sprintf("a %s with name %q already exists", resource, name),
	}
}

// AlreadyMember reports a redundant group join.
func AlreadyMember(username string, groupID int64) *AppError {
	return &AppError{
		Err:     ErrAlreadyMember,
		Message: fmt.Sprintf("%s is already a member of group %d", username, groupID),
	}
}

// InvalidCredential reports a password mismatch on login.
func InvalidCredential(username string) *AppError {
	return &AppError{
		Err:     ErrInvalidCredential,
		Message: fmt.Sprintf("invalid credential for %s", username),
	}
}
