package services

import (
	"errors"
	"fmt"
)

// Recoverable conditions the presentation layer turns into guidance rather
// than failures.
var (
	// ErrNotFound: referenced user/target/record is absent.
	ErrNotFound = errors.New("not found")

	// ErrNoTarget: the user has no target for the requested month. Distinct
	// from 0% progress — presentation prompts for target-setting instead of
	// showing an empty progress bar.
	ErrNoTarget = errors.New("no target set for this month")

	// ErrDuplicateRegistration: registration against an existing user_id.
	// The original registration data stays untouched.
	ErrDuplicateRegistration = errors.New("user is already registered")
)

// AccessDeniedError carries the role a command required. Always logged for
// audit before being surfaced; never silently dropped.
type AccessDeniedError struct {
	UserID   int64
	Required string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied for user %d: requires role %q", e.UserID, e.Required)
}

// StoreError marks a transient persistence failure that survived retries.
// Surfaced to users as a generic "try again later".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
