// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to operate on a resource owned by someone else, while
// ErrConflict signals that an operation cannot proceed because of
// existing state (e.g. submitting feedback for a week that already
// has an entry).
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because
// of conflicting state, such as a duplicate weekly feedback entry.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// error (code 1062). The unique keys on users.email,
// profiles.user_id and feedback_entries(profile_id, week_number)
// surface through this check; the storage-level constraint, not the
// application-level pre-check, is the owner of those invariants.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
