package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is wrapped by every lookup failure so callers can match
	// the whole family with errors.Is.
	ErrNotFound            = errors.New("not found")
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrSpaceNotFound       = fmt.Errorf("space %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)

	// ErrForbidden is returned when the actor neither owns the reservation
	// nor holds the admin role, or when a non-admin manages spaces.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrDuplicate is returned by stores when a unique key is already taken.
	ErrDuplicate = errors.New("already exists")

	// ErrSlotUnavailable is returned when the store rejects a write that
	// passed validation because a concurrent booking took the slot. It is
	// safe to retry after re-reading availability.
	ErrSlotUnavailable = errors.New("the requested slot just became unavailable")
)

// ValidationError carries every rule violation of a rejected request.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// newValidationError returns nil for an empty list.
func newValidationError(violations ...string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// Violations extracts the messages of a ValidationError, or nil.
func Violations(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Violations
	}
	return nil
}
