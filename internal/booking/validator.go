package booking

import (
	"context"
	"fmt"
	"time"

	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// UserFinder resolves users. FindByID returns nil, nil for an unknown ID.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// SpaceFinder resolves spaces. FindByID returns nil, nil for an unknown ID.
type SpaceFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Space, error)
}

// Request is a candidate booking. ExcludeReservationID is set when an
// existing reservation is being moved so it does not conflict with itself.
type Request struct {
	UserID               int64
	SpaceID              int64
	Date                 calendar.Date
	Start                calendar.TimeOfDay
	End                  calendar.TimeOfDay
	ExcludeReservationID *int64
}

// Validator checks a Request against every booking rule and reports all
// violations, in rule order.
type Validator struct {
	users     UserFinder
	spaces    SpaceFinder
	conflicts *ConflictDetector
	policy    Policy
}

func NewValidator(users UserFinder, spaces SpaceFinder, conflicts *ConflictDetector, policy Policy) *Validator {
	return &Validator{users: users, spaces: spaces, conflicts: conflicts, policy: policy}
}

// Validate returns the violation messages for req; an empty result means the
// request may be booked. The error is reserved for lookup failures.
func (v *Validator) Validate(ctx context.Context, req Request, now time.Time) ([]string, error) {
	var violations []string
	p := v.policy

	user, err := v.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", req.UserID, err)
	}
	switch {
	case user == nil:
		violations = append(violations, "user not found")
	case !user.CanMakeReservation():
		violations = append(violations, "user is not allowed to make reservations")
	}

	space, err := v.spaces.FindByID(ctx, req.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load space %d: %w", req.SpaceID, err)
	}
	switch {
	case space == nil:
		violations = append(violations, "space not found")
	case !space.IsActive:
		violations = append(violations, "space is not available")
	}

	hours := fmt.Sprintf("(%s - %s)", p.BusinessStart, p.BusinessEnd)
	if req.Start < p.BusinessStart || req.Start >= p.BusinessEnd {
		violations = append(violations, "start time is outside business hours "+hours)
	}
	if req.End <= p.BusinessStart || req.End > p.BusinessEnd {
		violations = append(violations, "end time is outside business hours "+hours)
	}

	duration := req.End.Sub(req.Start)
	if duration > p.MaxDuration {
		violations = append(violations, "reservation duration exceeds "+formatDuration(p.MaxDuration))
	}
	if duration < p.MinDuration {
		violations = append(violations, "minimum reservation duration is "+formatDuration(p.MinDuration))
	}

	today := p.Today(now)
	if req.Date.Before(today) {
		violations = append(violations, "reservations cannot be made for past dates")
	}
	if req.Date.After(today.AddDays(p.MaxDaysAhead)) {
		violations = append(violations, fmt.Sprintf("reservations cannot be made more than %d days in advance", p.MaxDaysAhead))
	}

	// An empty or inverted range has no interval to compare, and a missing
	// space has no reservations.
	if req.Start < req.End && space != nil {
		conflict, err := v.conflicts.HasConflict(ctx, req.SpaceID, req.Date, req.Start, req.End, req.ExcludeReservationID)
		if err != nil {
			return nil, err
		}
		if conflict {
			violations = append(violations, "the requested time slot is already reserved")
		}
	}

	return violations, nil
}
