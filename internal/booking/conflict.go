package booking

import (
	"context"
	"fmt"
	"time"

	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// ReservationRepository is the persistence contract of the booking engine.
type ReservationRepository interface {
	// FindConflictingReservations returns active reservations of the space on
	// date overlapping [start, end), skipping excludeID when set.
	FindConflictingReservations(ctx context.Context, spaceID int64, date calendar.Date, start, end calendar.TimeOfDay, excludeID *int64) ([]model.Reservation, error)
	// FindBySpaceAndDateRange returns the space's reservations with from <= date <= to,
	// ordered by date and start time.
	FindBySpaceAndDateRange(ctx context.Context, spaceID int64, from, to calendar.Date) ([]model.Reservation, error)
	FindByDateRange(ctx context.Context, from, to calendar.Date) ([]model.Reservation, error)
	// Save inserts a reservation without an ID and updates it otherwise. An
	// active reservation is re-checked for conflicts inside the write, which
	// fails with ErrSlotUnavailable when another writer got there first.
	Save(ctx context.Context, res *model.Reservation) error
	// FindByID returns nil, nil when no reservation has that ID.
	FindByID(ctx context.Context, id int64) (*model.Reservation, error)
	FindByUserID(ctx context.Context, userID int64) ([]model.Reservation, error)
	FindByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error)
	FindByDate(ctx context.Context, date calendar.Date) ([]model.Reservation, error)
}

// ConflictDetector decides whether a candidate interval double-books a space.
type ConflictDetector struct {
	repo ReservationRepository
}

func NewConflictDetector(repo ReservationRepository) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// HasConflict reports whether any active reservation other than excludeID
// overlaps [start, end) on the space and date. Adjacent intervals never
// conflict.
func (d *ConflictDetector) HasConflict(ctx context.Context, spaceID int64, date calendar.Date, start, end calendar.TimeOfDay, excludeID *int64) (bool, error) {
	candidates, err := d.repo.FindConflictingReservations(ctx, spaceID, date, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to look up conflicting reservations: %w", err)
	}
	return anyConflict(candidates, spaceID, date, calendar.DayInterval(date, start, end, time.UTC), excludeID), nil
}

// anyConflict re-applies the overlap predicate so a repository returning a
// wider set than asked for cannot produce a false positive.
func anyConflict(reservations []model.Reservation, spaceID int64, date calendar.Date, candidate calendar.Interval, excludeID *int64) bool {
	for i := range reservations {
		r := &reservations[i]
		if !r.IsActive() || r.SpaceID != spaceID || r.ReservationDate != date {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if r.Interval().Overlaps(candidate) {
			return true
		}
	}
	return false
}
