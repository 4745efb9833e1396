package model

import (
	"errors"
	"fmt"
	"time"

	"space-reservation-backend/internal/calendar"
)

// ErrInvalidTimeRange is returned when a reservation would not satisfy start < end.
var ErrInvalidTimeRange = errors.New("reservation start time must be before end time")

// Status is the reservation lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every lifecycle state in order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCancelled}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", s)
}

// Reservation books a space for one interval on one calendar day.
// SpaceID, ReservationDate and the interval form its conflict key; the
// partial unique index rejects two active rows starting at the same minute.
type Reservation struct {
	ID              int64              `gorm:"primaryKey" json:"id"`
	UserID          int64              `gorm:"index;not null" json:"userId"`
	SpaceID         int64              `gorm:"not null;index:idx_reservations_space_date,priority:1;uniqueIndex:idx_reservations_active_slot,priority:1,where:status <> 'cancelled'" json:"spaceId"`
	ReservationDate calendar.Date      `gorm:"not null;index:idx_reservations_space_date,priority:2;uniqueIndex:idx_reservations_active_slot,priority:2" json:"reservationDate"`
	StartTime       calendar.TimeOfDay `gorm:"not null;uniqueIndex:idx_reservations_active_slot,priority:3" json:"startTime"`
	EndTime         calendar.TimeOfDay `gorm:"not null" json:"endTime"`
	Status          Status             `gorm:"size:16;not null;index" json:"status"`
	Purpose         string             `gorm:"size:512" json:"purpose"`
	CreatedAt       time.Time          `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time          `json:"-"`
}

// NewReservation constructs a pending reservation. It has no ID until saved.
func NewReservation(userID, spaceID int64, date calendar.Date, start, end calendar.TimeOfDay, purpose string, now time.Time) (*Reservation, error) {
	if !start.Valid() || !end.Valid() || start >= end {
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return &Reservation{
		UserID:          userID,
		SpaceID:         spaceID,
		ReservationDate: date,
		StartTime:       start,
		EndTime:         end,
		Status:          StatusPending,
		Purpose:         purpose,
		CreatedAt:       now,
	}, nil
}

// Confirm moves a pending reservation to confirmed; otherwise it does nothing.
func (r *Reservation) Confirm() {
	if r.Status == StatusPending {
		r.Status = StatusConfirmed
	}
}

// Cancel moves a pending or confirmed reservation to cancelled; otherwise it
// does nothing. Cancelled is terminal.
func (r *Reservation) Cancel() {
	if r.IsActive() {
		r.Status = StatusCancelled
	}
}

// IsActive is true for pending and confirmed reservations.
func (r *Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// Interval is the reservation's span on its day. It is built in UTC because
// only ordering within a single day matters for conflicts.
func (r *Reservation) Interval() calendar.Interval {
	return calendar.DayInterval(r.ReservationDate, r.StartTime, r.EndTime, time.UTC)
}

// StartsAt returns the absolute start instant in loc.
func (r *Reservation) StartsAt(loc *time.Location) time.Time {
	return r.ReservationDate.At(r.StartTime, loc)
}

// Duration is end minus start.
func (r *Reservation) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Overlaps reports a conflict on the same space and day. It is symmetric.
func (r *Reservation) Overlaps(other *Reservation) bool {
	if r.SpaceID != other.SpaceID {
		return false
	}
	if r.ReservationDate != other.ReservationDate {
		return false
	}
	return r.Interval().Overlaps(other.Interval())
}

// Reschedule moves the reservation to a new day and interval.
func (r *Reservation) Reschedule(date calendar.Date, start, end calendar.TimeOfDay) error {
	if !start.Valid() || !end.Valid() || start >= end {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	r.ReservationDate = date
	r.StartTime = start
	r.EndTime = end
	return nil
}
