package booking

import (
	"fmt"
	"time"

	"space-reservation-backend/config"
	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// Policy holds the scheduling rules shared by the validator, the slot
// generator and the cancellation checks.
type Policy struct {
	Location         *time.Location
	BusinessStart    calendar.TimeOfDay
	BusinessEnd      calendar.TimeOfDay
	SlotDuration     time.Duration
	MinDuration      time.Duration
	MaxDuration      time.Duration
	MaxDaysAhead     int
	CancellationLead time.Duration
}

// DefaultPolicy opens 08:00-22:00 UTC with one-hour slots, bookings of one
// to four hours up to 30 days ahead and a two hour cancellation lead.
func DefaultPolicy() Policy {
	return Policy{
		Location:         time.UTC,
		BusinessStart:    calendar.NewTimeOfDay(8, 0),
		BusinessEnd:      calendar.NewTimeOfDay(22, 0),
		SlotDuration:     time.Hour,
		MinDuration:      time.Hour,
		MaxDuration:      4 * time.Hour,
		MaxDaysAhead:     30,
		CancellationLead: 2 * time.Hour,
	}
}

// PolicyFromConfig converts the booking section of the configuration.
func PolicyFromConfig(cfg config.BookingConfig) (Policy, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	start, err := calendar.ParseTimeOfDay(cfg.BusinessStart)
	if err != nil {
		return Policy{}, err
	}
	end, err := calendar.ParseTimeOfDay(cfg.BusinessEnd)
	if err != nil {
		return Policy{}, err
	}
	return Policy{
		Location:         loc,
		BusinessStart:    start,
		BusinessEnd:      end,
		SlotDuration:     time.Duration(cfg.SlotMinutes) * time.Minute,
		MinDuration:      time.Duration(cfg.MinDurationMinutes) * time.Minute,
		MaxDuration:      time.Duration(cfg.MaxDurationMinutes) * time.Minute,
		MaxDaysAhead:     cfg.MaxDaysAhead,
		CancellationLead: time.Duration(cfg.CancellationLeadMinutes) * time.Minute,
	}, nil
}

// Today is now's calendar day in the policy location.
func (p Policy) Today(now time.Time) calendar.Date {
	return calendar.DateOf(now.In(p.location()))
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// CanBeCancelled reports whether res may still be cancelled at now: it must
// be active, not on a past day, and start at least CancellationLead later.
func (p Policy) CanBeCancelled(res *model.Reservation, now time.Time) bool {
	if res.Status == model.StatusCancelled {
		return false
	}
	if res.ReservationDate.Before(p.Today(now)) {
		return false
	}
	return res.StartsAt(p.location()).Sub(now) >= p.CancellationLead
}

// CanBeModified is CanBeCancelled restricted to pending and confirmed
// reservations.
func (p Policy) CanBeModified(res *model.Reservation, now time.Time) bool {
	if !p.CanBeCancelled(res, now) {
		return false
	}
	return res.IsActive()
}

// formatDuration renders whole hours as "4 hours", anything else in minutes.
func formatDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
