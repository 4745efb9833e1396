package booking

import (
	"context"
	"fmt"
	"iter"
	"time"

	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// Slot is a candidate window used for availability display.
type Slot struct {
	Start     calendar.TimeOfDay `json:"start"`
	End       calendar.TimeOfDay `json:"end"`
	Available bool               `json:"available"`
}

// Window is the part of a day sliced into slots.
type Window struct {
	Start calendar.TimeOfDay
	End   calendar.TimeOfDay
	Step  time.Duration
}

// SlotGenerator computes availability for one space and day.
type SlotGenerator struct {
	repo   ReservationRepository
	window Window
}

func NewSlotGenerator(repo ReservationRepository, policy Policy) *SlotGenerator {
	return &SlotGenerator{
		repo: repo,
		window: Window{
			Start: policy.BusinessStart,
			End:   policy.BusinessEnd,
			Step:  policy.SlotDuration,
		},
	}
}

// Slots returns every slot of the business window, each marked available or
// not. The reservations are read once; the sequence can be ranged over any
// number of times.
func (g *SlotGenerator) Slots(ctx context.Context, spaceID int64, date calendar.Date) (iter.Seq[Slot], error) {
	existing, err := g.repo.FindBySpaceAndDateRange(ctx, spaceID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations for space %d on %s: %w", spaceID, date, err)
	}
	return WalkSlots(date, g.window, existing), nil
}

// AvailableSlots is Slots without the occupied entries.
func (g *SlotGenerator) AvailableSlots(ctx context.Context, spaceID int64, date calendar.Date) (iter.Seq[Slot], error) {
	all, err := g.Slots(ctx, spaceID, date)
	if err != nil {
		return nil, err
	}
	return func(yield func(Slot) bool) {
		for s := range all {
			if s.Available && !yield(s) {
				return
			}
		}
	}, nil
}

// WalkSlots steps through w in chronological order. A trailing slot that
// does not fit a whole step is shortened to end at w.End. Cancelled
// reservations never make a slot unavailable.
func WalkSlots(date calendar.Date, w Window, reservations []model.Reservation) iter.Seq[Slot] {
	active := make([]calendar.Interval, 0, len(reservations))
	for i := range reservations {
		r := &reservations[i]
		if r.IsActive() && r.ReservationDate == date {
			active = append(active, r.Interval())
		}
	}

	return func(yield func(Slot) bool) {
		if w.Step < time.Minute || w.Start >= w.End {
			return
		}
		for start := w.Start; start < w.End; start = start.Add(w.Step) {
			end := start.Add(w.Step)
			if end > w.End {
				end = w.End
			}
			slot := calendar.DayInterval(date, start, end, time.UTC)
			available := true
			for _, iv := range active {
				if iv.Overlaps(slot) {
					available = false
					break
				}
			}
			if !yield(Slot{Start: start, End: end, Available: available}) {
				return
			}
		}
	}
}
