// Package calendar holds the time primitives shared by the booking engine:
// calendar days, times of day and half-open intervals.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyInterval is returned when an interval does not satisfy start < end.
var ErrEmptyInterval = errors.New("interval start must be before end")

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval validates start < end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: %s >= %s", ErrEmptyInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// MustInterval panics when start >= end.
func MustInterval(start, end time.Time) Interval {
	iv, err := NewInterval(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

// DayInterval places [start, end) on day d in loc.
func DayInterval(d Date, start, end TimeOfDay, loc *time.Location) Interval {
	return Interval{Start: d.At(start, loc), End: d.At(end, loc)}
}

// Overlaps reports whether the two intervals share any instant.
// Touching endpoints never overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Hours is the wall-clock length as a fraction of hours.
func (i Interval) Hours() float64 {
	return i.Duration().Seconds() / 3600
}
