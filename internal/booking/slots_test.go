package booking

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"space-reservation-backend/internal/model"
)

var businessDay = Window{Start: tod("08:00"), End: tod("22:00"), Step: time.Hour}

func TestWalkSlots_EmptyDay(t *testing.T) {
	slots := slices.Collect(WalkSlots(testToday, businessDay, nil))

	require.Len(t, slots, 14)
	assert.Equal(t, tod("08:00"), slots[0].Start)
	assert.Equal(t, tod("22:00"), slots[13].End)
	for i, s := range slots {
		assert.True(t, s.Available)
		assert.Equal(t, time.Hour, s.End.Sub(s.Start))
		if i > 0 {
			assert.Equal(t, slots[i-1].End, s.Start, "slots must be chronological and non-overlapping")
		}
	}
}

func TestWalkSlots_MarksOccupied(t *testing.T) {
	cancelled := confirmedAt(3, roomA.ID, testToday, "15:00", "16:00")
	cancelled.Status = model.StatusCancelled
	existing := []model.Reservation{
		confirmedAt(1, roomA.ID, testToday, "10:00", "12:00"),
		confirmedAt(2, roomA.ID, testToday, "13:30", "14:00"),
		cancelled,
	}

	var busy []string
	for s := range WalkSlots(testToday, businessDay, existing) {
		if !s.Available {
			busy = append(busy, s.Start.String())
		}
	}
	assert.Equal(t, []string{"10:00", "11:00", "13:00"}, busy)
}

func TestWalkSlots_TrailingPartialSlot(t *testing.T) {
	w := Window{Start: tod("08:00"), End: tod("09:30"), Step: time.Hour}

	slots := slices.Collect(WalkSlots(testToday, w, nil))

	require.Len(t, slots, 2)
	assert.Equal(t, Slot{Start: tod("09:00"), End: tod("09:30"), Available: true}, slots[1])
}

func TestWalkSlots_Restartable(t *testing.T) {
	seq := WalkSlots(testToday, businessDay, []model.Reservation{confirmedAt(1, roomA.ID, testToday, "08:00", "09:00")})

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// Stopping early must not break later iterations.
	for range seq {
		break
	}
	assert.Len(t, slices.Collect(seq), 14)
}

func TestWalkSlots_DegenerateWindow(t *testing.T) {
	assert.Empty(t, slices.Collect(WalkSlots(testToday, Window{Start: tod("10:00"), End: tod("10:00"), Step: time.Hour}, nil)))
	assert.Empty(t, slices.Collect(WalkSlots(testToday, Window{Start: tod("08:00"), End: tod("10:00")}, nil)))
}

func TestSlotGenerator_AvailableSlots(t *testing.T) {
	repo := newMemReservations(
		confirmedAt(1, roomA.ID, testToday, "08:00", "20:00"),
		confirmedAt(2, roomB.ID, testToday, "20:00", "22:00"),
	)
	gen := NewSlotGenerator(repo, DefaultPolicy())

	seq, err := gen.AvailableSlots(context.Background(), roomA.ID, testToday)
	require.NoError(t, err)

	free := slices.Collect(seq)
	require.Len(t, free, 2)
	assert.Equal(t, tod("20:00"), free[0].Start)
	assert.Equal(t, tod("21:00"), free[1].Start)
}
