package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"space-reservation-backend/internal/model"
)

func TestConflictDetector_HasConflict(t *testing.T) {
	day := testToday.AddDays(1)
	cancelled := confirmedAt(3, roomA.ID, day, "14:00", "16:00")
	cancelled.Status = model.StatusCancelled
	repo := newMemReservations(
		confirmedAt(1, roomA.ID, day, "10:00", "11:00"),
		confirmedAt(2, roomB.ID, day, "12:00", "13:00"),
		cancelled,
	)
	detector := NewConflictDetector(repo)
	own := int64(1)

	testCases := []struct {
		name       string
		spaceID    int64
		start, end string
		exclude    *int64
		want       bool
	}{
		{"overlapping start", roomA.ID, "10:30", "11:30", nil, true},
		{"contains existing", roomA.ID, "09:00", "12:00", nil, true},
		{"identical interval", roomA.ID, "10:00", "11:00", nil, true},
		{"ends where existing starts", roomA.ID, "09:00", "10:00", nil, false},
		{"starts where existing ends", roomA.ID, "11:00", "12:00", nil, false},
		{"other space", roomA.ID, "12:00", "13:00", nil, false},
		{"cancelled does not block", roomA.ID, "14:00", "15:00", nil, false},
		{"excluded reservation", roomA.ID, "10:00", "11:00", &own, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := detector.HasConflict(context.Background(), tc.spaceID, day, tod(tc.start), tod(tc.end), tc.exclude)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConflictDetector_OtherDay(t *testing.T) {
	day := testToday.AddDays(1)
	repo := newMemReservations(confirmedAt(1, roomA.ID, day, "10:00", "11:00"))

	got, err := NewConflictDetector(repo).HasConflict(context.Background(), roomA.ID, day.AddDays(1), tod("10:00"), tod("11:00"), nil)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestConflictDetector_RepositoryError(t *testing.T) {
	repo := newMemReservations()
	repo.err = errors.New("connection refused")

	_, err := NewConflictDetector(repo).HasConflict(context.Background(), roomA.ID, testToday, tod("10:00"), tod("11:00"), nil)
	assert.ErrorIs(t, err, repo.err)
}

// A repository that returns more rows than asked must not cause false positives.
func TestAnyConflict_RefiltersCandidates(t *testing.T) {
	day := testToday.AddDays(1)
	rows := []model.Reservation{
		confirmedAt(1, roomA.ID, day, "08:00", "09:00"),
		confirmedAt(2, roomB.ID, day, "10:00", "11:00"),
		confirmedAt(3, roomA.ID, day.AddDays(1), "10:00", "11:00"),
	}
	candidate := confirmedAt(0, roomA.ID, day, "10:00", "11:00")

	assert.False(t, anyConflict(rows, roomA.ID, day, candidate.Interval(), nil))
}
