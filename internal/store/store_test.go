package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

const (
	lockSpaceSQL  = `SELECT "id" FROM "spaces" WHERE "spaces"."id" = $1 LIMIT $2 FOR UPDATE`
	countClashSQL = `SELECT count\(\*\) FROM "reservations" WHERE .*space_id = \$1 AND reservation_date = \$2 AND status IN \(\$3,\$4\).*start_time < \$5 AND end_time > \$6`
)

func TestReservationStore_Save(t *testing.T) {
	day := calendar.MustParseDate("2026-10-18")
	newPending := func() *model.Reservation {
		r, err := model.NewReservation(7, 1, day, calendar.NewTimeOfDay(10, 0), calendar.NewTimeOfDay(11, 0), "meeting", time.Now())
		require.NoError(t, err)
		return r
	}

	testCases := []struct {
		name             string
		reservation      func() *model.Reservation
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      error
		expectedID       int64
	}{
		{
			name:        "New reservation locks the space, re-checks and inserts",
			reservation: newPending,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(lockSpaceSQL)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectQuery(countClashSQL).
					WithArgs(1, "2026-10-18", "pending", "confirmed", 660, 600).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "reservations"`)).
					WithArgs(7, 1, "2026-10-18", 600, 660, "pending", "meeting", Any{}, Any{}).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
				mock.ExpectCommit()
			},
			expectedID: 42,
		},
		{
			name:        "Overlap found under the lock, slot unavailable",
			reservation: newPending,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(lockSpaceSQL)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectQuery(countClashSQL).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			expectedErr: booking.ErrSlotUnavailable,
		},
		{
			name:        "Exclusion constraint violation, slot unavailable",
			reservation: newPending,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(lockSpaceSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectQuery(countClashSQL).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "reservations"`)).
					WillReturnError(&pgconn.PgError{Code: pgExclusionViolation, ConstraintName: "reservations_no_overlap"})
				mock.ExpectRollback()
			},
			expectedErr: booking.ErrSlotUnavailable,
		},
		{
			name:        "Unique index violation, slot unavailable",
			reservation: newPending,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(lockSpaceSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectQuery(countClashSQL).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "reservations"`)).
					WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
				mock.ExpectRollback()
			},
			expectedErr: booking.ErrSlotUnavailable,
		},
		{
			name:        "Unknown space",
			reservation: newPending,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(lockSpaceSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			expectedErr: booking.ErrSpaceNotFound,
		},
		{
			name: "Confirming excludes the reservation itself from the re-check",
			reservation: func() *model.Reservation {
				r := newPending()
				r.ID = 42
				r.Confirm()
				return r
			},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(lockSpaceSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectQuery(countClashSQL + `.*id <> \$7`).
					WithArgs(1, "2026-10-18", "pending", "confirmed", 660, 600, 42).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reservations" SET`)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			expectedID: 42,
		},
		{
			name: "Cancelling skips the lock",
			reservation: func() *model.Reservation {
				r := newPending()
				r.ID = 42
				r.Cancel()
				return r
			},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reservations" SET`)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			expectedID: 42,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewReservationStore(gormDB)
			res := tc.reservation()

			tc.mockExpectations(mock)

			err := store.Save(context.Background(), res)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedID, res.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReservationStore_FindConflictingReservations_Query(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewReservationStore(gormDB)
	exclude := int64(5)

	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE .*start_time < \$5 AND end_time > \$6.*id <> \$7 ORDER BY start_time`).
		WithArgs(1, "2026-10-18", "pending", "confirmed", 720, 600, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "space_id", "reservation_date", "start_time", "end_time", "status"}).
			AddRow(3, 1, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), 660, 720, "confirmed"))

	got, err := store.FindConflictingReservations(context.Background(), 1, calendar.MustParseDate("2026-10-18"),
		calendar.NewTimeOfDay(10, 0), calendar.NewTimeOfDay(12, 0), &exclude)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, calendar.MustParseDate("2026-10-18"), got[0].ReservationDate)
	assert.Equal(t, calendar.NewTimeOfDay(11, 0), got[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), booking.ErrDuplicate)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: pgUniqueViolation}), booking.ErrDuplicate)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: pgExclusionViolation}), booking.ErrSlotUnavailable)
	assert.ErrorIs(t, translateReservationError(gorm.ErrDuplicatedKey), booking.ErrSlotUnavailable)

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), translateError(other))
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestNotificationStore_MarkSent(t *testing.T) {
	const markSentSQL = `UPDATE "notifications" SET "sent"=\$1,"sent_at"=\$2 WHERE \(?id = \$3 AND sent = \$4\)?`
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	t.Run("flips a pending row", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(markSentSQL).
			WithArgs(true, at, "n-1", false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := NewNotificationStore(db).MarkSent(context.Background(), "n-1", at)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already sent", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(markSentSQL).
			WithArgs(true, at, "n-1", false).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := NewNotificationStore(db).MarkSent(context.Background(), "n-1", at)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
