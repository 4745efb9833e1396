package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/model"
)

// Postgres SQLSTATE codes the stores translate.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// activeStatuses are the statuses that hold a slot.
var activeStatuses = []string{string(model.StatusPending), string(model.StatusConfirmed)}

// translateError maps driver constraint failures to booking errors. It
// relies on gorm.Config.TranslateError for duplicates and inspects the
// Postgres error for the exclusion constraint, which gorm does not translate.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return booking.ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return booking.ErrDuplicate
		case pgExclusionViolation:
			return booking.ErrSlotUnavailable
		}
	}
	return err
}

// translateReservationError treats any uniqueness failure on reservations as
// a lost race for the slot.
func translateReservationError(err error) error {
	err = translateError(err)
	if errors.Is(err, booking.ErrDuplicate) {
		return booking.ErrSlotUnavailable
	}
	return err
}

// notFoundAsNil turns gorm.ErrRecordNotFound into a nil error so lookups
// can return nil, nil for a missing row.
func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
