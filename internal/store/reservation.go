package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// ReservationStore implements booking.ReservationRepository with GORM.
type ReservationStore struct {
	db *gorm.DB
}

func NewReservationStore(db *gorm.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

func overlapping(q *gorm.DB, spaceID int64, date calendar.Date, start, end calendar.TimeOfDay, excludeID *int64) *gorm.DB {
	q = q.Where("space_id = ? AND reservation_date = ? AND status IN ?", spaceID, date, activeStatuses).
		Where("start_time < ? AND end_time > ?", end, start) // half-open overlap
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	return q
}

func (s *ReservationStore) FindConflictingReservations(ctx context.Context, spaceID int64, date calendar.Date, start, end calendar.TimeOfDay, excludeID *int64) ([]model.Reservation, error) {
	var out []model.Reservation
	err := overlapping(s.db.WithContext(ctx), spaceID, date, start, end, excludeID).
		Order("start_time").
		Find(&out).Error
	return out, err
}

func (s *ReservationStore) FindBySpaceAndDateRange(ctx context.Context, spaceID int64, from, to calendar.Date) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("space_id = ? AND reservation_date BETWEEN ? AND ?", spaceID, from, to).
		Order("reservation_date, start_time").
		Find(&out).Error
	return out, err
}

func (s *ReservationStore) FindByDateRange(ctx context.Context, from, to calendar.Date) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("reservation_date BETWEEN ? AND ?", from, to).
		Order("reservation_date, start_time, id").
		Find(&out).Error
	return out, err
}

// Save writes res in one transaction. Active reservations lock their space
// row and re-check for overlaps first, so two writers racing for the same
// slot are serialized and the loser gets booking.ErrSlotUnavailable.
func (s *ReservationStore) Save(ctx context.Context, res *model.Reservation) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res.IsActive() {
			if err := lockSpace(tx, res.SpaceID); err != nil {
				return err
			}
			var clashes int64
			q := overlapping(tx.Model(&model.Reservation{}), res.SpaceID, res.ReservationDate, res.StartTime, res.EndTime, nil)
			if res.ID != 0 {
				q = q.Where("id <> ?", res.ID)
			}
			if err := q.Count(&clashes).Error; err != nil {
				return fmt.Errorf("failed to re-check conflicts: %w", err)
			}
			if clashes > 0 {
				return booking.ErrSlotUnavailable
			}
		}

		if res.ID == 0 {
			return tx.Create(res).Error
		}
		return tx.Save(res).Error
	})
	return translateReservationError(err)
}

// lockSpace takes a row lock on the space so concurrent writers for it queue
// up. SQLite has no row locks; its single writer already serializes them.
func lockSpace(tx *gorm.DB, spaceID int64) error {
	q := tx.Model(&model.Space{}).Select("id")
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var space model.Space
	if err := q.Take(&space, spaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking.ErrSpaceNotFound
		}
		return fmt.Errorf("failed to lock space %d: %w", spaceID, err)
	}
	return nil
}

func (s *ReservationStore) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	var res model.Reservation
	if err := s.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &res, nil
}

func (s *ReservationStore) FindByUserID(ctx context.Context, userID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("reservation_date DESC, start_time DESC").
		Find(&out).Error
	return out, err
}

func (s *ReservationStore) FindByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("reservation_date, start_time").
		Find(&out).Error
	return out, err
}

func (s *ReservationStore) FindByDate(ctx context.Context, date calendar.Date) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("reservation_date = ?", date).
		Order("space_id, start_time").
		Find(&out).Error
	return out, err
}
