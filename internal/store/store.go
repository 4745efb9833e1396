package store

import (
	"gorm.io/gorm"
)

// Store groups the GORM-backed repositories over one connection.
type Store struct {
	db            *gorm.DB
	Reservations  *ReservationStore
	Spaces        *SpaceStore
	Users         *UserStore
	Notifications *NotificationStore
	Subscriptions *SubscriptionStore
}

// NewGormStore creates every repository on db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Reservations:  NewReservationStore(db),
		Spaces:        NewSpaceStore(db),
		Users:         NewUserStore(db),
		Notifications: NewNotificationStore(db),
		Subscriptions: NewSubscriptionStore(db),
	}
}

// DB exposes the connection for health checks and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}
