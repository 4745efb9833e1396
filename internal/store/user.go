package store

import (
	"context"

	"gorm.io/gorm"

	"space-reservation-backend/internal/model"
)

// UserStore implements booking.UserRepository.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

func (s *UserStore) Save(ctx context.Context, user *model.User) error {
	db := s.db.WithContext(ctx)
	if user.ID == 0 {
		return translateError(db.Create(user).Error)
	}
	return translateError(db.Save(user).Error)
}
