package store

import (
	"context"

	"gorm.io/gorm"

	"space-reservation-backend/internal/model"
)

// SpaceStore implements booking.SpaceRepository.
type SpaceStore struct {
	db *gorm.DB
}

func NewSpaceStore(db *gorm.DB) *SpaceStore {
	return &SpaceStore{db: db}
}

func (s *SpaceStore) FindByID(ctx context.Context, id int64) (*model.Space, error) {
	var space model.Space
	if err := s.db.WithContext(ctx).First(&space, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &space, nil
}

func (s *SpaceStore) FindByName(ctx context.Context, name string) (*model.Space, error) {
	var space model.Space
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&space).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &space, nil
}

func (s *SpaceStore) FindAll(ctx context.Context) ([]model.Space, error) {
	var out []model.Space
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *SpaceStore) FindActive(ctx context.Context) ([]model.Space, error) {
	var out []model.Space
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&out).Error
	return out, err
}

func (s *SpaceStore) FindByType(ctx context.Context, typ model.SpaceType) ([]model.Space, error) {
	var out []model.Space
	err := s.db.WithContext(ctx).Where("type = ?", string(typ)).Order("id").Find(&out).Error
	return out, err
}

func (s *SpaceStore) Save(ctx context.Context, space *model.Space) error {
	db := s.db.WithContext(ctx)
	if space.ID == 0 {
		return translateError(db.Create(space).Error)
	}
	return translateError(db.Save(space).Error)
}
