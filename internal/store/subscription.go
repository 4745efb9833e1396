package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"space-reservation-backend/internal/model"
)

// SubscriptionStore manages web push subscriptions.
type SubscriptionStore struct {
	db *gorm.DB
}

func NewSubscriptionStore(db *gorm.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Upsert creates the subscription or replaces its keys and owner.
func (s *SubscriptionStore) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *SubscriptionStore) Get(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &sub, nil
}

func (s *SubscriptionStore) FindByUserID(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var out []model.PushSubscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error
	return out, err
}

func (s *SubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}
