package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"space-reservation-backend/internal/model"
)

// NotificationStore persists notifications until they are delivered.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n *model.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *NotificationStore) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &n, nil
}

// FindPending returns undelivered notifications, least attempted first and
// oldest first within the same attempt count, so rows that keep failing do
// not starve newer ones. A limit of zero or less returns all of them.
func (s *NotificationStore) FindPending(ctx context.Context, limit int) ([]model.Notification, error) {
	q := s.db.WithContext(ctx).Where("sent = ?", false).Order("attempts, created_at, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.Notification
	err := q.Find(&out).Error
	return out, err
}

func (s *NotificationStore) FindByUserID(ctx context.Context, userID int64) ([]model.Notification, error) {
	var out []model.Notification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// RecordFailure counts a failed delivery attempt.
func (s *NotificationStore) RecordFailure(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// MarkSent flags a notification as delivered. Only a still-pending row is
// updated, so concurrent deliveries of the same ID report once.
func (s *NotificationStore) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]any{"sent": true, "sent_at": at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
