package notification

import (
	"context"
	"time"

	"space-reservation-backend/internal/model"
)

// PendingStats summarises the undelivered backlog.
type PendingStats struct {
	Total         int                            `json:"total"`
	ByType        map[model.NotificationType]int `json:"byType"`
	OldestPending *time.Time                     `json:"oldestPending"`
}

// Pending computes backlog statistics over every pending notification.
func Pending(ctx context.Context, notifications Repository) (*PendingStats, error) {
	pending, err := notifications.FindPending(ctx, 0)
	if err != nil {
		return nil, err
	}

	stats := &PendingStats{ByType: make(map[model.NotificationType]int, len(model.NotificationTypes))}
	for _, t := range model.NotificationTypes {
		stats.ByType[t] = 0
	}
	for i := range pending {
		n := &pending[i]
		stats.Total++
		stats.ByType[n.Type]++
		if stats.OldestPending == nil || n.CreatedAt.Before(*stats.OldestPending) {
			created := n.CreatedAt
			stats.OldestPending = &created
		}
	}
	return stats, nil
}
