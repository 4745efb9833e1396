package notification

import (
	"context"
	"fmt"

	"space-reservation-backend/internal/model"
)

// Dispatcher persists notifications and queues them on the worker pool.
type Dispatcher struct {
	notifications Repository
	pool          *WorkerPool
}

func NewDispatcher(notifications Repository, pool *WorkerPool) *Dispatcher {
	return &Dispatcher{notifications: notifications, pool: pool}
}

// Notify stores n as pending and hands its ID to a worker.
func (d *Dispatcher) Notify(ctx context.Context, n *model.Notification) error {
	if err := d.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	d.pool.Dispatch(n.ID)
	return nil
}
