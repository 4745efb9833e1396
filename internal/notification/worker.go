package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"space-reservation-backend/internal/model"
)

// ErrNoSender is returned when a notification's channel has no sender.
var ErrNoSender = errors.New("no sender for notification channel")

// Repository is the persistence the delivery pipeline needs.
type Repository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id string) (*model.Notification, error)
	FindPending(ctx context.Context, limit int) ([]model.Notification, error)
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
	RecordFailure(ctx context.Context, id string) error
}

// Sender delivers one notification over one channel.
type Sender interface {
	Send(ctx context.Context, n *model.Notification) error
}

// WorkerPool manages a pool of workers for delivering notifications.
type WorkerPool struct {
	size          int
	jobs          chan string
	notifications Repository
	senders       map[model.NotificationType]Sender
	now           func() time.Time
}

// NewWorkerPool creates a new worker pool. The queue holds a few jobs per
// worker; anything that does not fit is picked up by the sweeper.
func NewWorkerPool(size int, notifications Repository, senders map[model.NotificationType]Sender) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:          size,
		jobs:          make(chan string, size*16),
		notifications: notifications,
		senders:       senders,
		now:           time.Now,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case notificationID := <-wp.jobs:
			if err := wp.Deliver(ctx, notificationID); err != nil {
				log.Printf("Worker %d failed to deliver notification %s: %v", id, notificationID, err)
			}
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a notification for delivery without blocking. It reports
// false when the queue is full; the notification stays pending.
func (wp *WorkerPool) Dispatch(notificationID string) bool {
	select {
	case wp.jobs <- notificationID:
		return true
	default:
		log.Printf("Notification queue full; %s left for the sweeper", notificationID)
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// Deliver sends one stored notification and marks it as sent. Already sent
// notifications are skipped.
func (wp *WorkerPool) Deliver(ctx context.Context, notificationID string) error {
	n, err := wp.notifications.FindByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("failed to load notification: %w", err)
	}
	if n == nil {
		return fmt.Errorf("notification %s does not exist", notificationID)
	}
	return wp.deliver(ctx, n)
}

func (wp *WorkerPool) deliver(ctx context.Context, n *model.Notification) error {
	if n.Sent {
		return nil
	}
	sender, ok := wp.senders[n.Type]
	if !ok {
		return wp.failed(ctx, n, fmt.Errorf("%w %q", ErrNoSender, n.Type))
	}
	if err := sender.Send(ctx, n); err != nil {
		return wp.failed(ctx, n, err)
	}
	at := wp.now()
	if _, err := wp.notifications.MarkSent(ctx, n.ID, at); err != nil {
		return fmt.Errorf("failed to mark notification %s as sent: %w", n.ID, err)
	}
	n.MarkAsSent(at)
	return nil
}

// failed counts the attempt so the sweeper moves the row behind fresher work.
func (wp *WorkerPool) failed(ctx context.Context, n *model.Notification, cause error) error {
	if err := wp.notifications.RecordFailure(ctx, n.ID); err != nil {
		log.Printf("Failed to record delivery attempt for notification %s: %v", n.ID, err)
	} else {
		n.Attempts++
	}
	return cause
}
