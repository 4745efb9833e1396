package notification

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically delivers notifications still pending, such as those
// dropped from a full queue or left behind by a restart.
type Sweeper struct {
	notifications Repository
	pool          *WorkerPool
	interval      time.Duration
	batchSize     int
}

func NewSweeper(notifications Repository, pool *WorkerPool, interval time.Duration) *Sweeper {
	return &Sweeper{
		notifications: notifications,
		pool:          pool,
		interval:      interval,
		batchSize:     100,
	}
}

// Run processes pending notifications once and then on every interval until
// ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	log.Println("Starting notification sweeper...")
	s.sweep(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification sweeper shutting down.")
			return
		case <-timer.C:
			s.sweep(ctx)
			timer.Reset(s.interval)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sent, err := s.ProcessPending(ctx)
	if err != nil {
		log.Printf("Error processing pending notifications: %v", err)
		return
	}
	if sent > 0 {
		log.Printf("Sweeper delivered %d pending notifications", sent)
	}
}

// ProcessPending delivers one batch of pending notifications and returns how
// many were sent. A failed notification is logged and left pending.
func (s *Sweeper) ProcessPending(ctx context.Context) (int, error) {
	pending, err := s.notifications.FindPending(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := s.pool.deliver(ctx, &pending[i]); err != nil {
			log.Printf("Failed to deliver notification %s: %v", pending[i].ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
