package booking

import (
	"context"
	"sync"

	"space-reservation-backend/internal/calendar"
)

type slotKey struct {
	spaceID int64
	date    calendar.Date
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// keyLock serializes bookings per (space, day) inside one process. Entries
// are dropped once nobody holds or waits for them.
type keyLock struct {
	mu      sync.Mutex
	entries map[slotKey]*keyedEntry
}

func newKeyLock() *keyLock {
	return &keyLock{entries: make(map[slotKey]*keyedEntry)}
}

// Lock blocks until the key is free or ctx is done. On success the returned
// func releases the key.
func (l *keyLock) Lock(ctx context.Context, spaceID int64, date calendar.Date) (func(), error) {
	key := slotKey{spaceID: spaceID, date: date}

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			l.release(key, e)
		}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

func (l *keyLock) release(key slotKey, e *keyedEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *keyLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
