package lockRepo

import (
	"context"
	"sync"
	"time"
)

// MemorySlotLocker is a process-local SlotLocker.
type MemorySlotLocker struct {
	mu    sync.Mutex
	held  map[string]uint64
	until map[string]time.Time
	seq   uint64
	Now   func() time.Time
}

func NewMemorySlotLocker() *MemorySlotLocker {
	return &MemorySlotLocker{
		held:  make(map[string]uint64),
		until: make(map[string]time.Time),
		Now:   time.Now,
	}
}

func (l *MemorySlotLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	if _, ok := l.held[key]; ok && now.Before(l.until[key]) {
		return nil, ErrLocked
	}
	l.seq++
	token := l.seq
	l.held[key] = token
	l.until[key] = now.Add(ttl)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// An expired hold may have been taken over; leave the new owner alone.
		if l.held[key] == token {
			delete(l.held, key)
			delete(l.until, key)
		}
	}, nil
}
