package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryWindow is an in-process sliding window with the same attempt-counting
// semantics as the Redis implementation. Only suitable for single-instance
// deployments and tests; the shared bound does not hold across processes.
type MemoryWindow struct {
	mu      sync.Mutex
	keys    map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

func NewMemoryWindow(limit int, window time.Duration) *MemoryWindow {
	l := &MemoryWindow{
		keys:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go l.gc()
	return l
}

func (l *MemoryWindow) Limit(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	attempts := l.keys[key]
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	l.keys[key] = kept

	resetAt := kept[0].Add(l.window)
	count := len(kept)
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
		Limit:     l.limit,
	}, nil
}

// gc drops keys whose whole window has elapsed so idle clients do not pin memory.
func (l *MemoryWindow) gc() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := l.now().Add(-l.window)
			l.mu.Lock()
			for key, attempts := range l.keys {
				if len(attempts) == 0 || !attempts[len(attempts)-1].After(cutoff) {
					delete(l.keys, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the GC goroutine for graceful shutdown.
func (l *MemoryWindow) Stop() {
	l.stopped.Do(func() { close(l.stop) })
}
