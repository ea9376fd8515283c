package ratelimit

import (
	"sync"
	"time"
)

// FixedWindowLimiter allows up to limit calls per key per window.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewFixedWindowLimiter creates a limiter.
func NewFixedWindowLimiter(limit int, win time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  win,
		now:     time.Now,
	}
}

// Allow records a call for key. When the limit is reached it returns
// false and the time left until the window resets.
func (l *FixedWindowLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || !now.Before(w.resetAt) {
		l.clients[key] = &window{count: 1, resetAt: now.Add(l.window)}
		l.sweep(now)
		return true, 0
	}
	if w.count < l.limit {
		w.count++
		return true, 0
	}
	return false, w.resetAt.Sub(now)
}

// sweep drops expired windows; called with mu held.
func (l *FixedWindowLimiter) sweep(now time.Time) {
	if len(l.clients) < 1024 {
		return
	}
	for k, w := range l.clients {
		if !now.Before(w.resetAt) {
			delete(l.clients, k)
		}
	}
}
