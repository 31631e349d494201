package input

import (
	"sync"
	"time"
)

// RateLimiter bounds how many control frames a single sender may submit per
// sliding window, so a misbehaving client cannot flood the intent pipeline.
type RateLimiter struct {
	window time.Duration
	limit  int
	now    Clock

	mu     sync.Mutex
	events map[string][]time.Time
}

// NewRateLimiter allows up to limit frames per window per sender. Zero limit
// or window disables the check.
func NewRateLimiter(window time.Duration, limit int, now Clock) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{window: window, limit: limit, now: now, events: make(map[string][]time.Time)}
}

// Allow reports whether the sender may submit another frame.
func (l *RateLimiter) Allow(sender string) bool {
	if l == nil || l.limit <= 0 || l.window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	//1.- Expire events older than the window before counting.
	kept := l.events[sender][:0]
	for _, ts := range l.events[sender] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.limit {
		l.events[sender] = kept
		return false
	}
	l.events[sender] = append(kept, now)
	return true
}

// Forget releases the tracked history for a sender.
func (l *RateLimiter) Forget(sender string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.events, sender)
	l.mu.Unlock()
}
