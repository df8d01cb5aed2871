package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle limits how often mail can be triggered for one recipient.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
	burst    int
}

func NewThrottle(every time.Duration, burst int) *Throttle {
	return &Throttle{limiters: map[string]*rate.Limiter{}, every: every, burst: burst}
}

// Allow reports whether another send for key is permitted now.
func (t *Throttle) Allow(key string) bool {
	if t == nil {
		return true
	}
	t.mu.Lock()
	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.every), t.burst)
		t.limiters[key] = l
	}
	t.mu.Unlock()
	return l.Allow()
}
