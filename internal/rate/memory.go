// Package rate is a fixed-window request limiter keyed by route and client.
package rate

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type window struct {
	count int
	start time.Time
}

type Limiter struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	windows map[string]window
	lastGC  time.Time
}

func NewLimiter(c clockwork.Clock) *Limiter {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Limiter{clock: c, windows: map[string]window{}, lastGC: c.Now()}
}

// Allow counts one hit for key and reports whether it fits in limit per
// period.
func (l *Limiter) Allow(key string, limit int, period time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	if now.Sub(l.lastGC) > time.Minute {
		for k, w := range l.windows {
			if now.Sub(w.start) > 3*period {
				delete(l.windows, k)
			}
		}
		l.lastGC = now
	}
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= period {
		l.windows[key] = window{count: 1, start: now}
		return true
	}
	if w.count >= limit {
		return false
	}
	w.count++
	l.windows[key] = w
	return true
}
