package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"pingplatform/internal/models"
)

const (
	feedCapacity = 20
	// feedTTL is how long undrained toasts are kept for a device.
	feedTTL = 10 * time.Minute
)

// Feed holds the transient toasts per device until the page drains them.
// Only the newest feedCapacity entries are kept, and queues idle for
// longer than feedTTL are dropped on a later Push.
type Feed struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	queue     map[string][]models.Notification
	lastSweep time.Time
}

func NewFeed(c clockwork.Clock) *Feed {
	return &Feed{clock: c, queue: map[string][]models.Notification{}, lastSweep: c.Now()}
}

func (f *Feed) Push(deviceID string, level models.NotificationLevel, title, message string) models.Notification {
	now := f.clock.Now()
	n := models.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if now.Sub(f.lastSweep) >= feedTTL/10 {
		f.sweep(now)
		f.lastSweep = now
	}
	q := append(f.queue[deviceID], n)
	if len(q) > feedCapacity {
		q = q[len(q)-feedCapacity:]
	}
	f.queue[deviceID] = q
	return n
}

// Drain returns and clears the pending toasts, oldest first. Toasts
// older than feedTTL are discarded.
func (f *Feed) Drain(deviceID string) []models.Notification {
	now := f.clock.Now()
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queue[deviceID]
	delete(f.queue, deviceID)
	out := make([]models.Notification, 0, len(q))
	for _, n := range q {
		if now.Sub(n.CreatedAt) <= feedTTL {
			out = append(out, n)
		}
	}
	return out
}

// sweep drops every queue whose newest toast has expired. Callers hold mu.
func (f *Feed) sweep(now time.Time) {
	for dev, q := range f.queue {
		if len(q) == 0 || now.Sub(q[len(q)-1].CreatedAt) > feedTTL {
			delete(f.queue, dev)
		}
	}
}
