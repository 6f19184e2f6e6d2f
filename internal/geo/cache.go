package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache remembers the last fix per device. When a fresh lookup has no
// position, a cached one younger than Options.MaximumAge is used. Fixes
// past that age are swept on a later write.
type Cache struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	entries   map[string]Position
	lastSweep time.Time
}

func NewCache(c clockwork.Clock) *Cache {
	return &Cache{clock: c, entries: map[string]Position{}, lastSweep: c.Now()}
}

func (c *Cache) Locator(deviceID string, fresh Locator) Locator {
	return LocatorFunc(func(ctx context.Context, opts Options) (Position, error) {
		p, err := fresh.GetCurrentPosition(ctx, opts)
		if err == nil {
			c.put(deviceID, p, opts.MaximumAge)
			return p, nil
		}
		if !errors.Is(err, ErrPositionUnavailable) {
			return Position{}, err
		}
		if cached, ok := c.get(deviceID, opts); ok {
			return cached, nil
		}
		return Position{}, err
	})
}

func (c *Cache) put(deviceID string, p Position, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	now := c.clock.Now()
	if p.Timestamp.IsZero() {
		p.Timestamp = now
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Sub(c.lastSweep) >= maxAge {
		for dev, e := range c.entries {
			if now.Sub(e.Timestamp) > maxAge {
				delete(c.entries, dev)
			}
		}
		c.lastSweep = now
	}
	c.entries[deviceID] = p
}

func (c *Cache) get(deviceID string, opts Options) (Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[deviceID]
	if !ok {
		return Position{}, false
	}
	if opts.MaximumAge <= 0 || c.clock.Now().Sub(p.Timestamp) > opts.MaximumAge {
		delete(c.entries, deviceID)
		return Position{}, false
	}
	return p, true
}
