package session

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner evicts sessions that have not been touched within the TTL. An
// evicted confirmation later surfaces to the user as an expired session, the
// same way a process restart would; the authorization contract is unchanged.
type Cleaner struct {
	registry *Registry
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(registry *Registry, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		registry: registry,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the eviction loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.registry == nil || c.ttl <= 0 || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped")
			return
		case <-ticker.C:
			if dropped := c.registry.evictBefore(time.Now().Add(-c.ttl)); dropped > 0 {
				c.log.Info("evicted stale flow sessions", slog.Int("count", dropped))
			}
		}
	}
}
