// Package cache provides the process-local read cache that sits in front of
// the durable session store. It is never the source of truth: entries are
// copies, bounded by a fixed TTL, and every create/update writes through to
// the store before the cache is touched.
package cache

import (
	"sync"
	"time"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/shared/logger"
)

// Entry is a cached copy of a session record tagged with its caching instant.
type Entry struct {
	Record   *model.SessionRecord
	CachedAt int64 // epoch milliseconds
}

// Cache is a time-boxed memoization layer for session reads. One instance is
// constructed per process at startup and shared by the full resolve path and
// the fast-path reader; it is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry

	ttl        time.Duration
	sweepEvery time.Duration
	log        logger.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stop      chan struct{}
	done      chan struct{}

	// now is swappable in tests.
	now func() time.Time
}

// New creates a cache with the given entry TTL and janitor interval. The
// janitor does not run until Start is called.
func New(ttl, sweepEvery time.Duration, log logger.Logger) *Cache {
	return &Cache{
		entries:    make(map[string]Entry),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		log:        log.WithComponent("session-cache"),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Get returns a copy of the cached record and its caching instant. Entries
// older than the cache TTL are treated as absent even if still present; the
// janitor will collect them. The record's own expiry is the caller's concern.
func (c *Cache) Get(sessionID string) (*model.SessionRecord, int64, bool) {
	c.mu.RLock()
	entry, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if !ok {
		return nil, 0, false
	}
	if c.stale(entry) {
		return nil, 0, false
	}
	return entry.Record.Clone(), entry.CachedAt, true
}

// Set stores a copy of the record tagged with the current instant.
func (c *Cache) Set(sessionID string, record *model.SessionRecord) {
	if record == nil {
		return
	}
	entry := Entry{
		Record:   record.Clone(),
		CachedAt: c.now().UnixMilli(),
	}
	c.mu.Lock()
	c.entries[sessionID] = entry
	c.mu.Unlock()
}

// Delete removes an entry. Deleting an absent entry is a no-op.
func (c *Cache) Delete(sessionID string) {
	c.mu.Lock()
	delete(c.entries, sessionID)
	c.mu.Unlock()
}

// Len returns the number of physically present entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SweepOnce removes entries older than the cache TTL and returns how many
// were removed. Exposed so tests can trigger a sweep deterministically.
func (c *Cache) SweepOnce() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, entry := range c.entries {
		if c.stale(entry) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Start launches the background janitor. It runs until Stop is called.
// Calling Start more than once is a no-op.
func (c *Cache) Start() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		c.started = true
		c.mu.Unlock()
		go c.run()
	})
}

// Stop terminates the janitor and waits for it to exit. Idempotent, and safe
// to call even if the janitor was never started.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if started {
		<-c.done
	}
}

func (c *Cache) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := c.SweepOnce(); removed > 0 {
				c.log.Debugf("swept %d stale session cache entries", removed)
			}
		case <-c.stop:
			return
		}
	}
}

// stale reports whether the entry has outlived the cache TTL.
func (c *Cache) stale(entry Entry) bool {
	return c.now().UnixMilli()-entry.CachedAt >= c.ttl.Milliseconds()
}
