package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Sri-Rahul/linkanalysis/internal/cache"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// entry wraps a cached link with its storage time for TTL eviction
type entry struct {
	link     *domain.Link
	storedAt time.Time
}

// Cache implements cache.LinkCache using in-memory storage with TTL eviction
type Cache struct {
	data     map[string]entry
	ttl      time.Duration
	mutex    sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a new in-memory cache. Entries older than ttl are invisible to
// Get and are swept by a background janitor.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		data:     make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get retrieves a cached link by code
func (c *Cache) Get(ctx context.Context, code string) (*domain.Link, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.data[code]
	if !exists || time.Since(e.storedAt) > c.ttl {
		return nil, false
	}

	// Return a copy to prevent external modification
	link := *e.link
	return &link, true
}

// Set stores a link record
func (c *Cache) Set(ctx context.Context, code string, link *domain.Link) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	copied := *link
	c.data[code] = entry{link: &copied, storedAt: time.Now()}
	return nil
}

// Delete removes a cached link
func (c *Cache) Delete(ctx context.Context, code string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, code)
	return nil
}

// Close stops the janitor goroutine
func (c *Cache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	return nil
}

// janitor periodically sweeps expired entries so the map does not grow with
// dead codes
func (c *Cache) janitor() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Cache) sweep() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for code, e := range c.data {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.data, code)
		}
	}
}

// Len returns the number of stored entries, expired or not (for tests)
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Ensure Cache implements the interface
var _ cache.LinkCache = (*Cache)(nil)
