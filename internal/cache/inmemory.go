package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/settleup/internal/models"
)

type entry struct {
	transfers []models.SimplifiedTransfer
	expires   time.Time
}

// InMemoryCache implements the Cache interface for an in memory cache.
// Generations are only shared with ledgers in the same process.
type InMemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	gens    map[string]uint64
	now     func() time.Time
}

// NewInMemoryCache creates an instance of InMemoryCache.
// A non-positive ttl keeps entries until they are invalidated.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

func (c *InMemoryCache) Generation(_ context.Context, groupID string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[groupID], nil
}

func (c *InMemoryCache) GetTransfers(_ context.Context, groupID string, gen uint64) ([]models.SimplifiedTransfer, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := makeKey(groupID, gen)
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]models.SimplifiedTransfer(nil), e.transfers...), true, nil
}

func (c *InMemoryCache) SetTransfers(_ context.Context, groupID string, gen uint64, transfers []models.SimplifiedTransfer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Nobody reads an old generation again.
	if gen < c.gens[groupID] {
		return nil
	}

	e := entry{transfers: append([]models.SimplifiedTransfer(nil), transfers...)}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[makeKey(groupID, gen)] = e
	return nil
}

func (c *InMemoryCache) InvalidateGroup(_ context.Context, groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, makeKey(groupID, c.gens[groupID]))
	c.gens[groupID]++
	return nil
}
