package settings

import (
	"context"
	"sync"
	"time"

	"github.com/adegadigital/adega-backend/pkg/db/models"
)

type loader interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
}

// Cache is an explicit, injected fetch-through cache for the settings row.
// A zero TTL disables caching entirely.
type Cache struct {
	mu       sync.Mutex
	loader   loader
	ttl      time.Duration
	now      func() time.Time
	value    *models.StoreSettings
	loadedAt time.Time
}

// NewCache wraps the loader with the given TTL.
func NewCache(l loader, ttl time.Duration) *Cache {
	return &Cache{loader: l, ttl: ttl, now: time.Now}
}

// Get returns the cached row, fetching through when stale or empty.
func (c *Cache) Get(ctx context.Context) (*models.StoreSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != nil && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl {
		return c.value, nil
	}
	return c.refreshLocked(ctx)
}

// Invalidate drops the cached row; the next Get fetches fresh.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
}

// Refresh forces a fetch regardless of TTL.
func (c *Cache) Refresh(ctx context.Context) (*models.StoreSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) (*models.StoreSettings, error) {
	row, err := c.loader.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.value = row
	c.loadedAt = c.now()
	return row, nil
}
