package forecastcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/surf-report/internal/domain/forecast"
)

type cachedDay struct {
	day       forecast.DayForecast
	expiresAt time.Time
}

// MemoryCache is an in-process forecast cache for tests/dev.
type MemoryCache struct {
	mu   sync.RWMutex
	days map[string]cachedDay
	now  func() time.Time
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		days: make(map[string]cachedDay),
		now:  time.Now,
	}
}

// Get implements forecast.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (forecast.DayForecast, bool, error) {
	c.mu.RLock()
	entry, ok := c.days[key]
	c.mu.RUnlock()
	if !ok {
		return forecast.DayForecast{}, false, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.days, key)
		c.mu.Unlock()
		return forecast.DayForecast{}, false, nil
	}
	return entry.day, true, nil
}

// Set stores the day with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, day forecast.DayForecast, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.days[key] = cachedDay{day: day, expiresAt: exp}
	c.mu.Unlock()
	return nil
}

var _ forecast.Cache = (*MemoryCache)(nil)
