package forecastcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/surf-report/internal/domain/forecast"
)

// ValkeyCache keeps normalized forecast days in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "forecast"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (forecast.DayForecast, bool, error) {
	if key == "" {
		return forecast.DayForecast{}, false, nil
	}
	result := c.client.Do(ctx, c.client.B().Get().Key(c.entryKey(key)).Build())
	payload, err := result.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return forecast.DayForecast{}, false, nil
		}
		return forecast.DayForecast{}, false, err
	}
	var day forecast.DayForecast
	if err := json.Unmarshal([]byte(payload), &day); err != nil {
		return forecast.DayForecast{}, false, err
	}
	return day, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key string, day forecast.DayForecast, ttl time.Duration) error {
	payload, err := json.Marshal(day)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// Close releases the underlying connection pool.
func (c *ValkeyCache) Close() {
	c.client.Close()
}

func (c *ValkeyCache) entryKey(key string) string {
	return fmt.Sprintf("%s:day:%s", c.prefix, key)
}

var _ forecast.Cache = (*ValkeyCache)(nil)
