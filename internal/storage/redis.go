package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"resto-pos/internal/domain"
)

// RedisCache keeps short-lived JSON snapshots of menu items so repeat order
// lines do not hit Postgres for every lookup.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) ItemKey(id int) string {
	return "menu:item:" + strconv.Itoa(id)
}

func (c *RedisCache) GetItem(ctx context.Context, key string) (*domain.MenuItem, error) {
	payload, err := c.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item domain.MenuItem
	if err := json.Unmarshal(payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *RedisCache) SetItem(ctx context.Context, key string, item *domain.MenuItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, payload, c.TTL).Err()
}
