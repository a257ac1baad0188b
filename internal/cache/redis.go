// Package cache holds the redis-backed page cache used by the fan-out
// searcher to avoid re-fetching recently extracted pages.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// PageCache stores extracted page text keyed by URL with a TTL.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg Config) *PageCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	return &PageCache{client: rdb, ttl: ttl}
}

// Ping tests the redis connection.
func (c *PageCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *PageCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func key(url string) string {
	return "page:" + url
}

// Get returns the cached page text for the URL. The second return is false
// on a miss or any redis error; errors never block a fetch.
func (c *PageCache) Get(ctx context.Context, url string) (string, bool) {
	val, err := c.client.Get(ctx, key(url)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores the page text under the URL with the configured TTL.
func (c *PageCache) Set(ctx context.Context, url string, text string) {
	_ = c.client.Set(ctx, key(url), text, c.ttl).Err()
}
