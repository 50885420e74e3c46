package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sri-Rahul/linkanalysis/internal/cache"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// Cache implements cache.LinkCache backed by Redis, for deployments running
// more than one server instance against the same store
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis-backed cache and verifies the connection
func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Fall back to treating the value as a plain host:port
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func cacheKey(code string) string {
	return "link:" + code
}

// Get retrieves a cached link by code
func (c *Cache) Get(ctx context.Context, code string) (*domain.Link, bool) {
	data, err := c.client.Get(ctx, cacheKey(code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[ERROR] Redis get failed for %s: %v", code, err)
		}
		return nil, false
	}

	var link domain.Link
	if err := json.Unmarshal(data, &link); err != nil {
		log.Printf("[ERROR] Failed to decode cached link %s: %v", code, err)
		return nil, false
	}
	return &link, true
}

// Set stores a link record with the configured TTL
func (c *Cache) Set(ctx context.Context, code string, link *domain.Link) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to encode link: %w", err)
	}
	return c.client.Set(ctx, cacheKey(code), data, c.ttl).Err()
}

// Delete removes a cached link
func (c *Cache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, cacheKey(code)).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ensure Cache implements the interface
var _ cache.LinkCache = (*Cache)(nil)
