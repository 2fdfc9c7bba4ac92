package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix = "cache:"
	viewTTL     = 30 * time.Minute
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ResponseCache stores rendered JSON responses for anonymous reads.
// Key format: cache:<METHOD>:<path>?<query>
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a ResponseCache with the given entry TTL.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get returns the cached body for key, or ErrCacheMiss.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := c.client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return body, nil
}

// Set stores body under key for the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) error {
	return c.client.Set(ctx, cachePrefix+key, body, c.ttl).Err()
}

// InvalidatePrefix deletes every cached entry whose key starts with prefix.
// Uses SCAN so large keyspaces are walked incrementally.
func (c *ResponseCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, cachePrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache invalidate: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// ViewDedup throttles view counting per viewer and post.
// Key format: view:<post_id>:<viewer_hash>
type ViewDedup struct {
	client *redis.Client
}

// NewViewDedup creates a ViewDedup wrapping the given Redis client.
func NewViewDedup(client *redis.Client) *ViewDedup {
	return &ViewDedup{client: client}
}

// IsDuplicate reports whether this viewer was already counted for this post
// within the dedup window.
func (d *ViewDedup) IsDuplicate(ctx context.Context, postID, viewerHash string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(postID, viewerHash)).Result()
	if err != nil {
		return false, fmt.Errorf("view dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this viewer has been counted (expires after viewTTL).
func (d *ViewDedup) Mark(ctx context.Context, postID, viewerHash string) error {
	return d.client.Set(ctx, d.key(postID, viewerHash), "1", viewTTL).Err()
}

func (d *ViewDedup) key(postID, viewerHash string) string {
	return fmt.Sprintf("view:%s:%s", postID, viewerHash)
}
