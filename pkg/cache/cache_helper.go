package cache

import (
	"context"
	"errors"
	"log"
	"time"
)

type CacheHelper[T any] struct {
	Cache      *Cache
	Expiration time.Duration
}

func NewCacheHelper[T any](cache *Cache, expiration time.Duration) *CacheHelper[T] {
	return &CacheHelper[T]{Cache: cache, Expiration: expiration}
}

// Handle returns the cached value for key or calls fn and caches its result.
// A nil helper or cache always calls fn. Errors from fn are never cached and
// redis failures only get logged.
func (c *CacheHelper[T]) Handle(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if c == nil || c.Cache == nil {
		return fn(ctx)
	}
	var out T
	err := c.Cache.Get(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, ErrMiss) {
		log.Printf("cache get %s failed: %v", key, err)
	}
	out, err = fn(ctx)
	if err != nil {
		return out, err
	}
	if err := c.Cache.Set(ctx, key, out, c.Expiration); err != nil {
		log.Printf("cache set %s failed: %v", key, err)
	}
	return out, nil
}
