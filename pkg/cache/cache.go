package cache

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

type LocalEntry struct {
	Expires time.Time
	Data    []byte
}

// Cache is a json cache backed by redis with a short lived in-process copy
// in front of it.
type Cache struct {
	Addr     string
	Password string
	DB       int
	LocalTTL time.Duration
	client   *redis.Client
	mu       sync.RWMutex
	memCache map[string]LocalEntry
}

func NewCache(addr, password string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		Addr:     addr,
		Password: password,
		DB:       db,
		LocalTTL: time.Minute,
		client:   rdb,
		memCache: make(map[string]LocalEntry),
	}
}

func (c *Cache) local(key string) ([]byte, bool) {
	c.mu.RLock()
	local, found := c.memCache[key]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}
	if local.Expires.Before(time.Now()) {
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
		return nil, false
	}
	return local.Data, true
}

func (c *Cache) storeLocal(key string, data []byte, expiration time.Duration) {
	ttl := c.LocalTTL
	if expiration > 0 && expiration < ttl {
		ttl = expiration
	}
	c.mu.Lock()
	c.memCache[key] = LocalEntry{Expires: time.Now().Add(ttl), Data: data}
	c.mu.Unlock()
}

// Get decodes the cached value for key into out, returning ErrMiss when the
// key is unknown.
func (c *Cache) Get(ctx context.Context, key string, out any) error {
	if data, ok := c.local(key); ok {
		return jsoncompat.Unmarshal(data, out)
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	if err = jsoncompat.Unmarshal(data, out); err != nil {
		return err
	}
	c.storeLocal(key, data, c.LocalTTL)
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := jsoncompat.Marshal(value)
	if err != nil {
		return err
	}
	c.storeLocal(key, data, expiration)
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.memCache, key)
	}
	c.mu.Unlock()
	return c.client.Del(ctx, keys...).Err()
}

// DeletePrefix removes every key starting with prefix, locally and in redis,
// and returns the number of redis keys deleted.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	c.mu.Lock()
	for key := range c.memCache {
		if strings.HasPrefix(key, prefix) {
			delete(c.memCache, key)
		}
	}
	c.mu.Unlock()

	var keys []string
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	deleted := 0
	for batch := range slices.Chunk(keys, 100) {
		n, err := c.client.Del(ctx, batch...).Result()
		deleted += int(n)
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
