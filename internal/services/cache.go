package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Koodattu/fyralath-data-tracker/internal/metrics"
)

const (
	defaultCacheSize = 64
	redisKeyPrefix   = "fyralath:response:"
	redisCallTimeout = 2 * time.Second
)

// ResponseCache stores serialized API responses until the next pipeline run
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Purge()
}

// MemoryCache is an in-process LRU response cache
type MemoryCache struct {
	entries *lru.Cache[string, []byte]
}

// NewMemoryCache creates an LRU cache holding up to size responses
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return &MemoryCache{entries: entries}, nil
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	value, ok := c.entries.Get(key)
	recordCacheLookup(ok)
	return value, ok
}

func (c *MemoryCache) Set(key string, value []byte) {
	c.entries.Add(key, value)
}

func (c *MemoryCache) Purge() {
	c.entries.Purge()
}

// RedisCache shares cached responses between several API processes
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redis and verifies the connection.
// ttl bounds how long an entry survives if a purge is missed.
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Response cache: redis get %s failed: %v", key, err)
		}
		recordCacheLookup(false)
		return nil, false
	}
	recordCacheLookup(true)
	return data, true
}

func (c *RedisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		log.Printf("Response cache: redis set %s failed: %v", key, err)
	}
}

func (c *RedisCache) Purge() {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("Response cache: redis scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Response cache: redis purge failed: %v", err)
	}
}

// Close releases the redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func recordCacheLookup(hit bool) {
	if hit {
		metrics.CacheHits.Inc()
	} else {
		metrics.CacheMisses.Inc()
	}
}
