package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

const redisOpTimeout = 2 * time.Second

// RedisCacheConfig configures the Redis cache
type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key namespace, defaults to "candles:"
	TTL      time.Duration
}

// RedisCache implements DataCache on Redis strings holding JSON candles.
// Redis failures degrade to cache misses.
type RedisCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache connects to Redis and pings the server
func NewRedisCache(cfg RedisCacheConfig, log *logger.Logger) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisCache(client, cfg, log), nil
}

func newRedisCache(client *goredis.Client, cfg RedisCacheConfig, log *logger.Logger) *RedisCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "candles:"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    cfg.TTL,
		log:    log.With("redis_cache"),
	}
}

// Get retrieves data from cache if available
func (c *RedisCache) Get(key string) ([]types.OHLCV, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	payload, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warning("redis get %s: %v", key, err)
		}
		return nil, false
	}

	var data []types.OHLCV
	if err := json.Unmarshal(payload, &data); err != nil {
		c.log.Warning("redis payload for %s is not valid JSON: %v", key, err)
		return nil, false
	}
	return data, true
}

// Set stores data in cache
func (c *RedisCache) Set(key string, data []types.OHLCV) {
	payload, err := json.Marshal(data)
	if err != nil {
		c.log.Warning("encode candles for %s: %v", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.prefix+key, payload, c.ttl).Err(); err != nil {
		c.log.Warning("redis set %s: %v", key, err)
	}
}

// Clear removes every key under the cache prefix
func (c *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.keys(ctx)
	if err != nil {
		c.log.Warning("redis scan: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warning("redis del: %v", err)
	}
}

// Size returns the number of keys under the cache prefix
func (c *RedisCache) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := c.keys(ctx)
	if err != nil {
		c.log.Warning("redis scan: %v", err)
		return 0
	}
	return len(keys)
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
