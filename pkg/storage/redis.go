package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisBackend stores slots as plain string keys under a prefix
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to url, which may be a redis:// URL or a bare host:port
func OpenRedis(ctx context.Context, url, prefix string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse Redis URL, using direct Addr")
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisBackend(rdb, prefix), nil
}

// NewRedisBackend wraps an existing client
func NewRedisBackend(rdb *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) key(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + ":" + key
}

// Get reads key
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set writes key without expiry
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return b.rdb.Set(ctx, b.key(key), value, 0).Err()
}

// Delete removes key
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, b.key(key)).Err()
}

// Close closes the client
func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
