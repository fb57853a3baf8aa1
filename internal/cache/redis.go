package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/settleup/internal/models"
)

// RedisConfig is the redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache implements the Cache interface for redis
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to redis and verifies the connection with a PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisCache{rdb: rdb, ttl: cfg.TTL}, nil
}

// Generation reads the group's counter. A missing key is generation zero.
func (r *RedisCache) Generation(ctx context.Context, groupID string) (uint64, error) {
	gen, err := r.rdb.Get(ctx, genKey(groupID)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to read generation: %w", err)
	}
	return gen, nil
}

func (r *RedisCache) GetTransfers(ctx context.Context, groupID string, gen uint64) ([]models.SimplifiedTransfer, bool, error) {
	val, err := r.rdb.Get(ctx, makeKey(groupID, gen)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}

	var transfers []models.SimplifiedTransfer
	if err := json.Unmarshal([]byte(val), &transfers); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached transfers: %w", err)
	}
	return transfers, true, nil
}

func (r *RedisCache) SetTransfers(ctx context.Context, groupID string, gen uint64, transfers []models.SimplifiedTransfer) error {
	b, err := json.Marshal(transfers)
	if err != nil {
		return fmt.Errorf("failed to encode transfers: %w", err)
	}
	return r.rdb.Set(ctx, makeKey(groupID, gen), b, r.ttl).Err()
}

// InvalidateGroup bumps the shared counter with INCR, so every instance
// using this server stops reading the previous generation. The old plan is
// deleted right away instead of waiting for its TTL.
func (r *RedisCache) InvalidateGroup(ctx context.Context, groupID string) error {
	gen, err := r.rdb.Incr(ctx, genKey(groupID)).Uint64()
	if err != nil {
		return fmt.Errorf("failed to advance generation: %w", err)
	}
	if err := r.rdb.Del(ctx, makeKey(groupID, gen-1)).Err(); err != nil {
		return fmt.Errorf("failed to delete stale plan: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
