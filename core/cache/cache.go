package cache

import (
	"context"
	"fmt"
	"time"

	"quietblock-api/core/config"
	"quietblock-api/core/constants"
	"quietblock-api/core/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Cache interface {
	BlacklistToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)

	// AcquireOwnerLock serializes create/update requests per owner so two
	// concurrent requests cannot both pass the overlap check against a
	// stale read. Returns false when another request holds the lock.
	AcquireOwnerLock(ctx context.Context, ownerID uuid.UUID) (bool, error)
	ReleaseOwnerLock(ctx context.Context, ownerID uuid.UUID) error

	Close() error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache initialized", "addr", cfg.Addr, "db", cfg.DB)
	return &redisCache{client: client}, nil
}

func (c *redisCache) BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := constants.RedisKeyTokenBlacklist + token
	return c.client.Set(ctx, key, "1", ttl).Err()
}

func (c *redisCache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	key := constants.RedisKeyTokenBlacklist + token
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisCache) AcquireOwnerLock(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	key := constants.RedisKeyOwnerLock + ownerID.String()
	return c.client.SetNX(ctx, key, "1", constants.OwnerLockTTL).Result()
}

func (c *redisCache) ReleaseOwnerLock(ctx context.Context, ownerID uuid.UUID) error {
	key := constants.RedisKeyOwnerLock + ownerID.String()
	return c.client.Del(ctx, key).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
