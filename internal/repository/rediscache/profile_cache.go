package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/config"
	"github.com/elmolle/eggtrack/internal/domain/models"
)

// ProfileCache keeps signed-in user profiles in Redis between requests. It
// is a cache only, never authoritative: misses and Redis failures fall
// through to MongoDB, and entries expire after the configured TTL.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*ProfileCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &ProfileCache{client: client, ttl: cfg.TTL, logger: logger}, nil
}

func profileKey(uid string) string {
	return "users:" + uid
}

// Get returns the cached profile for uid, if any. A nil receiver (cache
// disabled) always misses.
func (c *ProfileCache) Get(ctx context.Context, uid string) (*models.User, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, profileKey(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("profile cache read failed", zap.String("uid", uid), zap.Error(err))
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.logger.Debug("profile cache entry corrupt, dropping", zap.String("uid", uid), zap.Error(err))
		c.Invalidate(ctx, uid)
		return nil, false
	}

	return &user, true
}

// Set stores a profile with the configured TTL. Failures are logged only.
func (c *ProfileCache) Set(ctx context.Context, user models.User) {
	if c == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		c.logger.Debug("profile cache encode failed", zap.String("uid", user.UID), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, profileKey(user.UID), data, c.ttl).Err(); err != nil {
		c.logger.Debug("profile cache write failed", zap.String("uid", user.UID), zap.Error(err))
	}
}

// Invalidate drops the cached profile, used after role changes and deletes.
func (c *ProfileCache) Invalidate(ctx context.Context, uid string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, profileKey(uid)).Err(); err != nil {
		c.logger.Debug("profile cache invalidation failed", zap.String("uid", uid), zap.Error(err))
	}
}

// Close releases the Redis connection.
func (c *ProfileCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
