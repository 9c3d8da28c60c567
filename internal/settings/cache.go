package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a read-through cache in front of another settings
// store. Keys are namespaced per user: taskdeck:user:{user_id}:settings
type RedisCache struct {
	client *redis.Client
	next   Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a read-through settings cache. A zero ttl
// defaults to one hour.
func NewRedisCache(client *redis.Client, next Store, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) key(userID uuid.UUID) string {
	return fmt.Sprintf("taskdeck:user:%s:settings", userID)
}

// GetSettings returns cached settings when present, falling back to
// the wrapped store and populating the cache on a miss. Cache errors
// are logged, never surfaced; the wrapped store stays authoritative.
func (c *RedisCache) GetSettings(ctx context.Context, userID uuid.UUID) (*Settings, error) {
	payload, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err == nil {
		var s Settings
		if err := json.Unmarshal(payload, &s); err == nil {
			return &s, nil
		}
		c.logger.Warn("discarding corrupt cached settings", "user_id", userID)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("settings cache read failed", "user_id", userID, "error", err)
	}

	s, err := c.next.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, userID, s)
	return s, nil
}

// PutSettings writes through to the wrapped store, then refreshes the
// cache.
func (c *RedisCache) PutSettings(ctx context.Context, userID uuid.UUID, s *Settings) error {
	if err := c.next.PutSettings(ctx, userID, s); err != nil {
		return err
	}
	c.fill(ctx, userID, s)
	return nil
}

func (c *RedisCache) fill(ctx context.Context, userID uuid.UUID, s *Settings) {
	payload, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(userID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("settings cache write failed", "user_id", userID, "error", err)
	}
}
