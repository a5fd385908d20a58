package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"teamcal/config"
	"teamcal/utils"
)

// LoginRateLimiter throttles login attempts per client IP. Counters live in
// Redis when it is enabled so every instance shares them.
func LoginRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.AppConfig.RateLimitLogin,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.GenerateRateLimitKey("login", c.IP(), c.Path())
		},
		LimitReached: func(c *fiber.Ctx) error {
			utils.LogEvent("rate_limit_hit", map[string]interface{}{
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get("User-Agent"),
			})
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many login attempts. Please wait before trying again.")
		},
		Storage: createRateLimitStorage(),
	})
}

// createRateLimitStorage returns nil, which makes the limiter keep
// counters in memory, unless Redis is enabled.
func createRateLimitStorage() fiber.Storage {
	if !config.AppConfig.Redis.Enabled {
		return nil
	}
	return NewRedisStorage(config.AppConfig.Redis, "teamcal:limiter:")
}

var _ fiber.Storage = (*RedisStorage)(nil)

// RedisStorage is a fiber.Storage over a Redis database. Keys are namespaced
// with prefix so Reset never touches data owned by other clients.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStorage(cfg config.RedisConfig, prefix string) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStorage{rdb: rdb, prefix: prefix}
}

// Get returns nil without error for a missing key, as fiber.Storage requires.
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	raw, err := s.rdb.Get(context.Background(), s.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return raw, nil
}

// Set ignores empty keys and values. A zero exp keeps the key forever.
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.rdb.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.rdb.Del(context.Background(), s.prefix+key).Err()
}

// Reset removes every key under the prefix.
func (s *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}
