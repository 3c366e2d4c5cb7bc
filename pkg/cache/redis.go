package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/stokku/inventory-service/config"
)

// releaseScript deletes a lock key only when the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisClient struct {
	rdb *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}

	return &RedisClient{rdb: rdb}, nil
}

// GetJSON unmarshals the value stored at key into dest. The boolean reports
// whether the key existed.
func (c *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Wrap(err, "unmarshal cached value")
	}
	return true, nil
}

func (c *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "marshal cached value")
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// AcquireLock takes a best-effort lease used to single-flight scheduled work
// across instances. The token identifies the holder for release.
func (c *RedisClient) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, token, ttl).Result()
}

// ReleaseLock releases the lease only if the token still matches, so an
// expired lease taken over by another instance is never deleted.
func (c *RedisClient) ReleaseLock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, c.rdb, []string{key}, token).Err()
}

func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
