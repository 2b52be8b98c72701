package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astrovaani/auth-service/internal/configs"
)

type RedisCache struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func InitRedis(ctx context.Context, cfg *configs.Config) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("failed to connect to Redis: %v", err)
		return nil, err
	}

	return &RedisCache{client: rdb}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	marshaledValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for Redis: %w", err)
	}
	return r.client.Set(ctx, key, marshaledValue, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("key '%s' not found in Redis", key)
	} else if err != nil {
		return fmt.Errorf("failed to get value from Redis: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Allow counts a hit against key and reports whether it stays within limit
// for the window. The first hit arms the window expiry.
func (r *RedisCache) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= limit, nil
}

func (r *RedisCache) RawClient() *redis.Client {
	return r.client
}
