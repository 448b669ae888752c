package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zywang/bookmart-backend/config"
	"github.com/zywang/bookmart-backend/pkg/logger"
)

// ErrCacheMiss is returned when a cache key does not exist.
var ErrCacheMiss = redis.Nil

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// SetJSON marshals value and stores it under key with the given TTL.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return fmt.Errorf("redis not initialized")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Error("Failed to write cache entry", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

// GetJSON loads key and unmarshals it into dest. Returns ErrCacheMiss
// when the key does not exist.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return fmt.Errorf("redis not initialized")
	}

	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
