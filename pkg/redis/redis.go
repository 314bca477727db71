package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/odvhub/odvhub-backend/config"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
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

	// Test connection
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

// TokenStore is the redis-backed implementation of the CSRF token store.
// Tokens are single use: Consume deletes on first hit.
type TokenStore struct{}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Issue(ctx context.Context, token string, ttl time.Duration) error {
	key := fmt.Sprintf("csrf:%s", token)
	if err := client.Set(ctx, key, "issued", ttl).Err(); err != nil {
		logger.Error("Failed to store CSRF token", err, nil)
		return err
	}
	return nil
}

func (s *TokenStore) Consume(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("csrf:%s", token)
	deleted, err := client.Del(ctx, key).Result()
	if err != nil {
		logger.Error("Failed to consume CSRF token", err, nil)
		return false, err
	}
	return deleted > 0, nil
}
