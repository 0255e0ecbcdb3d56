package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// RedisStore keeps values in Redis so several storefront processes can share state.
// Keys are stored without expiry under the configured prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
	watchers
}

// NewRedisStore connects to Redis and pings it
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", cfg.Addr, err)
	}
	logger.Info("Connected to Redis storage", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return NewRedisStoreWithClient(client, cfg.KeyPrefix, logger), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, &errors.ErrNotFound{Resource: "storage key", ID: key}
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.logger.Error("Failed to write storage key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis store: set %s: %w", key, err)
	}
	r.notify(key, value)
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis store: delete %s: %w", key, err)
	}
	r.notify(key, nil)
	return nil
}

func (r *RedisStore) Subscribe(key string, fn func(value []byte)) func() {
	return r.subscribe(key, fn)
}

// Close releases the Redis connection pool
func (r *RedisStore) Close() error {
	return r.client.Close()
}
