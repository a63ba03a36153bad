package cache

import (
	"context"
	"fmt"

	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const kvKeyPrefix = "kv:"

type kvStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewKeyValueStore - ключ-значение в Redis без TTL (избранное и т.п.)
func NewKeyValueStore(redis *Redis) repository.KeyValueStore {
	return &kvStore{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, kvKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to get value", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("kv get error: %w", err)
	}
	return val, nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, kvKeyPrefix+key, value, 0).Err(); err != nil {
		s.logger.Error("Failed to set value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("kv set error: %w", err)
	}
	return nil
}
