package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const boardKeyPrefix = "board:"

type boardCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewBoardCache - последние снимки табло в Redis
func NewBoardCache(redis *Redis) repository.BoardCache {
	return &boardCache{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func boardKey(stopGID string) string {
	return boardKeyPrefix + stopGID
}

func (r *boardCache) GetBoard(ctx context.Context, stopGID string) (*domain.BoardSnapshot, error) {
	data, err := r.client.Get(ctx, boardKey(stopGID)).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get board from cache", zap.String("stop_id", stopGID), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	var snapshot domain.BoardSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		r.logger.Error("Failed to unmarshal board from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal board: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("stop_id", stopGID))
	return &snapshot, nil
}

func (r *boardCache) SetBoard(ctx context.Context, snapshot *domain.BoardSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.Error("Failed to marshal board", zap.Error(err))
		return fmt.Errorf("marshal board: %w", err)
	}

	if err := r.client.Set(ctx, boardKey(snapshot.Stop.GID), data, ttl).Err(); err != nil {
		r.logger.Error("Failed to set board cache", zap.String("stop_id", snapshot.Stop.GID), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("stop_id", snapshot.Stop.GID), zap.Duration("ttl", ttl))
	return nil
}
