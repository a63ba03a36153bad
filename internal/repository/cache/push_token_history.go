package cache

import (
	"context"
	"fmt"

	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PushTokenHistoryKey - множество отправленных токенов
const PushTokenHistoryKey = "activity:push_token_history"

type pushTokenHistory struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewPushTokenHistory - история токенов на Redis SET. SADD атомарен,
// поэтому два одновременных TestAndSet одного токена не вернут true оба.
func NewPushTokenHistory(redis *Redis) repository.PushTokenHistory {
	return &pushTokenHistory{
		client: redis.Client(),
		key:    PushTokenHistoryKey,
		logger: redis.logger,
	}
}

func (h *pushTokenHistory) TestAndSet(ctx context.Context, token string) (bool, error) {
	added, err := h.client.SAdd(ctx, h.key, token).Result()
	if err != nil {
		h.logger.Error("Failed to add push token", zap.Error(err))
		return false, fmt.Errorf("push token history error: %w", err)
	}
	return added == 1, nil
}

func (h *pushTokenHistory) Contains(ctx context.Context, token string) (bool, error) {
	ok, err := h.client.SIsMember(ctx, h.key, token).Result()
	if err != nil {
		return false, fmt.Errorf("push token history error: %w", err)
	}
	return ok, nil
}
