package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
)

// DefaultBoardCacheSize - сколько остановок держать в памяти
const DefaultBoardCacheSize = 256

type boardCache struct {
	cache gcache.Cache
}

// NewBoardCache - LRU кеш снимков табло с TTL на запись
func NewBoardCache(size int) repository.BoardCache {
	if size <= 0 {
		size = DefaultBoardCacheSize
	}
	return &boardCache{
		cache: gcache.New(size).LRU().Build(),
	}
}

func (c *boardCache) GetBoard(_ context.Context, stopGID string) (*domain.BoardSnapshot, error) {
	v, err := c.cache.Get(stopGID)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("board cache get error: %w", err)
	}
	snapshot, ok := v.(domain.BoardSnapshot)
	if !ok {
		return nil, fmt.Errorf("board cache: unexpected value %T", v)
	}
	return &snapshot, nil
}

// SetBoard хранит копию: вызывающий может менять свой снимок дальше
func (c *boardCache) SetBoard(_ context.Context, snapshot *domain.BoardSnapshot, ttl time.Duration) error {
	stored := *snapshot
	stored.Events = append([]domain.StopEvent(nil), snapshot.Events...)

	if ttl > 0 {
		return c.cache.SetWithExpire(snapshot.Stop.GID, stored, ttl)
	}
	return c.cache.Set(snapshot.Stop.GID, stored)
}
