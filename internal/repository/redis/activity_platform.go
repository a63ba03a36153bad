package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const activityKeyPrefix = "activity:"

// activityPlatform - live activities поверх Redis: активность хранится
// в хеше activity:<id>, а устройство публикует новые push-токены в
// стрим <tokenPrefix><id>.
type activityPlatform struct {
	client      *redis.Client
	streams     repository.StreamRepository
	enabled     bool
	tokenPrefix string
	logger      *zap.Logger
}

// NewActivityPlatform создает платформенный слой live activity
func NewActivityPlatform(
	client *redis.Client,
	streams repository.StreamRepository,
	enabled bool,
	tokenPrefix string,
	logger *zap.Logger,
) repository.ActivityPlatform {
	if tokenPrefix == "" {
		tokenPrefix = domain.StreamActivityTokensPrefix
	}
	return &activityPlatform{
		client:      client,
		streams:     streams,
		enabled:     enabled,
		tokenPrefix: tokenPrefix,
		logger:      logger,
	}
}

func (p *activityPlatform) ActivitiesEnabled() bool {
	return p.enabled
}

// Request регистрирует активность
func (p *activityPlatform) Request(
	ctx context.Context,
	attrs domain.ActivityAttributes,
	content domain.ActivityContent,
) (repository.Activity, error) {
	if !p.enabled {
		return nil, domain.ErrActivitiesDisabled
	}

	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}

	id := uuid.NewString()
	key := activityKeyPrefix + id

	if err := p.client.HSet(ctx, key, map[string]interface{}{
		"attributes": string(attrsJSON),
		"content":    string(contentJSON),
		"tokens":     p.tokenPrefix + id,
	}).Err(); err != nil {
		p.logger.Error("Failed to register activity", zap.Error(err))
		return nil, fmt.Errorf("failed to register activity: %w", err)
	}
	// активность не живёт дольше, чем её содержимое актуально
	if !content.StaleDate.IsZero() {
		if err := p.client.ExpireAt(ctx, key, content.StaleDate).Err(); err != nil {
			p.logger.Warn("Failed to set activity expiry",
				zap.String("activity_id", id),
				zap.Time("stale_date", content.StaleDate),
				zap.Error(err))
		}
	}

	p.logger.Info("Activity requested",
		zap.String("activity_id", id),
		zap.String("line", attrs.PublishedLineName),
		zap.String("stop_id", attrs.StopID))

	return &activity{
		id:       id,
		key:      key,
		stream:   p.tokenPrefix + id,
		platform: p,
		done:     make(chan struct{}),
	}, nil
}

type activity struct {
	id       string
	key      string
	stream   string
	platform *activityPlatform

	endOnce sync.Once
	done    chan struct{}
}

func (a *activity) ID() string {
	return a.id
}

// PushTokenUpdates читает стрим токенов с начала: токен мог прийти
// раньше, чем началась подписка.
func (a *activity) PushTokenUpdates(ctx context.Context) (<-chan []byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	messages, err := a.platform.streams.ConsumeStream(ctx, a.stream, "0")
	if err != nil {
		cancel()
		return nil, err
	}

	tokens := make(chan []byte)
	go func() {
		defer close(tokens)
		defer cancel()

		for {
			select {
			case <-a.done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case tokens <- []byte(msg.Data):
				case <-a.done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return tokens, nil
}

func (a *activity) End(ctx context.Context) error {
	var err error
	a.endOnce.Do(func() {
		close(a.done)
		err = a.platform.client.Del(ctx, a.key, a.stream).Err()
		a.platform.logger.Info("Activity ended", zap.String("activity_id", a.id))
	})
	if err != nil {
		return fmt.Errorf("failed to end activity: %w", err)
	}
	return nil
}
