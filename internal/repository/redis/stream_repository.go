package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// blockTimeout - сколько XREAD ждёт новых сообщений до следующей проверки ctx
const blockTimeout = time.Second

type streamRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStreamRepository создает новый экземпляр StreamRepository
func NewStreamRepository(client *redis.Client, logger *zap.Logger) repository.StreamRepository {
	return &streamRepository{
		client: client,
		logger: logger,
	}
}

// ConsumeStream читает сообщения стрима через XREAD, начиная после lastID.
// Consumer group не нужна: каждый подписчик получает все сообщения.
func (r *streamRepository) ConsumeStream(ctx context.Context, stream, lastID string) (<-chan domain.StreamMessage, error) {
	if lastID == "" {
		lastID = "$"
	}
	msgChan := make(chan domain.StreamMessage, 10)

	go func() {
		defer close(msgChan)

		for {
			if ctx.Err() != nil {
				r.logger.Debug("Stream consumer stopped", zap.String("stream", stream))
				return
			}

			result, err := r.client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{stream, lastID},
				Count:   10,
				Block:   blockTimeout,
			}).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("Failed to read from stream",
					zap.String("stream", stream),
					zap.Error(err))
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, s := range result {
				for _, msg := range s.Messages {
					// "$" нельзя передавать повторно, иначе пропустим сообщения между чтениями
					lastID = msg.ID

					data, ok := msg.Values["data"].(string)
					if !ok {
						r.logger.Warn("Message does not contain 'data' field",
							zap.String("message_id", msg.ID))
						continue
					}

					select {
					case msgChan <- domain.StreamMessage{ID: msg.ID, Data: data}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return msgChan, nil
}

// PublishToStream публикует сообщение в стрим. []byte и string
// передаются как есть, остальное сериализуется в JSON.
func (r *streamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	var payload string
	switch v := data.(type) {
	case string:
		payload = v
	case []byte:
		payload = string(v)
	default:
		jsonData, err := json.Marshal(data)
		if err != nil {
			r.logger.Error("Failed to marshal data",
				zap.String("stream", stream),
				zap.Error(err))
			return fmt.Errorf("failed to marshal data: %w", err)
		}
		payload = string(jsonData)
	}

	result, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": payload,
		},
	}).Result()
	if err != nil {
		r.logger.Error("Failed to publish to stream",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Message published to stream",
		zap.String("stream", stream),
		zap.String("message_id", result))
	return nil
}
