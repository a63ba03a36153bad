package repository

import (
	"context"

	"github.com/haltestellenmonitor/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// ConsumeStream читает новые сообщения стрима, начиная с lastID
	// ("$" - только новые). Канал закрывается при отмене ctx.
	ConsumeStream(ctx context.Context, stream, lastID string) (<-chan domain.StreamMessage, error)

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
