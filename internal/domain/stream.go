package domain

import "time"

// Stream names
const (
	// StreamBoardUpdates - снимки табло от воркера виджета
	StreamBoardUpdates = "stream:board:updates"
	// StreamActivityTokensPrefix + activity id - обновления push-токенов от платформы
	StreamActivityTokensPrefix = "stream:activity:tokens:"
)

// BoardSnapshot - отсортированное табло на момент опроса
type BoardSnapshot struct {
	Stop      Stop        `json:"stop"`
	Events    []StopEvent `json:"events"`
	FetchedAt time.Time   `json:"fetched_at"`
	Dropped   int         `json:"dropped"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
