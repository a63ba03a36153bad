package repository

import (
	"context"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
)

// BoardCache хранит последние снимки табло
type BoardCache interface {
	// GetBoard возвращает nil без ошибки при промахе
	GetBoard(ctx context.Context, stopGID string) (*domain.BoardSnapshot, error)

	// SetBoard сохраняет снимок с TTL
	SetBoard(ctx context.Context, snapshot *domain.BoardSnapshot, ttl time.Duration) error
}
