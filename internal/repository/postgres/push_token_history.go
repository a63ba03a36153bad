package postgres

import (
	"context"
	"fmt"

	"github.com/haltestellenmonitor/internal/domain/repository"
	"go.uber.org/zap"
)

type pushTokenHistory struct {
	db *DB
}

// NewPushTokenHistory - история токенов в таблице push_token_history
func NewPushTokenHistory(db *DB) repository.PushTokenHistory {
	return &pushTokenHistory{db: db}
}

// TestAndSet - вставка с ON CONFLICT DO NOTHING, при гонке строку
// получает ровно один из вызовов
func (h *pushTokenHistory) TestAndSet(ctx context.Context, token string) (bool, error) {
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO push_token_history (token) VALUES ($1) ON CONFLICT (token) DO NOTHING`, token)
	if err != nil {
		h.db.logger.Error("Failed to add push token", zap.Error(err))
		return false, fmt.Errorf("push token history error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("push token history error: %w", err)
	}
	return n == 1, nil
}

func (h *pushTokenHistory) Contains(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := h.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM push_token_history WHERE token = $1)`, token)
	if err != nil {
		return false, fmt.Errorf("push token history error: %w", err)
	}
	return exists, nil
}
