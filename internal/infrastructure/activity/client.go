package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haltestellenmonitor/internal/config"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"go.uber.org/zap"
)

const defaultTimeout = 20 * time.Second

type client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	logger     *zap.Logger
}

// NewNotifier создает клиент бэкенда обновлений live activity
func NewNotifier(cfg *config.ActivityConfig, timeout time.Duration, logger *zap.Logger) repository.ActivityNotifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

// Deliver отправляет токен и данные отправления. Любой ответ кроме 2xx - ошибка.
func (c *client) Deliver(ctx context.Context, req domain.ActivityRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal activity request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Activity delivery failed", zap.String("stop_id", req.StopGID), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Activity backend returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("stop_id", req.StopGID))
		return fmt.Errorf("%w: status %d", domain.ErrDeliveryFailed, resp.StatusCode)
	}

	c.logger.Debug("Activity token delivered",
		zap.String("stop_id", req.StopGID),
		zap.String("line", req.LineRef))
	return nil
}
