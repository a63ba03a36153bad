package efa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/haltestellenmonitor/internal/config"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"go.uber.org/zap"
)

// ответы EFA бывают большими, но не больше нескольких мегабайт
const maxResponseSize = 8 << 20

type client struct {
	httpClient   *http.Client
	departureURL string
	tripURL      string
	dmURL        string
	requestorRef string
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewTransitClient создает клиент EFA/TRIAS бэкенда
func NewTransitClient(cfg *config.TransitConfig, logger *zap.Logger) (repository.TransitRepository, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		departureURL: cfg.DepartureURL,
		tripURL:      cfg.TripURL,
		dmURL:        cfg.DepartureMonitorURL,
		requestorRef: cfg.RequestorRef,
		location:     loc,
		now:          time.Now,
		logger:       logger,
	}, nil
}

// FetchDepartures запрашивает табло через TRIAS
func (c *client) FetchDepartures(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error) {
	body, err := BuildDepartureRequest(q, c.requestorRef, c.now())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Requesting departures",
		zap.String("stop_id", q.StopGID),
		zap.Int("limit", q.Limit))

	raw, err := c.post(ctx, c.departureURL, "application/xml", "application/xml", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	result, err := DecodeDepartures(raw)
	if err != nil {
		c.logger.Error("Failed to decode departures", zap.String("stop_id", q.StopGID), zap.Error(err))
		return nil, err
	}
	if result.Dropped > 0 {
		c.logger.Warn("Dropped malformed stop events",
			zap.String("stop_id", q.StopGID),
			zap.Int("dropped", result.Dropped),
			zap.Int("kept", len(result.Events)))
	}

	return result, nil
}

// FetchDepartureMonitor запрашивает табло в rapidJSON
func (c *client) FetchDepartureMonitor(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error) {
	form, err := BuildDepartureMonitorRequest(q, c.location, c.now())
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, c.dmURL, "application/x-www-form-urlencoded", "application/json", strings.NewReader(form))
	if err != nil {
		return nil, err
	}

	result, err := DecodeDepartureMonitor(raw)
	if err != nil {
		c.logger.Error("Failed to decode departure monitor", zap.String("stop_id", q.StopGID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// FetchTripStopTimes запрашивает остановки рейса
func (c *client) FetchTripStopTimes(ctx context.Context, q domain.TripQuery) ([]domain.StopSequenceItem, error) {
	form, err := BuildTripStopTimesRequest(q, c.location)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Requesting trip stop times",
		zap.String("stop_id", q.StopGID),
		zap.String("line", q.LineID),
		zap.Int("trip_code", q.TripCode))

	raw, err := c.post(ctx, c.tripURL, "application/x-www-form-urlencoded", "application/json", strings.NewReader(form))
	if err != nil {
		return nil, err
	}

	items, err := DecodeStopSequence(raw)
	if err != nil {
		c.logger.Error("Failed to decode stop sequence", zap.String("line", q.LineID), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (c *client) post(ctx context.Context, url, contentType, accept string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Failed to execute request", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Transit API returned error",
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncate(string(raw), 512)))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
