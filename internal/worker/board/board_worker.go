package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/haltestellenmonitor/internal/usecase"
	"github.com/haltestellenmonitor/internal/worker"
	"go.uber.org/zap"
)

const (
	workerName     = "board-snapshot-worker"
	publishTimeout = 5 * time.Second
)

// StopSelector выбирает остановку для виджета
type StopSelector interface {
	DefaultStop(ctx context.Context, from *domain.Point) (domain.Stop, error)
}

// SnapshotWorker опрашивает табло остановки по умолчанию без участия
// пользователя, кладёт снимок в кэш и публикует его в стрим.
type SnapshotWorker struct {
	*worker.BaseWorker
	transit  repository.TransitRepository
	stops    StopSelector
	cache    repository.BoardCache
	streams  repository.StreamRepository
	opts     usecase.PollOptions
	origin   domain.Point
	pageSize int
	ttl      time.Duration
	now      func() time.Time
}

func NewSnapshotWorker(
	transit repository.TransitRepository,
	stops StopSelector,
	cache repository.BoardCache,
	streams repository.StreamRepository,
	opts usecase.PollOptions,
	origin domain.Point,
	pageSize int,
	ttl time.Duration,
	logger *zap.Logger,
) *SnapshotWorker {
	return &SnapshotWorker{
		BaseWorker: worker.NewBaseWorker(workerName, logger),
		transit:    transit,
		stops:      stops,
		cache:      cache,
		streams:    streams,
		opts:       opts,
		origin:     origin,
		pageSize:   pageSize,
		ttl:        ttl,
		now:        time.Now,
	}
}

// widgetBoard - ответ одного цикла вместе с остановкой, для которой он получен
type widgetBoard struct {
	stop   domain.Stop
	result *domain.DepartureResult
}

// Start опрашивает табло до Stop или отмены ctx. Остановка выбирается
// заново в каждом цикле: избранное может поменяться между запросами.
func (w *SnapshotWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-w.StopChan():
			cancel()
		case <-ctx.Done():
		}
	}()

	stop, err := w.stops.DefaultStop(ctx, &w.origin)
	if err != nil {
		return fmt.Errorf("failed to select stop: %w", err)
	}

	w.Logger().Info("Polling board",
		zap.String("stop_id", stop.GID),
		zap.String("stop_name", stop.Name),
		zap.Int("page_size", w.pageSize))

	// брошенный по отмене запрос может пересечься со следующим
	var mu sync.Mutex
	current := stop
	scheduler := usecase.NewPollScheduler("widget",
		func(ctx context.Context) (widgetBoard, error) {
			mu.Lock()
			previous := current
			mu.Unlock()

			selected := w.selectStop(ctx, previous)

			mu.Lock()
			current = selected
			mu.Unlock()

			result, err := w.transit.FetchDepartures(ctx, domain.DepartureQuery{StopGID: selected.GID, Limit: w.pageSize})
			if err != nil {
				return widgetBoard{}, err
			}
			return widgetBoard{stop: selected, result: result}, nil
		},
		func(b widgetBoard) {
			w.publish(ctx, b.stop, b.result)
		},
		nil, w.opts, w.Logger())

	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	scheduler.Stop()
	w.Logger().Info("Board polling stopped")
	return nil
}

// selectStop возвращает остановку для очередного цикла; при ошибке
// выбора остаётся прежняя.
func (w *SnapshotWorker) selectStop(ctx context.Context, previous domain.Stop) domain.Stop {
	stop, err := w.stops.DefaultStop(ctx, &w.origin)
	if err != nil {
		w.Logger().Warn("Failed to reselect stop, keeping previous",
			zap.String("stop_id", previous.GID),
			zap.Error(err))
		return previous
	}
	if stop.GID != previous.GID {
		w.Logger().Info("Widget stop changed",
			zap.String("from", previous.GID),
			zap.String("to", stop.GID),
			zap.String("stop_name", stop.Name))
	}
	return stop
}

func (w *SnapshotWorker) publish(ctx context.Context, stop domain.Stop, result *domain.DepartureResult) {
	events := append([]domain.StopEvent(nil), result.Events...)
	domain.SortByEffectiveTime(events)

	snapshot := &domain.BoardSnapshot{
		Stop:      stop,
		Events:    events,
		FetchedAt: w.now(),
		Dropped:   result.Dropped,
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := w.cache.SetBoard(ctx, snapshot, w.ttl); err != nil {
		w.Logger().Error("Failed to cache board snapshot",
			zap.String("stop_id", stop.GID),
			zap.Error(err))
	}
	if err := w.streams.PublishToStream(ctx, domain.StreamBoardUpdates, snapshot); err != nil {
		w.Logger().Error("Failed to publish board snapshot",
			zap.String("stop_id", stop.GID),
			zap.Error(err))
		return
	}

	w.Logger().Debug("Board snapshot published",
		zap.String("stop_id", stop.GID),
		zap.Int("events", len(events)),
		zap.Int("dropped", result.Dropped))
}
