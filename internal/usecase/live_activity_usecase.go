package usecase

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"go.uber.org/zap"
)

// ActivityView - состояние сессии live activity для API
type ActivityView struct {
	ID        string           `json:"id"`
	Stop      domain.Stop      `json:"stop"`
	Event     domain.StopEvent `json:"event"`
	StartedAt time.Time        `json:"started_at"`
	Delivered int              `json:"delivered"`
	Skipped   int              `json:"skipped"`
	Alert     bool             `json:"alert"`
}

// ActivitySession - одна запущенная live activity и горутина, которая
// пересылает её push-токены бэкенду
type ActivitySession struct {
	activity  repository.Activity
	stop      domain.Stop
	event     domain.StopEvent
	startedAt time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	alert     atomic.Bool
	delivered atomic.Int32
	skipped   atomic.Int32
}

func (s *ActivitySession) ID() string {
	return s.activity.ID()
}

// Alert - последняя доставка не удалась
func (s *ActivitySession) Alert() bool {
	return s.alert.Load()
}

func (s *ActivitySession) View() ActivityView {
	return ActivityView{
		ID:        s.ID(),
		Stop:      s.stop,
		Event:     s.event,
		StartedAt: s.startedAt,
		Delivered: int(s.delivered.Load()),
		Skipped:   int(s.skipped.Load()),
		Alert:     s.alert.Load(),
	}
}

// Stop прекращает чтение токенов, ждёт горутину и завершает активность
func (s *ActivitySession) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
		err = s.activity.End(ctx)
	})
	return err
}

// LiveActivityUsecase связывает платформу live activity, историю
// токенов и бэкенд обновлений. История общая для всех сессий.
type LiveActivityUsecase struct {
	platform   repository.ActivityPlatform
	history    repository.PushTokenHistory
	notifier   repository.ActivityNotifier
	stops      domain.StopLookup
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*ActivitySession
}

func NewLiveActivityUsecase(
	platform repository.ActivityPlatform,
	history repository.PushTokenHistory,
	notifier repository.ActivityNotifier,
	stops domain.StopLookup,
	staleAfter time.Duration,
	logger *zap.Logger,
) *LiveActivityUsecase {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LiveActivityUsecase{
		platform:   platform,
		history:    history,
		notifier:   notifier,
		stops:      stops,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		sessions:   make(map[string]*ActivitySession),
	}
}

// Start запускает активность для отправления. Если live activities
// выключены, возвращает domain.ErrActivitiesDisabled; повторять не нужно.
func (uc *LiveActivityUsecase) Start(ctx context.Context, stopGID string, event domain.StopEvent) (*ActivitySession, error) {
	if !uc.platform.ActivitiesEnabled() {
		return nil, domain.ErrActivitiesDisabled
	}

	stop, ok := uc.stops.ByGID(stopGID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStopNotFound, stopGID)
	}

	attrs, content := domain.NewActivityContent(stop, event, uc.now(), uc.staleAfter)
	act, err := uc.platform.Request(ctx, attrs, content)
	if err != nil {
		return nil, fmt.Errorf("failed to request activity: %w", err)
	}

	// чтение токенов живёт дольше HTTP-запроса, поэтому от базового контекста
	sessionCtx, cancel := context.WithCancel(uc.ctx)
	tokens, err := act.PushTokenUpdates(sessionCtx)
	if err != nil {
		cancel()
		_ = act.End(ctx)
		return nil, fmt.Errorf("failed to subscribe to push tokens: %w", err)
	}

	session := &ActivitySession{
		activity:  act,
		stop:      stop,
		event:     event,
		startedAt: uc.now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go uc.consume(sessionCtx, session, tokens)

	uc.mu.Lock()
	uc.sessions[session.ID()] = session
	uc.mu.Unlock()

	uc.logger.Info("Live activity started",
		zap.String("activity_id", session.ID()),
		zap.String("stop_id", stop.GID),
		zap.String("line", event.LineName()))
	return session, nil
}

func (uc *LiveActivityUsecase) consume(ctx context.Context, session *ActivitySession, tokens <-chan []byte) {
	defer close(session.done)

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-tokens:
			if !ok {
				return
			}
			uc.handleToken(ctx, session, raw)
		}
	}
}

// handleToken: токен в hex; уже известный токен пропускается молча;
// ошибка доставки поднимает alert, из истории токен не убирается.
func (uc *LiveActivityUsecase) handleToken(ctx context.Context, session *ActivitySession, raw []byte) {
	token := hex.EncodeToString(raw)

	added, err := uc.history.TestAndSet(ctx, token)
	if err != nil {
		uc.logger.Error("Failed to record push token",
			zap.String("activity_id", session.ID()),
			zap.Error(err))
		session.alert.Store(true)
		return
	}
	if !added {
		session.skipped.Add(1)
		uc.logger.Debug("Push token already delivered", zap.String("activity_id", session.ID()))
		return
	}

	req := domain.NewActivityRequest(token, session.stop, session.event)
	if err := uc.notifier.Deliver(ctx, req); err != nil {
		uc.logger.Warn("Push token delivery failed",
			zap.String("activity_id", session.ID()),
			zap.Error(err))
		session.alert.Store(true)
		return
	}
	session.delivered.Add(1)
	session.alert.Store(false)
}

func (uc *LiveActivityUsecase) Get(id string) (*ActivityView, error) {
	uc.mu.RLock()
	session, ok := uc.sessions[id]
	uc.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	view := session.View()
	return &view, nil
}

// List - все активные сессии
func (uc *LiveActivityUsecase) List() []ActivityView {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	views := make([]ActivityView, 0, len(uc.sessions))
	for _, s := range uc.sessions {
		views = append(views, s.View())
	}
	return views
}

func (uc *LiveActivityUsecase) Stop(ctx context.Context, id string) error {
	uc.mu.Lock()
	session, ok := uc.sessions[id]
	delete(uc.sessions, id)
	uc.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	uc.logger.Info("Stopping live activity", zap.String("activity_id", id))
	return session.Stop(ctx)
}

// Close завершает все активности
func (uc *LiveActivityUsecase) Close(ctx context.Context) {
	uc.mu.Lock()
	sessions := uc.sessions
	uc.sessions = make(map[string]*ActivitySession)
	uc.mu.Unlock()

	uc.cancel()
	for id, s := range sessions {
		if err := s.Stop(ctx); err != nil {
			uc.logger.Warn("Failed to end activity", zap.String("activity_id", id), zap.Error(err))
		}
	}
}
