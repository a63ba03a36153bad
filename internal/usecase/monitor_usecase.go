package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"go.uber.org/zap"
)

// DepartureSource - какой бэкенд отдаёт табло
type DepartureSource string

const (
	SourceTrias DepartureSource = "trias"
	SourceEFA   DepartureSource = "efa"
)

// BoardView - отфильтрованное табло сессии
type BoardView struct {
	SessionID string             `json:"session_id"`
	Stop      domain.Stop        `json:"stop"`
	Time      time.Time          `json:"time"`
	Events    []domain.StopEvent `json:"events"`
	Total     int                `json:"total"`
	Dropped   int                `json:"dropped"`
	Loaded    bool               `json:"loaded"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
	State     PollState          `json:"state"`
	Failures  int                `json:"failures"`
	LastError string             `json:"last_error,omitempty"`
}

// TripStop - остановка рейса со ссылкой на справочник
type TripStop struct {
	domain.StopSequenceItem
	Stop *domain.Stop `json:"stop,omitempty"`
}

// TripView - последовательность остановок сессии рейса
type TripView struct {
	SessionID string           `json:"session_id"`
	Query     domain.TripQuery `json:"query"`
	Stops     []TripStop       `json:"stops"`
	Loaded    bool             `json:"loaded"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
	State     PollState        `json:"state"`
	Failures  int              `json:"failures"`
	LastError string           `json:"last_error,omitempty"`
}

type boardSession struct {
	id string
	// restart сериализует смену параметров и закрытие
	restart sync.Mutex
	closed  bool // под restart

	mu        sync.RWMutex
	scheduler *PollScheduler[*domain.DepartureResult]
	stop      domain.Stop
	query     domain.DepartureQuery
	events    []domain.StopEvent
	dropped   int
	loaded    bool
	updatedAt time.Time
	lastErr   error
}

type tripSession struct {
	id        string
	scheduler *PollScheduler[[]domain.StopSequenceItem]

	mu        sync.RWMutex
	query     domain.TripQuery
	items     []domain.StopSequenceItem
	loaded    bool
	updatedAt time.Time
	lastErr   error
}

// MonitorUsecase ведёт сессии табло и рейсов. У каждой сессии свой
// планировщик опроса; общих данных между сессиями нет.
type MonitorUsecase struct {
	transit  repository.TransitRepository
	stops    domain.StopLookup
	opts     PollOptions
	pageSize int
	logger   *zap.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	boards map[string]*boardSession
	trips  map[string]*tripSession
}

func NewMonitorUsecase(
	transit repository.TransitRepository,
	stops domain.StopLookup,
	opts PollOptions,
	pageSize int,
	logger *zap.Logger,
) *MonitorUsecase {
	ctx, cancel := context.WithCancel(context.Background())
	return &MonitorUsecase{
		transit:  transit,
		stops:    stops,
		opts:     opts,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		boards:   make(map[string]*boardSession),
		trips:    make(map[string]*tripSession),
	}
}

// Departures - разовый запрос табло без сессии
func (uc *MonitorUsecase) Departures(
	ctx context.Context,
	q domain.DepartureQuery,
	source DepartureSource,
	filter domain.DepartureFilter,
) (*BoardView, error) {
	stop, err := uc.resolveStop(q.StopGID)
	if err != nil {
		return nil, err
	}
	if q.Limit == 0 {
		q.Limit = uc.pageSize
	}

	var result *domain.DepartureResult
	if source == SourceEFA {
		result, err = uc.transit.FetchDepartureMonitor(ctx, q)
	} else {
		result, err = uc.transit.FetchDepartures(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	events := append([]domain.StopEvent(nil), result.Events...)
	domain.SortByEffectiveTime(events)
	updated := uc.now()

	return &BoardView{
		Stop:      stop,
		Time:      q.Time,
		Events:    filter.Apply(events),
		Total:     len(events),
		Dropped:   result.Dropped,
		Loaded:    true,
		UpdatedAt: &updated,
		State:     PollIdle,
	}, nil
}

// StartBoard создает сессию табло и сразу запускает опрос
func (uc *MonitorUsecase) StartBoard(q domain.DepartureQuery) (string, error) {
	stop, err := uc.resolveStop(q.StopGID)
	if err != nil {
		return "", err
	}

	session := &boardSession{id: uuid.NewString()}
	if err := uc.startBoardScheduler(session, stop, q); err != nil {
		return "", err
	}

	uc.mu.Lock()
	uc.boards[session.id] = session
	uc.mu.Unlock()

	uc.logger.Info("Board session started",
		zap.String("session_id", session.id),
		zap.String("stop_id", stop.GID))
	return session.id, nil
}

// UpdateBoard меняет остановку или время: таймеры и текущий запрос
// отменяются, новый запрос уходит сразу.
func (uc *MonitorUsecase) UpdateBoard(id string, q domain.DepartureQuery) error {
	session, err := uc.board(id)
	if err != nil {
		return err
	}
	stop, err := uc.resolveStop(q.StopGID)
	if err != nil {
		return err
	}

	session.restart.Lock()
	defer session.restart.Unlock()

	// StopBoard мог удалить сессию, пока резолвилась остановка
	if session.closed {
		return domain.ErrSessionNotFound
	}
	session.current().Stop()
	return uc.startBoardScheduler(session, stop, q)
}

// close останавливает опрос; после него UpdateBoard не перезапустит сессию
func (s *boardSession) close() {
	s.restart.Lock()
	defer s.restart.Unlock()

	s.closed = true
	s.current().Stop()
}

func (s *boardSession) current() *PollScheduler[*domain.DepartureResult] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler
}

func (uc *MonitorUsecase) startBoardScheduler(session *boardSession, stop domain.Stop, q domain.DepartureQuery) error {
	if q.Limit == 0 {
		q.Limit = uc.pageSize
	}

	session.mu.Lock()
	session.stop = stop
	session.query = q
	session.events = nil
	session.dropped = 0
	session.loaded = false
	session.lastErr = nil
	session.mu.Unlock()

	fetch := func(ctx context.Context) (*domain.DepartureResult, error) {
		return uc.transit.FetchDepartures(ctx, q)
	}
	onResult := func(result *domain.DepartureResult) {
		events := append([]domain.StopEvent(nil), result.Events...)
		domain.SortByEffectiveTime(events)

		session.mu.Lock()
		session.events = events
		session.dropped = result.Dropped
		session.loaded = true
		session.updatedAt = uc.now()
		session.lastErr = nil
		session.mu.Unlock()
	}
	onError := func(err error) {
		session.mu.Lock()
		session.lastErr = err
		session.mu.Unlock()
	}

	scheduler := NewPollScheduler("board:"+session.id, fetch, onResult, onError, uc.opts, uc.logger)
	session.mu.Lock()
	session.scheduler = scheduler
	session.mu.Unlock()
	return scheduler.Start(uc.ctx)
}

// Board возвращает табло сессии, отфильтрованное на лету
func (uc *MonitorUsecase) Board(id string, filter domain.DepartureFilter) (*BoardView, error) {
	session, err := uc.board(id)
	if err != nil {
		return nil, err
	}
	session.mu.RLock()
	scheduler := session.scheduler
	view := &BoardView{
		SessionID: session.id,
		Stop:      session.stop,
		Time:      session.query.Time,
		Events:    filter.Apply(session.events),
		Total:     len(session.events),
		Dropped:   session.dropped,
		Loaded:    session.loaded,
	}
	if session.loaded {
		updated := session.updatedAt
		view.UpdatedAt = &updated
	}
	if session.lastErr != nil {
		view.LastError = session.lastErr.Error()
	}
	session.mu.RUnlock()

	view.State = scheduler.State()
	view.Failures = scheduler.Failures()
	return view, nil
}

// RefreshBoard - ручное обновление
func (uc *MonitorUsecase) RefreshBoard(id string) error {
	session, err := uc.board(id)
	if err != nil {
		return err
	}
	session.current().Refresh()
	return nil
}

// StopBoard останавливает и удаляет сессию
func (uc *MonitorUsecase) StopBoard(id string) error {
	uc.mu.Lock()
	session, ok := uc.boards[id]
	delete(uc.boards, id)
	uc.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	session.close()
	uc.logger.Info("Board session stopped", zap.String("session_id", id))
	return nil
}

// StartTrip создает сессию последовательности остановок рейса
func (uc *MonitorUsecase) StartTrip(q domain.TripQuery) (string, error) {
	if _, err := uc.resolveStop(q.StopGID); err != nil {
		return "", err
	}

	session := &tripSession{id: uuid.NewString(), query: q}

	fetch := func(ctx context.Context) ([]domain.StopSequenceItem, error) {
		return uc.transit.FetchTripStopTimes(ctx, q)
	}
	onResult := func(items []domain.StopSequenceItem) {
		session.mu.Lock()
		session.items = items
		session.loaded = true
		session.updatedAt = uc.now()
		session.lastErr = nil
		session.mu.Unlock()
	}
	onError := func(err error) {
		session.mu.Lock()
		session.lastErr = err
		session.mu.Unlock()
	}

	session.scheduler = NewPollScheduler("trip:"+session.id, fetch, onResult, onError, uc.opts, uc.logger)
	if err := session.scheduler.Start(uc.ctx); err != nil {
		return "", err
	}

	uc.mu.Lock()
	uc.trips[session.id] = session
	uc.mu.Unlock()

	uc.logger.Info("Trip session started",
		zap.String("session_id", session.id),
		zap.String("line", q.LineID),
		zap.Int("trip_code", q.TripCode))
	return session.id, nil
}

// Trip возвращает остановки рейса, query фильтрует по имени
func (uc *MonitorUsecase) Trip(id, query string) (*TripView, error) {
	uc.mu.RLock()
	session, ok := uc.trips[id]
	uc.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	session.mu.RLock()
	items := domain.FilterStopSequence(session.items, query)
	view := &TripView{
		SessionID: session.id,
		Query:     session.query,
		Loaded:    session.loaded,
	}
	if session.loaded {
		updated := session.updatedAt
		view.UpdatedAt = &updated
	}
	if session.lastErr != nil {
		view.LastError = session.lastErr.Error()
	}
	session.mu.RUnlock()

	view.Stops = make([]TripStop, 0, len(items))
	for _, item := range items {
		ts := TripStop{StopSequenceItem: item}
		if stop, ok := item.ResolveStop(uc.stops); ok {
			ts.Stop = &stop
		}
		view.Stops = append(view.Stops, ts)
	}
	view.State = session.scheduler.State()
	view.Failures = session.scheduler.Failures()
	return view, nil
}

func (uc *MonitorUsecase) StopTrip(id string) error {
	uc.mu.Lock()
	session, ok := uc.trips[id]
	delete(uc.trips, id)
	uc.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	session.scheduler.Stop()
	uc.logger.Info("Trip session stopped", zap.String("session_id", id))
	return nil
}

// Close останавливает все сессии
func (uc *MonitorUsecase) Close() {
	uc.mu.Lock()
	boards := uc.boards
	trips := uc.trips
	uc.boards = make(map[string]*boardSession)
	uc.trips = make(map[string]*tripSession)
	uc.mu.Unlock()

	uc.cancel()
	for _, s := range boards {
		s.close()
	}
	for _, s := range trips {
		s.scheduler.Stop()
	}
	uc.logger.Info("Monitor sessions closed",
		zap.Int("boards", len(boards)),
		zap.Int("trips", len(trips)))
}

func (uc *MonitorUsecase) board(id string) (*boardSession, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	session, ok := uc.boards[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *MonitorUsecase) resolveStop(gid string) (domain.Stop, error) {
	if gid == "" {
		return domain.Stop{}, domain.ErrEmptyStopID
	}
	stop, ok := uc.stops.ByGID(gid)
	if !ok {
		return domain.Stop{}, fmt.Errorf("%w: %s", domain.ErrStopNotFound, gid)
	}
	return stop, nil
}
