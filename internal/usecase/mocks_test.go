package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/haltestellenmonitor/internal/usecase"
)

// MockTransitRepository - мок EFA/TRIAS клиента
type MockTransitRepository struct {
	mock.Mock
}

func (m *MockTransitRepository) FetchDepartures(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepartureResult), args.Error(1)
}

func (m *MockTransitRepository) FetchDepartureMonitor(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepartureResult), args.Error(1)
}

func (m *MockTransitRepository) FetchTripStopTimes(ctx context.Context, q domain.TripQuery) ([]domain.StopSequenceItem, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StopSequenceItem), args.Error(1)
}

// MockActivityPlatform - мок платформы live activity
type MockActivityPlatform struct {
	mock.Mock
}

func (m *MockActivityPlatform) ActivitiesEnabled() bool {
	return m.Called().Bool(0)
}

func (m *MockActivityPlatform) Request(ctx context.Context, attrs domain.ActivityAttributes, content domain.ActivityContent) (repository.Activity, error) {
	args := m.Called(ctx, attrs, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.Activity), args.Error(1)
}

// MockActivityNotifier - мок бэкенда обновлений
type MockActivityNotifier struct {
	mock.Mock
}

func (m *MockActivityNotifier) Deliver(ctx context.Context, req domain.ActivityRequest) error {
	return m.Called(ctx, req).Error(0)
}

// fakeActivity отдаёт токены, записанные в tokens
type fakeActivity struct {
	id     string
	tokens chan []byte

	mu    sync.Mutex
	ended int
}

func newFakeActivity(id string) *fakeActivity {
	return &fakeActivity{id: id, tokens: make(chan []byte, 8)}
}

func (a *fakeActivity) ID() string { return a.id }

func (a *fakeActivity) PushTokenUpdates(ctx context.Context) (<-chan []byte, error) {
	return a.tokens, nil
}

func (a *fakeActivity) End(ctx context.Context) error {
	a.mu.Lock()
	a.ended++
	a.mu.Unlock()
	return nil
}

func (a *fakeActivity) Ended() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ended
}

// idlePollOptions: первый запрос сразу, повторные таймеры не срабатывают
func idlePollOptions() usecase.PollOptions {
	return usecase.PollOptions{
		SuccessInterval: 30 * time.Second,
		FetchTimeout:    time.Second,
		After: func(time.Duration) <-chan time.Time {
			return make(chan time.Time)
		},
	}
}

func departureAt(seq int, mode domain.TransportMode, line, destination string, at time.Time) domain.StopEvent {
	return domain.StopEvent{
		Kind:              domain.StopEventKindMonitor,
		Mode:              mode,
		LineRef:           "voe:1100" + line + ": :H",
		DirectionRef:      "outward",
		PublishedLineName: line,
		DestinationText:   destination,
		JourneyRef:        "voe:1100" + line + ": :H:j25:" + "1234",
		ThisCall:          domain.CallAtStop{TimetabledTime: at},
		Seq:               seq,
	}
}
