package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/haltestellenmonitor/internal/config"
	"github.com/haltestellenmonitor/internal/domain"
	"go.uber.org/zap"
)

// PollState - состояние планировщика опроса
type PollState int

const (
	PollIdle PollState = iota
	PollFetching
	PollArmedSuccess
	PollArmedFailure
	PollCancelled
)

func (s PollState) String() string {
	switch s {
	case PollIdle:
		return "idle"
	case PollFetching:
		return "fetching"
	case PollArmedSuccess:
		return "armed_success"
	case PollArmedFailure:
		return "armed_failure"
	case PollCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s PollState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FetchFunc - один запрос к бэкенду
type FetchFunc[T any] func(ctx context.Context) (T, error)

// PollOptions - интервалы и таймеры планировщика
type PollOptions struct {
	SuccessInterval time.Duration
	FetchTimeout    time.Duration
	// NewFailurePolicy создаёт политику задержки после ошибки, своя на каждый планировщик
	NewFailurePolicy func() backoff.BackOff
	// After подменяется в тестах
	After func(time.Duration) <-chan time.Time
}

// NewPollOptions собирает опции из конфигурации
func NewPollOptions(cfg config.PollConfig, fetchTimeout time.Duration) PollOptions {
	return PollOptions{
		SuccessInterval:  cfg.SuccessInterval,
		FetchTimeout:     fetchTimeout,
		NewFailurePolicy: FailurePolicy(cfg),
		After:            time.After,
	}
}

// FailurePolicy: "constant" - фиксированная задержка без предела попыток,
// "exponential" - рост от FailureInterval до MaxFailureDelay.
func FailurePolicy(cfg config.PollConfig) func() backoff.BackOff {
	interval := cfg.FailureInterval
	if interval <= 0 {
		interval = time.Second
	}

	if cfg.FailureBackoff == "exponential" {
		return func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = interval
			if cfg.MaxFailureDelay > 0 {
				b.MaxInterval = cfg.MaxFailureDelay
			}
			b.MaxElapsedTime = 0
			b.Reset()
			return b
		}
	}
	return func() backoff.BackOff {
		return backoff.NewConstantBackOff(interval)
	}
}

func (o PollOptions) withDefaults() PollOptions {
	if o.SuccessInterval <= 0 {
		o.SuccessInterval = 30 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 20 * time.Second
	}
	if o.NewFailurePolicy == nil {
		o.NewFailurePolicy = FailurePolicy(config.PollConfig{})
	}
	if o.After == nil {
		o.After = time.After
	}
	return o
}

type fetchResult[T any] struct {
	value      T
	err        error
	generation uint64
}

// PollScheduler периодически выполняет fetch: после успеха ждёт
// SuccessInterval, после ошибки - задержку из политики. В полёте не
// больше одного запроса; результат устаревшего поколения или пришедший
// после остановки отбрасывается.
type PollScheduler[T any] struct {
	name     string
	fetch    FetchFunc[T]
	onResult func(T)
	onError  func(error)
	opts     PollOptions
	logger   *zap.Logger

	mu         sync.Mutex
	state      PollState
	generation uint64
	failures   int
	started    bool
	cancel     context.CancelFunc
	done       chan struct{}

	refresh chan struct{}
}

// NewPollScheduler создает планировщик. onResult и onError вызываются
// из горутины планировщика и не должны вызывать его методы.
func NewPollScheduler[T any](
	name string,
	fetch FetchFunc[T],
	onResult func(T),
	onError func(error),
	opts PollOptions,
	logger *zap.Logger,
) *PollScheduler[T] {
	if onResult == nil {
		onResult = func(T) {}
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &PollScheduler[T]{
		name:     name,
		fetch:    fetch,
		onResult: onResult,
		onError:  onError,
		opts:     opts.withDefaults(),
		logger:   logger,
		state:    PollIdle,
		done:     make(chan struct{}),
		refresh:  make(chan struct{}, 1),
	}
}

// Start запускает цикл опроса, первый запрос - сразу
func (s *PollScheduler[T]) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == PollCancelled {
		return domain.ErrSchedulerStopped
	}
	if s.started {
		return fmt.Errorf("scheduler %s already started", s.name)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	go s.run(ctx)
	return nil
}

// Stop отменяет таймеры и текущий запрос и ждёт завершения цикла.
// Повторный вызов ничего не делает.
func (s *PollScheduler[T]) Stop() {
	s.mu.Lock()
	started := s.started
	if s.state != PollCancelled {
		s.state = PollCancelled
		s.generation++
	}
	cancel := s.cancel
	s.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-s.done
}

// Refresh бросает текущий запрос или таймер и запрашивает сразу
func (s *PollScheduler[T]) Refresh() {
	s.mu.Lock()
	if !s.started || s.state == PollCancelled {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.mu.Unlock()

	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *PollScheduler[T]) State() PollState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *PollScheduler[T]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Failures - ошибок подряд с последнего успеха
func (s *PollScheduler[T]) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

func (s *PollScheduler[T]) run(ctx context.Context) {
	defer close(s.done)

	policy := s.opts.NewFailurePolicy()
	policy.Reset()

	for {
		gen, ok := s.beginFetch()
		if !ok {
			return
		}

		fetchCtx, cancelFetch := context.WithTimeout(ctx, s.opts.FetchTimeout)
		results := make(chan fetchResult[T], 1)
		go func() {
			v, err := s.fetch(fetchCtx)
			results <- fetchResult[T]{value: v, err: err, generation: gen}
		}()

		var res fetchResult[T]
		select {
		case <-ctx.Done():
			cancelFetch()
			s.markCancelled()
			return
		case <-s.refresh:
			// брошенный запрос допишет в свой буферизованный канал, его никто не читает
			cancelFetch()
			continue
		case res = <-results:
		}
		cancelFetch()

		delay, delivered := s.complete(res, policy)
		if !delivered {
			if s.State() == PollCancelled {
				return
			}
			// результат устарел из-за Refresh, сигнал уже в канале
			delay = 0
		}

		select {
		case <-ctx.Done():
			s.markCancelled()
			return
		case <-s.refresh:
		case <-s.opts.After(delay):
		}
	}
}

func (s *PollScheduler[T]) beginFetch() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == PollCancelled {
		return 0, false
	}
	s.state = PollFetching
	return s.generation, true
}

// complete передаёт результат потребителю и возвращает задержку до
// следующего запроса. false - результат отброшен.
func (s *PollScheduler[T]) complete(res fetchResult[T], policy backoff.BackOff) (time.Duration, bool) {
	s.mu.Lock()
	if s.state == PollCancelled || res.generation != s.generation {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale poll result",
			zap.String("scheduler", s.name),
			zap.Uint64("generation", res.generation))
		return 0, false
	}

	var delay time.Duration
	if res.err == nil {
		policy.Reset()
		s.failures = 0
		s.state = PollArmedSuccess
		delay = s.opts.SuccessInterval
	} else {
		s.failures++
		s.state = PollArmedFailure
		delay = policy.NextBackOff()
		if delay == backoff.Stop {
			delay = s.opts.SuccessInterval
		}
	}
	failures := s.failures
	s.mu.Unlock()

	if res.err == nil {
		s.onResult(res.value)
	} else {
		s.logger.Warn("Poll failed",
			zap.String("scheduler", s.name),
			zap.Int("failures", failures),
			zap.Duration("retry_in", delay),
			zap.Error(res.err))
		s.onError(res.err)
	}
	return delay, true
}

func (s *PollScheduler[T]) markCancelled() {
	s.mu.Lock()
	s.state = PollCancelled
	s.mu.Unlock()
}
