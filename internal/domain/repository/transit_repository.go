package repository

import (
	"context"

	"github.com/haltestellenmonitor/internal/domain"
)

// TransitRepository определяет методы для работы с EFA/TRIAS бэкендом
type TransitRepository interface {
	// FetchDepartures - табло через TRIAS StopEventRequest (XML)
	FetchDepartures(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error)

	// FetchDepartureMonitor - табло через rapidJSON, события с описанием рейса
	FetchDepartureMonitor(ctx context.Context, q domain.DepartureQuery) (*domain.DepartureResult, error)

	// FetchTripStopTimes - последовательность остановок рейса
	FetchTripStopTimes(ctx context.Context, q domain.TripQuery) ([]domain.StopSequenceItem, error)
}
