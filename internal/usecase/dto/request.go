package dto

import (
	"time"

	"github.com/haltestellenmonitor/internal/domain"
)

// StopSearchRequest - поиск остановок по названию, с координатой сортировка по расстоянию
type StopSearchRequest struct {
	Query string   `json:"q" validate:"omitempty,max=100"`
	Lat   *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lon   *float64 `json:"lon,omitempty" validate:"omitempty,min=-180,max=180"`
	Limit int      `json:"limit" validate:"omitempty,min=1,max=100"`
}

// Origin возвращает точку, если заданы обе координаты
func (r StopSearchRequest) Origin() *domain.Point {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return &domain.Point{Lat: *r.Lat, Lon: *r.Lon}
}

// NearestStopsRequest - ближайшие остановки к точке
type NearestStopsRequest struct {
	Lat   float64 `json:"lat" validate:"min=-90,max=90"`
	Lon   float64 `json:"lon" validate:"min=-180,max=180"`
	Limit int     `json:"limit" validate:"omitempty,min=1,max=50"`
}

// DepartureRequest - разовый запрос табло
type DepartureRequest struct {
	StopGID string     `json:"stop_id" validate:"required,stopgid"`
	Time    *time.Time `json:"time,omitempty"`
	Limit   int        `json:"limit" validate:"omitempty,min=1,max=200"`
	Source  string     `json:"source" validate:"omitempty,oneof=trias efa"`
}

// BoardRequest - запуск или смена параметров сессии табло
type BoardRequest struct {
	StopGID string     `json:"stop_id" validate:"required,stopgid"`
	Time    *time.Time `json:"time,omitempty"`
	Limit   int        `json:"limit" validate:"omitempty,min=1,max=200"`
}

// Query собирает запрос табло; без времени - "сейчас"
func (r BoardRequest) Query() domain.DepartureQuery {
	q := domain.DepartureQuery{StopGID: r.StopGID, Limit: r.Limit}
	if r.Time != nil {
		q.Time = *r.Time
	}
	return q
}

// TripRequest - сессия рейса для отправления с табло
type TripRequest struct {
	StopGID string           `json:"stop_id" validate:"required,stopgid"`
	Event   domain.StopEvent `json:"event"`
}

// ActivityRequest - запуск live activity для отправления
type ActivityRequest struct {
	StopGID string           `json:"stop_id" validate:"required,stopgid"`
	Event   domain.StopEvent `json:"event"`
}

// DefaultStopRequest - координата устройства для выбора остановки виджета
type DefaultStopRequest struct {
	Lat *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lon *float64 `json:"lon,omitempty" validate:"omitempty,min=-180,max=180"`
}

func (r DefaultStopRequest) Origin() *domain.Point {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return &domain.Point{Lat: *r.Lat, Lon: *r.Lon}
}
