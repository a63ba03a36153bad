package dto

import (
	"time"

	"github.com/haltestellenmonitor/internal/domain"
)

// StopListResponse - список остановок
type StopListResponse struct {
	Stops []domain.Stop `json:"stops"`
	Total int           `json:"total"`
}

// SessionResponse - идентификатор созданной сессии
type SessionResponse struct {
	ID string `json:"id"`
}

// FavoriteStateResponse - состояние избранного для остановки
type FavoriteStateResponse struct {
	StopID   int  `json:"stop_id"`
	Favorite bool `json:"favorite"`
}

// HealthResponse - состояние сервиса и его зависимостей
type HealthResponse struct {
	Status string            `json:"status"`
	Time   time.Time         `json:"time"`
	Checks map[string]string `json:"checks,omitempty"`
}
