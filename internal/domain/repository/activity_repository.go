package repository

import (
	"context"

	"github.com/haltestellenmonitor/internal/domain"
)

// Activity - запущенная live activity
type Activity interface {
	// ID идентификатор активности на платформе
	ID() string

	// PushTokenUpdates - поток токенов без определённого конца; канал
	// закрывается при завершении активности или отмене ctx
	PushTokenUpdates(ctx context.Context) (<-chan []byte, error)

	// End завершает активность на платформе
	End(ctx context.Context) error
}

// ActivityPlatform - платформенный слой live activity
type ActivityPlatform interface {
	// ActivitiesEnabled - разрешены ли live activities
	ActivitiesEnabled() bool

	// Request запускает активность с push-токенами
	Request(ctx context.Context, attrs domain.ActivityAttributes, content domain.ActivityContent) (Activity, error)
}

// ActivityNotifier доставляет токены бэкенду обновлений
type ActivityNotifier interface {
	Deliver(ctx context.Context, req domain.ActivityRequest) error
}
