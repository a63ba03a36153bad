package repository

import "context"

// KeyValueStore - внешнее хранилище ключ-значение
type KeyValueStore interface {
	// Get возвращает nil без ошибки, если ключа нет
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение
	Set(ctx context.Context, key string, value []byte) error
}

// PushTokenHistory - множество уже отправленных push-токенов
type PushTokenHistory interface {
	// TestAndSet атомарно добавляет токен. true - токен новый и добавлен,
	// false - токен уже был в истории.
	TestAndSet(ctx context.Context, token string) (bool, error)

	// Contains проверяет наличие токена
	Contains(ctx context.Context, token string) (bool, error)
}
