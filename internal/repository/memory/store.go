// Package memory - хранилища в памяти процесса для STORE_BACKEND=memory и тестов.
package memory

import (
	"context"
	"sync"

	"github.com/haltestellenmonitor/internal/domain/repository"
)

// KeyValueStore - map под мьютексом
type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ repository.KeyValueStore = (*KeyValueStore)(nil)

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{values: make(map[string][]byte)}
}

func (s *KeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *KeyValueStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
	return nil
}

// PushTokenHistory - множество токенов под мьютексом, проверка и
// добавление под одной блокировкой
type PushTokenHistory struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

var _ repository.PushTokenHistory = (*PushTokenHistory)(nil)

func NewPushTokenHistory() *PushTokenHistory {
	return &PushTokenHistory{tokens: make(map[string]struct{})}
}

func (h *PushTokenHistory) TestAndSet(_ context.Context, token string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.tokens[token]; ok {
		return false, nil
	}
	h.tokens[token] = struct{}{}
	return true, nil
}

func (h *PushTokenHistory) Contains(_ context.Context, token string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.tokens[token]
	return ok, nil
}

// Len - число токенов в истории
func (h *PushTokenHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tokens)
}
