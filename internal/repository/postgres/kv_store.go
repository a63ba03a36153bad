package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/haltestellenmonitor/internal/domain/repository"
	"go.uber.org/zap"
)

type kvStore struct {
	db *DB
}

// NewKeyValueStore - ключ-значение в таблице kv_store
func NewKeyValueStore(db *DB) repository.KeyValueStore {
	return &kvStore{db: db}
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.db.logger.Error("Failed to get value", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("kv get error: %w", err)
	}
	return value, nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		s.db.logger.Error("Failed to set value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("kv set error: %w", err)
	}
	return nil
}
