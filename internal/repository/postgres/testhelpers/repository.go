package testhelpers

import (
	"context"
	"testing"

	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/haltestellenmonitor/internal/repository/postgres"
)

// NewMigratedDB оборачивает тестовую базу, применяет миграции и очищает таблицы
func NewMigratedDB(t *testing.T, tdb *TestDB) *postgres.DB {
	t.Helper()

	db := postgres.NewDBForTest(tdb.DB, tdb.Logger)
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := tdb.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	return db
}

// NewKeyValueStoreForTest creates a kv store on the test database
func NewKeyValueStoreForTest(t *testing.T, tdb *TestDB) repository.KeyValueStore {
	return postgres.NewKeyValueStore(NewMigratedDB(t, tdb))
}

// NewPushTokenHistoryForTest creates a push token history on the test database
func NewPushTokenHistoryForTest(t *testing.T, tdb *TestDB) repository.PushTokenHistory {
	return postgres.NewPushTokenHistory(NewMigratedDB(t, tdb))
}
