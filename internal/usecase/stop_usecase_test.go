package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/infrastructure/stopdata"
	"github.com/haltestellenmonitor/internal/repository/memory"
	"github.com/haltestellenmonitor/internal/usecase"
)

// MockKeyValueStore - для проверки ошибок хранилища
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func newStopUsecase(t *testing.T, store *memory.KeyValueStore, defaultStop string, favoritesOnly bool) *usecase.StopUsecase {
	t.Helper()
	directory, err := stopdata.Load()
	require.NoError(t, err)
	return usecase.NewStopUsecase(directory, store, defaultStop, favoritesOnly, zap.NewNop())
}

func TestStopUsecase_Favorites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKeyValueStore()
	uc := newStopUsecase(t, store, "", false)

	favorites, err := uc.Favorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	require.NoError(t, uc.AddFavorite(ctx, 33000028))
	require.NoError(t, uc.AddFavorite(ctx, 33000028))

	raw, err := store.Get(ctx, usecase.FavoriteStopsKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[33000028]`, string(raw))

	added, err := uc.ToggleFavorite(ctx, 33000007)
	require.NoError(t, err)
	assert.True(t, added)

	favorites, err = uc.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, "Hauptbahnhof", favorites[0].Name)
	assert.Equal(t, "Albertplatz", favorites[1].Name)

	added, err = uc.ToggleFavorite(ctx, 33000028)
	require.NoError(t, err)
	assert.False(t, added)

	isFav, err := uc.IsFavorite(ctx, 33000028)
	require.NoError(t, err)
	assert.False(t, isFav)

	raw, err = store.Get(ctx, usecase.FavoriteStopsKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[33000007]`, string(raw))

	require.NoError(t, uc.RemoveFavorite(ctx, 33000007))
	require.NoError(t, uc.RemoveFavorite(ctx, 33000007))
	favorites, err = uc.Favorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	assert.ErrorIs(t, uc.AddFavorite(ctx, 1), domain.ErrStopNotFound)
	_, err = uc.ToggleFavorite(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStopNotFound)
}

func TestStopUsecase_CorruptedFavoritesTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKeyValueStore()
	require.NoError(t, store.Set(ctx, usecase.FavoriteStopsKey, []byte("{not json")))
	uc := newStopUsecase(t, store, "", false)

	favorites, err := uc.Favorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	require.NoError(t, uc.AddFavorite(ctx, 33000037))
	raw, err := store.Get(ctx, usecase.FavoriteStopsKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[33000037]`, string(raw))
}

func TestStopUsecase_StoreError(t *testing.T) {
	ctx := context.Background()
	directory, err := stopdata.Load()
	require.NoError(t, err)

	store := &MockKeyValueStore{}
	store.On("Get", ctx, usecase.FavoriteStopsKey).Return(nil, errors.New("connection refused"))
	uc := usecase.NewStopUsecase(directory, store, "", true, zap.NewNop())

	_, err = uc.Favorites(ctx)
	assert.ErrorContains(t, err, "connection refused")

	_, err = uc.DefaultStop(ctx, nil)
	assert.Error(t, err)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestStopUsecase_DefaultStop(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to Hauptbahnhof", func(t *testing.T) {
		uc := newStopUsecase(t, memory.NewKeyValueStore(), "", false)
		stop, err := uc.DefaultStop(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultStopGID, stop.GID)
	})

	t.Run("configured stop", func(t *testing.T) {
		uc := newStopUsecase(t, memory.NewKeyValueStore(), "de:14612:37", false)
		stop, err := uc.DefaultStop(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "Postplatz", stop.Name)
	})

	t.Run("unknown configured stop", func(t *testing.T) {
		uc := newStopUsecase(t, memory.NewKeyValueStore(), "de:0:0", false)
		stop, err := uc.DefaultStop(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hauptbahnhof", stop.Name)
	})

	t.Run("nearest favorite", func(t *testing.T) {
		uc := newStopUsecase(t, memory.NewKeyValueStore(), "de:14612:37", true)
		require.NoError(t, uc.AddFavorite(ctx, 33000028))
		require.NoError(t, uc.AddFavorite(ctx, 33000007))

		nearAlbertplatz := domain.Point{Lat: 51.0630, Lon: 13.7470}
		stop, err := uc.DefaultStop(ctx, &nearAlbertplatz)
		require.NoError(t, err)
		assert.Equal(t, "Albertplatz", stop.Name)
		require.NotNil(t, stop.Distance)

		// без координаты - от ратуши
		stop, err = uc.DefaultStop(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hauptbahnhof", stop.Name)
	})

	t.Run("favorites only without favorites", func(t *testing.T) {
		uc := newStopUsecase(t, memory.NewKeyValueStore(), "", true)
		stop, err := uc.DefaultStop(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hauptbahnhof", stop.Name)
	})
}

func TestStopUsecase_SearchAndNearest(t *testing.T) {
	uc := newStopUsecase(t, memory.NewKeyValueStore(), "", false)

	all := uc.Search("", nil, 0)
	assert.Len(t, all, 12)

	limited := uc.Search("", nil, 3)
	assert.Len(t, limited, 3)

	bahnhof := uc.Search("bahnhof", nil, 0)
	require.NotEmpty(t, bahnhof)
	for _, s := range bahnhof {
		assert.Contains(t, s.Name, "ahnhof")
	}

	hbf := domain.Point{Lat: 51.04010, Lon: 13.73248}
	near := uc.Search("bahnhof", &hbf, 0)
	require.NotEmpty(t, near)
	assert.Equal(t, "Hauptbahnhof", near[0].Name)
	require.NotNil(t, near[0].Distance)
	assert.Less(t, *near[0].Distance, 1.0)

	nearest, err := uc.Nearest(hbf, 2)
	require.NoError(t, err)
	require.Len(t, nearest, 2)
	assert.Equal(t, "Hauptbahnhof", nearest[0].Name)

	_, err = uc.Nearest(domain.Point{Lat: 120, Lon: 13}, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)

	stop, err := uc.Get("de:14612:5")
	require.NoError(t, err)
	assert.Equal(t, "Pirnaischer Platz", stop.Name)

	_, err = uc.Get("de:14612:0")
	assert.ErrorIs(t, err, domain.ErrStopNotFound)
}
