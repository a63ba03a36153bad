package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"go.uber.org/zap"
)

// FavoriteStopsKey - избранное хранится как JSON-массив числовых stop id
const FavoriteStopsKey = "FavoriteStops"

// StopDirectory - справочник остановок
type StopDirectory interface {
	domain.StopLookup
	All() []domain.Stop
	Search(query string) []domain.Stop
	Nearest(from domain.Point, limit int) []domain.Stop
}

// StopUsecase - поиск остановок, избранное и выбор остановки по умолчанию
type StopUsecase struct {
	directory     StopDirectory
	store         repository.KeyValueStore
	defaultStop   string
	favoritesOnly bool
	logger        *zap.Logger

	// чтение-изменение-запись избранного
	mu sync.Mutex
}

func NewStopUsecase(
	directory StopDirectory,
	store repository.KeyValueStore,
	defaultStop string,
	favoritesOnly bool,
	logger *zap.Logger,
) *StopUsecase {
	return &StopUsecase{
		directory:     directory,
		store:         store,
		defaultStop:   defaultStop,
		favoritesOnly: favoritesOnly,
		logger:        logger,
	}
}

func (uc *StopUsecase) Get(gid string) (domain.Stop, error) {
	stop, ok := uc.directory.ByGID(gid)
	if !ok {
		return domain.Stop{}, fmt.Errorf("%w: %s", domain.ErrStopNotFound, gid)
	}
	return stop, nil
}

// Search ищет по названию; пустой запрос - весь справочник.
// С координатой результат отсортирован по расстоянию.
func (uc *StopUsecase) Search(query string, from *domain.Point, limit int) []domain.Stop {
	var stops []domain.Stop
	if query == "" {
		stops = uc.directory.All()
	} else {
		stops = uc.directory.Search(query)
	}

	if from != nil {
		for i := range stops {
			stops[i] = stops[i].WithDistance(*from)
		}
		domain.SortStopsByDistance(stops)
	}
	if limit > 0 && len(stops) > limit {
		stops = stops[:limit]
	}
	return stops
}

func (uc *StopUsecase) Nearest(from domain.Point, limit int) ([]domain.Stop, error) {
	if !from.Valid() {
		return nil, domain.ErrInvalidCoordinates
	}
	return uc.directory.Nearest(from, limit), nil
}

// Favorites возвращает избранные остановки в порядке добавления.
// Id, которых нет в справочнике, пропускаются.
func (uc *StopUsecase) Favorites(ctx context.Context) ([]domain.Stop, error) {
	ids, err := uc.loadFavorites(ctx)
	if err != nil {
		return nil, err
	}

	stops := make([]domain.Stop, 0, len(ids))
	for _, id := range ids {
		if stop, ok := uc.directory.ByStopID(id); ok {
			stops = append(stops, stop)
		}
	}
	return stops, nil
}

func (uc *StopUsecase) IsFavorite(ctx context.Context, stopID int) (bool, error) {
	ids, err := uc.loadFavorites(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(ids, stopID) >= 0, nil
}

// AddFavorite добавляет остановку, повторное добавление ничего не меняет
func (uc *StopUsecase) AddFavorite(ctx context.Context, stopID int) error {
	if _, ok := uc.directory.ByStopID(stopID); !ok {
		return fmt.Errorf("%w: %d", domain.ErrStopNotFound, stopID)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ids, err := uc.loadFavorites(ctx)
	if err != nil {
		return err
	}
	if indexOf(ids, stopID) >= 0 {
		return nil
	}
	return uc.saveFavorites(ctx, append(ids, stopID))
}

func (uc *StopUsecase) RemoveFavorite(ctx context.Context, stopID int) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ids, err := uc.loadFavorites(ctx)
	if err != nil {
		return err
	}
	i := indexOf(ids, stopID)
	if i < 0 {
		return nil
	}
	return uc.saveFavorites(ctx, append(ids[:i], ids[i+1:]...))
}

// ToggleFavorite возвращает новое состояние
func (uc *StopUsecase) ToggleFavorite(ctx context.Context, stopID int) (bool, error) {
	if _, ok := uc.directory.ByStopID(stopID); !ok {
		return false, fmt.Errorf("%w: %d", domain.ErrStopNotFound, stopID)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ids, err := uc.loadFavorites(ctx)
	if err != nil {
		return false, err
	}
	if i := indexOf(ids, stopID); i >= 0 {
		return false, uc.saveFavorites(ctx, append(ids[:i], ids[i+1:]...))
	}
	return true, uc.saveFavorites(ctx, append(ids, stopID))
}

// DefaultStop выбирает остановку для виджета: ближайшая избранная к
// from, если включено favoritesOnly и избранное не пусто; иначе
// настроенная; иначе Hauptbahnhof.
func (uc *StopUsecase) DefaultStop(ctx context.Context, from *domain.Point) (domain.Stop, error) {
	if uc.favoritesOnly {
		favorites, err := uc.Favorites(ctx)
		if err != nil {
			return domain.Stop{}, err
		}
		if len(favorites) > 0 {
			origin := domain.DresdenTownHall
			if from != nil && from.Valid() {
				origin = *from
			}
			for i := range favorites {
				favorites[i] = favorites[i].WithDistance(origin)
			}
			domain.SortStopsByDistance(favorites)
			return favorites[0], nil
		}
	}

	for _, gid := range []string{uc.defaultStop, domain.DefaultStopGID} {
		if gid == "" {
			continue
		}
		if stop, ok := uc.directory.ByGID(gid); ok {
			return stop, nil
		}
	}

	// справочник без Hauptbahnhof: первая по алфавиту
	all := uc.directory.All()
	if len(all) == 0 {
		return domain.Stop{}, domain.ErrStopNotFound
	}
	return all[0], nil
}

func (uc *StopUsecase) loadFavorites(ctx context.Context) ([]int, error) {
	data, err := uc.store.Get(ctx, FavoriteStopsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if len(data) == 0 {
		return []int{}, nil
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		// битое значение не должно ломать экран: начинаем с пустого списка
		uc.logger.Warn("Corrupted favorites value, ignoring", zap.Error(err))
		return []int{}, nil
	}
	return ids, nil
}

func (uc *StopUsecase) saveFavorites(ctx context.Context, ids []int) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	if err := uc.store.Set(ctx, FavoriteStopsKey, data); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
