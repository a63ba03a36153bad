package stopdata

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

//go:embed stops.yaml
var embeddedStops []byte

type stopFile struct {
	Stops []domain.Stop `yaml:"stops" validate:"required,dive"`
}

// Directory - справочник остановок, только чтение после загрузки
type Directory struct {
	stops  []domain.Stop
	byGID  map[string]int
	byStop map[int]int
}

var _ domain.StopLookup = (*Directory)(nil)

// Load reads the embedded directory.
func Load() (*Directory, error) {
	return Parse(embeddedStops)
}

// Parse разбирает YAML справочника и проверяет уникальность идентификаторов
func Parse(data []byte) (*Directory, error) {
	var file stopFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse stop directory: %w", err)
	}
	if err := validator.Validate(&file); err != nil {
		return nil, fmt.Errorf("invalid stop directory: %w", err)
	}

	d := &Directory{
		stops:  make([]domain.Stop, 0, len(file.Stops)),
		byGID:  make(map[string]int, len(file.Stops)),
		byStop: make(map[int]int, len(file.Stops)),
	}
	for _, s := range file.Stops {
		if _, dup := d.byGID[s.GID]; dup {
			return nil, fmt.Errorf("duplicate stop gid %q", s.GID)
		}
		if _, dup := d.byStop[s.StopID]; dup {
			return nil, fmt.Errorf("duplicate stop id %d", s.StopID)
		}
		d.byGID[s.GID] = len(d.stops)
		d.byStop[s.StopID] = len(d.stops)
		d.stops = append(d.stops, s)
	}
	return d, nil
}

func (d *Directory) ByGID(gid string) (domain.Stop, bool) {
	idx, ok := d.byGID[gid]
	if !ok {
		return domain.Stop{}, false
	}
	return d.stops[idx], true
}

func (d *Directory) ByStopID(id int) (domain.Stop, bool) {
	idx, ok := d.byStop[id]
	if !ok {
		return domain.Stop{}, false
	}
	return d.stops[idx], true
}

// All returns a copy sorted by name.
func (d *Directory) All() []domain.Stop {
	all := make([]domain.Stop, len(d.stops))
	copy(all, d.stops)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Search - поиск по названию и месту без учёта регистра
func (d *Directory) Search(query string) []domain.Stop {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return d.All()
	}
	var result []domain.Stop
	for _, s := range d.All() {
		if strings.Contains(strings.ToLower(s.Name), query) ||
			strings.Contains(strings.ToLower(s.Place+" "+s.Name), query) {
			result = append(result, s)
		}
	}
	return result
}

// Nearest returns up to limit stops ordered by distance, each a copy
// carrying its distance.
func (d *Directory) Nearest(from domain.Point, limit int) []domain.Stop {
	result := make([]domain.Stop, 0, len(d.stops))
	for _, s := range d.stops {
		result = append(result, s.WithDistance(from))
	}
	domain.SortStopsByDistance(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
