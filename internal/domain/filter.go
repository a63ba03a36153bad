package domain

import (
	"sort"
	"strings"
)

// ModeToggles - включённые виды транспорта. Отсутствующий ключ = включён.
type ModeToggles map[TransportMode]bool

// DefaultModeToggles - все виды включены
func DefaultModeToggles() ModeToggles {
	toggles := make(ModeToggles, len(AllModes()))
	for _, m := range AllModes() {
		toggles[m] = true
	}
	return toggles
}

func (t ModeToggles) Enabled(m TransportMode) bool {
	if t == nil {
		return true
	}
	enabled, ok := t[m]
	return !ok || enabled
}

// ParseModeToggles builds toggles from a comma separated list of enabled
// modes. An empty list enables everything.
func ParseModeToggles(list string) (ModeToggles, error) {
	toggles := DefaultModeToggles()
	if strings.TrimSpace(list) == "" {
		return toggles, nil
	}
	for m := range toggles {
		toggles[m] = false
	}
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := ParseTransportMode(part)
		if err != nil {
			return nil, err
		}
		toggles[m] = true
	}
	return toggles, nil
}

// EnabledModes returns enabled modes in display order.
func (t ModeToggles) EnabledModes() []TransportMode {
	var modes []TransportMode
	for _, m := range AllModes() {
		if t.Enabled(m) {
			modes = append(modes, m)
		}
	}
	return modes
}

// DepartureFilter - фильтр табло: виды транспорта и строка поиска
type DepartureFilter struct {
	Toggles ModeToggles
	Query   string
}

// NewDepartureFilter returns a filter that lets everything through.
func NewDepartureFilter() DepartureFilter {
	return DepartureFilter{Toggles: DefaultModeToggles()}
}

// Matches: mode enabled AND (empty query OR display name contains query).
func (f DepartureFilter) Matches(e StopEvent) bool {
	if !f.Toggles.Enabled(e.Mode) {
		return false
	}
	query := strings.TrimSpace(f.Query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.DisplayName()), strings.ToLower(query))
}

// Apply возвращает новый срез, исходный не меняется
func (f DepartureFilter) Apply(events []StopEvent) []StopEvent {
	result := make([]StopEvent, 0, len(events))
	for _, e := range events {
		if f.Matches(e) {
			result = append(result, e)
		}
	}
	return result
}

// FilterStopSequence - поиск по названию остановки в карточке рейса
func FilterStopSequence(items []StopSequenceItem, query string) []StopSequenceItem {
	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]StopSequenceItem, 0, len(items))
	for _, item := range items {
		if query == "" || strings.Contains(strings.ToLower(item.Name), query) {
			result = append(result, item)
		}
	}
	return result
}

// SortStopsByDistance - ближайшие первыми, без расстояния в конце
func SortStopsByDistance(stops []Stop) {
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].DistanceOrMax() < stops[j].DistanceOrMax()
	})
}
