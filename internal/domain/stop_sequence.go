package domain

import (
	"strconv"
	"strings"
	"time"
)

// StopSequenceItem - одна остановка на пути рейса
type StopSequenceItem struct {
	ID                     string                     `json:"id"`
	Name                   string                     `json:"name"`
	Type                   string                     `json:"type,omitempty"`
	Niveau                 int                        `json:"niveau"`
	ProductClasses         []int                      `json:"productClasses,omitempty"`
	Properties             StopSequenceItemProperties `json:"properties"`
	ParentID               string                     `json:"parentId,omitempty"`
	ArrivalTimePlanned     *time.Time                 `json:"arrivalTimePlanned,omitempty"`
	ArrivalTimeEstimated   *time.Time                 `json:"arrivalTimeEstimated,omitempty"`
	DepartureTimePlanned   *time.Time                 `json:"departureTimePlanned,omitempty"`
	DepartureTimeEstimated *time.Time                 `json:"departureTimeEstimated,omitempty"`
}

type StopSequenceItemProperties struct {
	AreaNiveauDiva  string `json:"AREA_NIVEAU_DIVA,omitempty"`
	DestinationText string `json:"DestinationText,omitempty"`
	Area            string `json:"area,omitempty"`
	Platform        string `json:"platform,omitempty"`
	StopID          string `json:"stopId,omitempty"`
}

// StopGID cuts a platform-level id ("de:14612:28:2:3") down to the stop ("de:14612:28").
func (i StopSequenceItem) StopGID() string {
	id := i.ParentID
	if id == "" {
		id = i.ID
	}
	parts := strings.Split(id, ":")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ":")
}

// ResolveStop ищет остановку в справочнике. Возвращается значение из
// справочника, элемент последовательности копию не хранит.
func (i StopSequenceItem) ResolveStop(lookup StopLookup) (Stop, bool) {
	if lookup == nil {
		return Stop{}, false
	}
	if stop, ok := lookup.ByGID(i.StopGID()); ok {
		return stop, true
	}
	if id, err := strconv.Atoi(i.Properties.StopID); err == nil {
		return lookup.ByStopID(id)
	}
	return Stop{}, false
}

// EffectiveDeparture - прогноз отправления, иначе расписание, иначе прибытие
func (i StopSequenceItem) EffectiveDeparture() *time.Time {
	for _, t := range []*time.Time{i.DepartureTimeEstimated, i.DepartureTimePlanned, i.ArrivalTimeEstimated, i.ArrivalTimePlanned} {
		if t != nil {
			return t
		}
	}
	return nil
}
