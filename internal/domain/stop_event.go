package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Departure - общие производные значения для обоих видов StopEvent
type Departure interface {
	EffectiveTime() time.Time
	ScheduledTime() time.Time
	DelayMinutes() int
	DisplayName() string
	DisplayIcon() string
	HasDisruptionInfo() bool
}

// StopEventKind - откуда пришло событие
type StopEventKind int

const (
	// StopEventKindMonitor - TRIAS StopEventResponse (XML)
	StopEventKindMonitor StopEventKind = iota
	// StopEventKindTrip - EFA rapidJSON stopEvents
	StopEventKindTrip
)

func (k StopEventKind) String() string {
	switch k {
	case StopEventKindMonitor:
		return "monitor"
	case StopEventKindTrip:
		return "trip"
	default:
		return "unknown"
	}
}

func (k StopEventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *StopEventKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "monitor", "":
		*k = StopEventKindMonitor
	case "trip":
		*k = StopEventKindTrip
	default:
		return fmt.Errorf("unknown stop event kind %q", text)
	}
	return nil
}

// CallAtStop - время и место отправления на запрошенной остановке
type CallAtStop struct {
	StopPointRef   string     `json:"stopPointRef,omitempty"`
	StopPointName  string     `json:"stopPointName,omitempty"`
	Platform       string     `json:"platform,omitempty"`
	TimetabledTime time.Time  `json:"timetabledTime"`
	EstimatedTime  *time.Time `json:"estimatedTime,omitempty"`
}

// Place - пункт назначения или остановка в rapidJSON
type Place struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type Product struct {
	ID     int    `json:"id"`
	Class  int    `json:"class"`
	Name   string `json:"name"`
	IconID int    `json:"iconId"`
}

// Transportation - описание рейса, есть только у события из rapidJSON
type Transportation struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Number      string  `json:"number"`
	Product     Product `json:"product"`
	Destination Place   `json:"destination"`
	TripCode    *int    `json:"tripCode,omitempty"`
	GlobalID    string  `json:"globalId,omitempty"`
}

// LineRef strips the timetable-year suffix of the EFA trip id,
// "voe:11003: :H:j24" becomes "voe:11003: :H".
func (t Transportation) LineRef() string {
	parts := strings.Split(t.ID, ":")
	if len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "j") {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ":")
}

// StopEvent - одно отправление. Kind определяет, какие поля заполнены,
// производные значения считаются одинаково для обоих видов.
type StopEvent struct {
	Kind              StopEventKind   `json:"kind"`
	Mode              TransportMode   `json:"mode"`
	LineRef           string          `json:"lineRef"`
	DirectionRef      string          `json:"directionRef"`
	PublishedLineName string          `json:"publishedLineName"`
	DestinationText   string          `json:"destinationText"`
	JourneyRef        string          `json:"journeyRef,omitempty"`
	OperatingDayRef   string          `json:"operatingDayRef,omitempty"`
	ThisCall          CallAtStop      `json:"thisCall"`
	Cancelled         bool            `json:"cancelled"`
	Infos             []Info          `json:"infos,omitempty"`
	Transportation    *Transportation `json:"transportation,omitempty"`
	Location          *Place          `json:"location,omitempty"`
	// Seq - позиция в ответе бэкенда, нужна для стабильной сортировки
	Seq int `json:"seq"`
}

var _ Departure = StopEvent{}

func (e StopEvent) ScheduledTime() time.Time {
	return e.ThisCall.TimetabledTime
}

func (e StopEvent) HasScheduledTime() bool {
	return !e.ThisCall.TimetabledTime.IsZero()
}

func (e StopEvent) HasEstimatedTime() bool {
	return e.ThisCall.EstimatedTime != nil && !e.ThisCall.EstimatedTime.IsZero()
}

// EffectiveTime - прогноз если есть, иначе расписание
func (e StopEvent) EffectiveTime() time.Time {
	if e.HasEstimatedTime() {
		return *e.ThisCall.EstimatedTime
	}
	return e.ThisCall.TimetabledTime
}

// DelayMinutes: positive = late, negative = early, zero = on time or no estimate.
func (e StopEvent) DelayMinutes() int {
	if !e.HasEstimatedTime() || !e.HasScheduledTime() {
		return 0
	}
	diff := e.ThisCall.EstimatedTime.Sub(e.ThisCall.TimetabledTime)
	return int(math.Round(diff.Minutes()))
}

// MinutesUntil - минут до фактического отправления, не меньше нуля
func (e StopEvent) MinutesUntil(now time.Time) int {
	m := int(math.Floor(e.EffectiveTime().Sub(now).Minutes()))
	if m < 0 {
		return 0
	}
	return m
}

func (e StopEvent) LineName() string {
	if e.Kind == StopEventKindTrip && e.Transportation != nil {
		return e.Transportation.Number
	}
	return e.PublishedLineName
}

func (e StopEvent) Destination() string {
	if e.Kind == StopEventKindTrip && e.Transportation != nil {
		return e.Transportation.Destination.Name
	}
	return e.DestinationText
}

func (e StopEvent) DisplayName() string {
	return strings.TrimSpace(e.LineName() + " " + e.Destination())
}

func (e StopEvent) DisplayIcon() string {
	return e.Mode.Icon()
}

func (e StopEvent) IsCancelled() bool {
	return e.Cancelled
}

func (e StopEvent) HasDisruptionInfo() bool {
	return len(e.Infos) > 0
}

// PlatformLabel - "Gleis 3" для поездов, "Steig 3" для остального
func (e StopEvent) PlatformLabel() string {
	if e.ThisCall.Platform == "" {
		return ""
	}
	switch e.Mode {
	case ModeRail, ModeUrbanRail:
		return "Gleis " + e.ThisCall.Platform
	default:
		return "Steig " + e.ThisCall.Platform
	}
}

// ActivityLineRef - line reference the activity backend expects
func (e StopEvent) ActivityLineRef() string {
	if e.Kind == StopEventKindTrip && e.Transportation != nil {
		return e.Transportation.LineRef()
	}
	return e.LineRef
}

// ActivityDirectionRef - rapidJSON carries no direction, the backend
// accepts "outward" for those.
func (e StopEvent) ActivityDirectionRef() string {
	if e.Kind == StopEventKindTrip || e.DirectionRef == "" {
		return "outward"
	}
	return e.DirectionRef
}

// TripLineID - значение параметра line для запроса остановок рейса
func (e StopEvent) TripLineID() string {
	if e.Transportation != nil && e.Transportation.ID != "" {
		return e.Transportation.ID
	}
	return e.LineRef
}

// TripCode берётся из rapidJSON, для TRIAS - числовой хвост JourneyRef, иначе 0
func (e StopEvent) TripCode() int {
	if e.Transportation != nil && e.Transportation.TripCode != nil {
		return *e.Transportation.TripCode
	}
	if idx := strings.LastIndex(e.JourneyRef, ":"); idx >= 0 {
		if code, err := strconv.Atoi(strings.TrimSpace(e.JourneyRef[idx+1:])); err == nil {
			return code
		}
	}
	return 0
}

// SortByEffectiveTime sorts in place, ties keep response order.
func SortByEffectiveTime(events []StopEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].EffectiveTime(), events[j].EffectiveTime()
		if ti.Equal(tj) {
			return events[i].Seq < events[j].Seq
		}
		return ti.Before(tj)
	})
}
