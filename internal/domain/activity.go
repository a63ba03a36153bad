package domain

import (
	"strconv"
	"time"
)

// ActivityRequest - тело запроса к бэкенду live activity. Собирается
// заново на каждую отправку.
type ActivityRequest struct {
	Token          string     `json:"token"`
	StopGID        string     `json:"stopGid"`
	LineRef        string     `json:"lineRef"`
	DirectionRef   string     `json:"directionRef"`
	TimetabledTime time.Time `json:"timetabledTime"`
	// EstimatedTime - прогноз, без него расписание; поле есть всегда
	EstimatedTime time.Time `json:"estimatedTime"`
}

// NewActivityRequest собирает запрос для токена и отправления
func NewActivityRequest(token string, stop Stop, event StopEvent) ActivityRequest {
	return ActivityRequest{
		Token:          token,
		StopGID:        stop.GID,
		LineRef:        event.ActivityLineRef(),
		DirectionRef:   event.ActivityDirectionRef(),
		TimetabledTime: event.ScheduledTime(),
		EstimatedTime:  event.EffectiveTime(),
	}
}

// ActivityAttributes - статическая часть live activity
type ActivityAttributes struct {
	Name              string        `json:"name"`
	Icon              string        `json:"icon"`
	Mode              TransportMode `json:"mode"`
	StopID            string        `json:"stopID"`
	LineRef           string        `json:"lineRef"`
	TimetabledTime    time.Time     `json:"timetabledTime"`
	DirectionRef      string        `json:"directionRef"`
	PublishedLineName string        `json:"publishedLineName"`
	DestinationText   string        `json:"destinationText"`
}

// ActivityContentState - изменяемая часть live activity
type ActivityContentState struct {
	TimetabledTime time.Time `json:"timetabledTime"`
	EstimatedTime  time.Time `json:"estimatedTime"`
}

// ActivityContent - содержимое с датой устаревания
type ActivityContent struct {
	State     ActivityContentState `json:"state"`
	StaleDate time.Time            `json:"staleDate"`
}

// NewActivityContent builds attributes and content for one departure.
func NewActivityContent(stop Stop, event StopEvent, now time.Time, staleAfter time.Duration) (ActivityAttributes, ActivityContent) {
	attrs := ActivityAttributes{
		Name:              stop.Name,
		Icon:              event.DisplayIcon(),
		Mode:              event.Mode,
		StopID:            strconv.Itoa(stop.StopID),
		LineRef:           event.ActivityLineRef(),
		TimetabledTime:    event.EffectiveTime(),
		DirectionRef:      event.ActivityDirectionRef(),
		PublishedLineName: event.LineName(),
		DestinationText:   event.Destination(),
	}
	state := ActivityContentState{
		TimetabledTime: event.ScheduledTime(),
		EstimatedTime:  event.EffectiveTime(),
	}
	return attrs, ActivityContent{State: state, StaleDate: now.Add(staleAfter)}
}
