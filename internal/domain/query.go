package domain

import "time"

// DepartureQuery - запрос табло отправлений
type DepartureQuery struct {
	StopGID string    `json:"stop_id" validate:"required"`
	Time    time.Time `json:"time"`
	Limit   int       `json:"limit" validate:"omitempty,min=1,max=200"`
}

// DepartureResult - разобранный ответ; Dropped - сколько записей отброшено как битые
type DepartureResult struct {
	Events  []StopEvent `json:"events"`
	Dropped int         `json:"dropped"`
}

// TripQuery - запрос последовательности остановок одного рейса
type TripQuery struct {
	StopGID  string    `json:"stop_id" validate:"required"`
	LineID   string    `json:"line_id" validate:"required"`
	TripCode int       `json:"trip_code" validate:"min=0"`
	Time     time.Time `json:"time"`
}

// TripQueryFor builds the trip query for a departure seen at stop.
func TripQueryFor(stop Stop, event StopEvent) TripQuery {
	return TripQuery{
		StopGID:  stop.GID,
		LineID:   event.TripLineID(),
		TripCode: event.TripCode(),
		Time:     event.EffectiveTime(),
	}
}
