package domain

// Stop - остановка из справочника. Значения неизменяемы, расстояние
// считается на копии через WithDistance.
type Stop struct {
	GID        string   `json:"gid" yaml:"gid" validate:"required"`
	StopID     int      `json:"stop_id" yaml:"stop_id" validate:"required,gt=0"`
	Name       string   `json:"name" yaml:"name" validate:"required"`
	Place      string   `json:"place,omitempty" yaml:"place"`
	Coordinate Point    `json:"coordinate" yaml:"coordinate"`
	Distance   *float64 `json:"distance,omitempty" yaml:"-"`
}

// WithDistance возвращает копию остановки с расстоянием до точки в метрах
func (s Stop) WithDistance(from Point) Stop {
	d := from.DistanceTo(s.Coordinate)
	s.Distance = &d
	return s
}

// DistanceOrMax - расстояние, либо +Inf-подобное значение если не посчитано
func (s Stop) DistanceOrMax() float64 {
	if s.Distance == nil {
		return 1e12
	}
	return *s.Distance
}

// StopLookup - доступ к справочнику остановок
type StopLookup interface {
	ByGID(gid string) (Stop, bool)
	ByStopID(id int) (Stop, bool)
}

// DefaultStopGID - Dresden Hauptbahnhof
const DefaultStopGID = "de:14612:28"
