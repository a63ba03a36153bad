package domain

import "math"

const earthRadiusM = 6371000.0

// Point - географическая точка WGS84
type Point struct {
	Lat float64 `json:"lat" yaml:"lat" db:"lat"`
	Lon float64 `json:"lon" yaml:"lon" db:"lon"`
}

// DresdenTownHall - точка по умолчанию, когда местоположение устройства неизвестно
var DresdenTownHall = Point{Lat: 51.04750, Lon: 13.74035}

// DistanceTo возвращает расстояние по большому кругу в метрах
func (p Point) DistanceTo(o Point) float64 {
	dLat := (o.Lat - p.Lat) * math.Pi / 180.0
	dLon := (o.Lon - p.Lon) * math.Pi / 180.0

	lat1Rad := p.Lat * math.Pi / 180.0
	lat2Rad := o.Lat * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Valid проверяет диапазоны широты и долготы
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
