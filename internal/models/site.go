package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Site struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name         string    `json:"name" db:"name"`
	Latitude     float64   `json:"latitude" db:"latitude"`
	Longitude    float64   `json:"longitude" db:"longitude"`
	RadiusMeters int       `json:"radius_meters" db:"radius_meters"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

const earthRadiusMeters = 6371000.0

// DistanceMeters is the great-circle distance between the site and a point.
func (s *Site) DistanceMeters(lat, lon float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat - s.Latitude)
	dLon := toRad(lon - s.Longitude)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(s.Latitude))*math.Cos(toRad(lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
