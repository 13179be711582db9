package models

import (
	"time"
)

// HealthStat is one member's activity sample for a single day. One row
// per (user_id, date); re-submitting a day replaces the values.
type HealthStat struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint      `gorm:"not null;uniqueIndex:idx_stat_user_date" json:"user_id"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:idx_stat_user_date" json:"date"`

	Steps       float64 `json:"steps"`
	Kcal        float64 `json:"kcal"`
	DurationMin float64 `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
}

func (s *HealthStat) Value(m MetricType) float64 {
	switch m {
	case MetricSteps:
		return s.Steps
	case MetricKcal:
		return s.Kcal
	case MetricDuration:
		return s.DurationMin
	case MetricDistance:
		return s.DistanceKm
	}
	return 0
}
