package models

import (
	"time"
)

type MetricType string

const (
	MetricSteps    MetricType = "STEPS"
	MetricKcal     MetricType = "KCAL"
	MetricDuration MetricType = "DURATION"
	MetricDistance MetricType = "DISTANCE"
)

// MetricTypes lists all goal metrics in a stable order.
var MetricTypes = []MetricType{MetricSteps, MetricKcal, MetricDuration, MetricDistance}

func (m MetricType) Valid() bool {
	switch m {
	case MetricSteps, MetricKcal, MetricDuration, MetricDistance:
		return true
	}
	return false
}

// WeeklyGroupGoal holds a group's targets for one week. Exactly one row
// exists per (group_id, week_start); the unique index backs the upsert.
// Predicted growth rates are nil when the prediction service was
// unavailable for that metric.
type WeeklyGroupGoal struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GroupID   uint      `gorm:"not null;uniqueIndex:idx_goal_group_week" json:"group_id"`
	WeekStart time.Time `gorm:"type:date;not null;uniqueIndex:idx_goal_group_week" json:"week_start"`

	TargetSteps       float64 `json:"target_steps"`
	TargetKcal        float64 `json:"target_kcal"`
	TargetDurationMin float64 `json:"target_duration_min"`
	TargetDistanceKm  float64 `json:"target_distance_km"`

	PredictedStepsRate    *float64 `json:"predicted_steps_rate"`
	PredictedKcalRate     *float64 `json:"predicted_kcal_rate"`
	PredictedDurationRate *float64 `json:"predicted_duration_rate"`
	PredictedDistanceRate *float64 `json:"predicted_distance_rate"`

	// SelectedMetricType is sticky: once a user picks it, automated
	// regeneration must not overwrite it.
	SelectedMetricType MetricType `gorm:"type:varchar(20);not null;default:'STEPS'" json:"selected_metric_type"`
}

// Target returns the target value for the given metric.
func (g *WeeklyGroupGoal) Target(m MetricType) float64 {
	switch m {
	case MetricSteps:
		return g.TargetSteps
	case MetricKcal:
		return g.TargetKcal
	case MetricDuration:
		return g.TargetDurationMin
	case MetricDistance:
		return g.TargetDistanceKm
	}
	return 0
}

// GroupGoalRecord is the finalized did-we-hit-it snapshot for a closed
// week. Write-once per (group_id, week_start): a duplicate insert is a
// no-op so redelivered batch triggers stay harmless.
type GroupGoalRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	GroupID   uint      `gorm:"not null;uniqueIndex:idx_record_group_week" json:"group_id"`
	WeekStart time.Time `gorm:"type:date;not null;uniqueIndex:idx_record_group_week" json:"week_start"`

	MetricType    MetricType `gorm:"type:varchar(20);not null" json:"metric_type"`
	TargetValue   float64    `json:"target_value"`
	AchievedValue float64    `json:"achieved_value"`
	Achieved      bool       `json:"achieved"`
}
