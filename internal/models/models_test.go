package models

import (
	"testing"
	"time"
)

func TestUserToResponse(t *testing.T) {
	user := &User{
		ID:        1,
		Username:  "jiwon",
		Email:     "jiwon@example.com",
		FullName:  "Jiwon Park",
		BirthYear: 1996,
		HeightCm:  168,
		WeightKg:  61,
	}

	response := user.ToResponse()

	if response.ID != user.ID {
		t.Errorf("ToResponse ID = %d, want %d", response.ID, user.ID)
	}
	if response.Username != user.Username {
		t.Errorf("ToResponse Username = %q, want %q", response.Username, user.Username)
	}
	if response.Email != user.Email {
		t.Errorf("ToResponse Email = %q, want %q", response.Email, user.Email)
	}
	if response.BirthYear != user.BirthYear {
		t.Errorf("ToResponse BirthYear = %d, want %d", response.BirthYear, user.BirthYear)
	}
	if response.HeightCm != user.HeightCm {
		t.Errorf("ToResponse HeightCm = %v, want %v", response.HeightCm, user.HeightCm)
	}
	if response.WeightKg != user.WeightKg {
		t.Errorf("ToResponse WeightKg = %v, want %v", response.WeightKg, user.WeightKg)
	}
}

func TestUserAgeAndBMI(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	user := &User{BirthYear: 1996, HeightCm: 168, WeightKg: 61}
	if got := user.Age(now); got != 29 {
		t.Errorf("Age = %d, want 29", got)
	}
	bmi := user.BMI()
	if bmi < 21.6 || bmi > 21.7 {
		t.Errorf("BMI = %v, want ~21.6", bmi)
	}

	empty := &User{}
	if empty.Age(now) != 0 {
		t.Error("Age with no birth year should be 0")
	}
	if empty.BMI() != 0 {
		t.Error("BMI with no height should be 0")
	}
}

func TestMetricTypeValid(t *testing.T) {
	tests := []struct {
		name   string
		metric MetricType
		want   bool
	}{
		{"steps", MetricSteps, true},
		{"kcal", MetricKcal, true},
		{"duration", MetricDuration, true},
		{"distance", MetricDistance, true},
		{"unknown", MetricType("CALORIES"), false},
		{"empty", MetricType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metric.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoalTarget(t *testing.T) {
	goal := &WeeklyGroupGoal{
		TargetSteps:       49000,
		TargetKcal:        2800,
		TargetDurationMin: 245,
		TargetDistanceKm:  35,
	}

	tests := []struct {
		metric MetricType
		want   float64
	}{
		{MetricSteps, 49000},
		{MetricKcal, 2800},
		{MetricDuration, 245},
		{MetricDistance, 35},
		{MetricType("bogus"), 0},
	}

	for _, tt := range tests {
		if got := goal.Target(tt.metric); got != tt.want {
			t.Errorf("Target(%s) = %v, want %v", tt.metric, got, tt.want)
		}
	}
}

func TestHealthStatValue(t *testing.T) {
	stat := &HealthStat{Steps: 9000, Kcal: 420, DurationMin: 45, DistanceKm: 6.1}

	tests := []struct {
		metric MetricType
		want   float64
	}{
		{MetricSteps, 9000},
		{MetricKcal, 420},
		{MetricDuration, 45},
		{MetricDistance, 6.1},
	}

	for _, tt := range tests {
		if got := stat.Value(tt.metric); got != tt.want {
			t.Errorf("Value(%s) = %v, want %v", tt.metric, got, tt.want)
		}
	}
}
