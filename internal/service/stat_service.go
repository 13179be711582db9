package service

import (
	"errors"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/repository"
)

type StatService struct {
	statRepo repository.HealthStatRepositoryInterface
}

func NewStatService(statRepo repository.HealthStatRepositoryInterface) *StatService {
	return &StatService{statRepo: statRepo}
}

type RecordStatInput struct {
	Date        string  `json:"date"`
	Steps       float64 `json:"steps"`
	Kcal        float64 `json:"kcal"`
	DurationMin float64 `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
}

// RecordStat stores one member-day activity sample. Re-submitting a day
// replaces it; samples may not be dated in the future.
func (s *StatService) RecordStat(userID uint, input RecordStatInput) error {
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return errors.New("invalid date, expected YYYY-MM-DD")
	}
	if date.After(time.Now()) {
		return errors.New("date may not be in the future")
	}
	if input.Steps < 0 || input.Kcal < 0 || input.DurationMin < 0 || input.DistanceKm < 0 {
		return errors.New("metric values may not be negative")
	}

	return s.statRepo.UpsertStat(&models.HealthStat{
		UserID:      userID,
		Date:        date,
		Steps:       input.Steps,
		Kcal:        input.Kcal,
		DurationMin: input.DurationMin,
		DistanceKm:  input.DistanceKm,
	})
}
