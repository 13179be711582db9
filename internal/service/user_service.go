package service

import (
	"errors"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

type UpdateProfileInput struct {
	FullName  string  `json:"full_name"`
	BirthYear int     `json:"birth_year"`
	HeightCm  float64 `json:"height_cm"`
	WeightKg  float64 `json:"weight_kg"`
}

// UpdateProfile refreshes the body-profile fields goal computation reads
// (age and BMI feed the growth prediction request).
func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if input.BirthYear < 0 || input.HeightCm < 0 || input.WeightKg < 0 {
		return nil, errors.New("profile values may not be negative")
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.BirthYear != 0 {
		user.BirthYear = input.BirthYear
	}
	if input.HeightCm != 0 {
		user.HeightCm = input.HeightCm
	}
	if input.WeightKg != 0 {
		user.WeightKg = input.WeightKg
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
