package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	FullName     string  `json:"full_name"`
	BirthYear    int     `json:"birth_year"`
	HeightCm     float64 `json:"height_cm"`
	WeightKg     float64 `json:"weight_kg"`
}

type UserResponse struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	BirthYear int     `json:"birth_year"`
	HeightCm  float64 `json:"height_cm"`
	WeightKg  float64 `json:"weight_kg"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		BirthYear: u.BirthYear,
		HeightCm:  u.HeightCm,
		WeightKg:  u.WeightKg,
	}
}

// Age returns the user's age in years as of now.
func (u *User) Age(now time.Time) int {
	if u.BirthYear == 0 {
		return 0
	}
	return now.Year() - u.BirthYear
}

// BMI returns weight / height^2 with height in meters, or 0 when the
// profile is incomplete.
func (u *User) BMI() float64 {
	if u.HeightCm <= 0 {
		return 0
	}
	m := u.HeightCm / 100
	return u.WeightKg / (m * m)
}
