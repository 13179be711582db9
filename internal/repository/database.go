package repository

import (
	"fmt"
	"os"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() (*gorm.DB, error) {
	// Build connection string
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate models. The composite unique indexes on
	// weekly_group_goals, group_goal_records and health_stats back the
	// ON CONFLICT upserts below.
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.WeeklyGroupGoal{},
		&models.GroupGoalRecord{},
		&models.HealthStat{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
