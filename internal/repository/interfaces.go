package repository

import (
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id uint) (*models.Group, error)
	ListIDs() ([]uint, error)
	AddMember(groupID, userID uint, role models.GroupRole) error
	RemoveMember(groupID, userID uint) error
	GetMembers(groupID uint) ([]models.User, error)
	IsMember(groupID, userID uint) (bool, error)
	GetUserGroups(userID uint) ([]models.Group, error)
	UpdateHeader(groupID uint, header string, generatedAt time.Time) error
}

// WeeklyGoalRepositoryInterface defines the contract for weekly goal and
// achievement record operations
type WeeklyGoalRepositoryInterface interface {
	UpsertGoal(goal *models.WeeklyGroupGoal) error
	FindGoal(groupID uint, weekStart time.Time) (*models.WeeklyGroupGoal, error)
	UpdateSelectedMetric(groupID uint, weekStart time.Time, metric models.MetricType) error
	CreateRecordIfAbsent(record *models.GroupGoalRecord) error
	FindRecord(groupID uint, weekStart time.Time) (*models.GroupGoalRecord, error)
	ListRecords(groupID uint, limit int) ([]models.GroupGoalRecord, error)
}

// HealthStatRepositoryInterface defines the contract for activity sample
// ingestion and the aggregate queries goal computation reads
type HealthStatRepositoryInterface interface {
	UpsertStat(stat *models.HealthStat) error
	GetAggregateStats(groupID uint, start, end time.Time) ([]MemberStats, error)
	WeeksWithData(groupID uint, start, end time.Time) (int, error)
	GroupTotals(groupID uint, start, end time.Time) (*GroupWeekTotals, error)
}
