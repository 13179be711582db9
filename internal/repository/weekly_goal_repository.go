package repository

import (
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"gorm.io/gorm"
)

type WeeklyGoalRepository struct {
	db *gorm.DB
}

func NewWeeklyGoalRepository(db *gorm.DB) *WeeklyGoalRepository {
	return &WeeklyGoalRepository{db: db}
}

// UpsertGoal inserts or refreshes the goal row for (group_id, week_start).
// selected_metric_type is deliberately left out of the update list: a
// user's metric choice survives regeneration.
func (r *WeeklyGoalRepository) UpsertGoal(goal *models.WeeklyGroupGoal) error {
	return r.db.Exec(`
		INSERT INTO weekly_group_goals (
			group_id, week_start,
			target_steps, target_kcal, target_duration_min, target_distance_km,
			predicted_steps_rate, predicted_kcal_rate, predicted_duration_rate, predicted_distance_rate,
			selected_metric_type, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (group_id, week_start) DO UPDATE
		SET target_steps = EXCLUDED.target_steps,
			target_kcal = EXCLUDED.target_kcal,
			target_duration_min = EXCLUDED.target_duration_min,
			target_distance_km = EXCLUDED.target_distance_km,
			predicted_steps_rate = EXCLUDED.predicted_steps_rate,
			predicted_kcal_rate = EXCLUDED.predicted_kcal_rate,
			predicted_duration_rate = EXCLUDED.predicted_duration_rate,
			predicted_distance_rate = EXCLUDED.predicted_distance_rate,
			updated_at = NOW()
	`,
		goal.GroupID, goal.WeekStart.Format("2006-01-02"),
		goal.TargetSteps, goal.TargetKcal, goal.TargetDurationMin, goal.TargetDistanceKm,
		goal.PredictedStepsRate, goal.PredictedKcalRate, goal.PredictedDurationRate, goal.PredictedDistanceRate,
		string(goal.SelectedMetricType),
	).Error
}

func (r *WeeklyGoalRepository) FindGoal(groupID uint, weekStart time.Time) (*models.WeeklyGroupGoal, error) {
	var goal models.WeeklyGroupGoal
	err := r.db.Where("group_id = ? AND week_start = ?", groupID, weekStart.Format("2006-01-02")).
		First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *WeeklyGoalRepository) UpdateSelectedMetric(groupID uint, weekStart time.Time, metric models.MetricType) error {
	res := r.db.Model(&models.WeeklyGroupGoal{}).
		Where("group_id = ? AND week_start = ?", groupID, weekStart.Format("2006-01-02")).
		Update("selected_metric_type", string(metric))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateRecordIfAbsent writes the achievement snapshot once per
// (group_id, week_start). A second call for the same key is a no-op, not
// an error, so redelivered batch triggers stay harmless.
func (r *WeeklyGoalRepository) CreateRecordIfAbsent(record *models.GroupGoalRecord) error {
	return r.db.Exec(`
		INSERT INTO group_goal_records (
			group_id, week_start, metric_type, target_value, achieved_value, achieved, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
		ON CONFLICT (group_id, week_start) DO NOTHING
	`,
		record.GroupID, record.WeekStart.Format("2006-01-02"),
		string(record.MetricType), record.TargetValue, record.AchievedValue, record.Achieved,
	).Error
}

func (r *WeeklyGoalRepository) FindRecord(groupID uint, weekStart time.Time) (*models.GroupGoalRecord, error) {
	var record models.GroupGoalRecord
	err := r.db.Where("group_id = ? AND week_start = ?", groupID, weekStart.Format("2006-01-02")).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *WeeklyGoalRepository) ListRecords(groupID uint, limit int) ([]models.GroupGoalRecord, error) {
	var records []models.GroupGoalRecord
	err := r.db.Where("group_id = ?", groupID).
		Order("week_start DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
