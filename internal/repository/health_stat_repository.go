package repository

import (
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"gorm.io/gorm"
)

// MemberStats is one member's per-day metric means and standard
// deviations over a date range, plus the profile fields the growth
// prediction request needs.
type MemberStats struct {
	UserID    uint
	BirthYear int
	HeightCm  float64
	WeightKg  float64

	StepsMean    float64
	StepsStd     float64
	KcalMean     float64
	KcalStd      float64
	DurationMean float64
	DurationStd  float64
	DistanceMean float64
	DistanceStd  float64
}

// Mean returns the member's daily mean for the given metric.
func (m MemberStats) Mean(metric models.MetricType) float64 {
	switch metric {
	case models.MetricSteps:
		return m.StepsMean
	case models.MetricKcal:
		return m.KcalMean
	case models.MetricDuration:
		return m.DurationMean
	case models.MetricDistance:
		return m.DistanceMean
	}
	return 0
}

// Std returns the member's daily standard deviation for the given metric.
func (m MemberStats) Std(metric models.MetricType) float64 {
	switch metric {
	case models.MetricSteps:
		return m.StepsStd
	case models.MetricKcal:
		return m.KcalStd
	case models.MetricDuration:
		return m.DurationStd
	case models.MetricDistance:
		return m.DistanceStd
	}
	return 0
}

// GroupWeekTotals is the summed activity of a group over a date range.
type GroupWeekTotals struct {
	Steps         float64
	Kcal          float64
	DurationMin   float64
	DistanceKm    float64
	ActiveMembers int
}

func (t *GroupWeekTotals) Total(metric models.MetricType) float64 {
	switch metric {
	case models.MetricSteps:
		return t.Steps
	case models.MetricKcal:
		return t.Kcal
	case models.MetricDuration:
		return t.DurationMin
	case models.MetricDistance:
		return t.DistanceKm
	}
	return 0
}

type HealthStatRepository struct {
	db *gorm.DB
}

func NewHealthStatRepository(db *gorm.DB) *HealthStatRepository {
	return &HealthStatRepository{db: db}
}

// UpsertStat records one member-day sample; re-submitting a day replaces
// the previous values.
func (r *HealthStatRepository) UpsertStat(stat *models.HealthStat) error {
	return r.db.Exec(`
		INSERT INTO health_stats (user_id, date, steps, kcal, duration_min, distance_km, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id, date) DO UPDATE
		SET steps = EXCLUDED.steps,
			kcal = EXCLUDED.kcal,
			duration_min = EXCLUDED.duration_min,
			distance_km = EXCLUDED.distance_km,
			updated_at = NOW()
	`,
		stat.UserID, stat.Date.Format("2006-01-02"),
		stat.Steps, stat.Kcal, stat.DurationMin, stat.DistanceKm,
	).Error
}

// GetAggregateStats returns per-member daily means and std-devs for the
// group's current members over [start, end).
func (r *HealthStatRepository) GetAggregateStats(groupID uint, start, end time.Time) ([]MemberStats, error) {
	var rows []MemberStats
	err := r.db.Raw(`
		SELECT u.id AS user_id, u.birth_year, u.height_cm, u.weight_kg,
			AVG(hs.steps) AS steps_mean, COALESCE(STDDEV_POP(hs.steps), 0) AS steps_std,
			AVG(hs.kcal) AS kcal_mean, COALESCE(STDDEV_POP(hs.kcal), 0) AS kcal_std,
			AVG(hs.duration_min) AS duration_mean, COALESCE(STDDEV_POP(hs.duration_min), 0) AS duration_std,
			AVG(hs.distance_km) AS distance_mean, COALESCE(STDDEV_POP(hs.distance_km), 0) AS distance_std
		FROM health_stats hs
		JOIN group_members gm ON gm.user_id = hs.user_id AND gm.group_id = ?
		JOIN users u ON u.id = hs.user_id
		WHERE hs.date >= ? AND hs.date < ?
		GROUP BY u.id, u.birth_year, u.height_cm, u.weight_kg
	`, groupID, start.Format("2006-01-02"), end.Format("2006-01-02")).Scan(&rows).Error
	return rows, err
}

// WeeksWithData counts distinct ISO weeks with at least one sample from a
// current group member in [start, end). Goal computation requires three.
func (r *HealthStatRepository) WeeksWithData(groupID uint, start, end time.Time) (int, error) {
	var count int
	err := r.db.Raw(`
		SELECT COUNT(DISTINCT date_trunc('week', hs.date))
		FROM health_stats hs
		JOIN group_members gm ON gm.user_id = hs.user_id AND gm.group_id = ?
		WHERE hs.date >= ? AND hs.date < ?
	`, groupID, start.Format("2006-01-02"), end.Format("2006-01-02")).Scan(&count).Error
	return count, err
}

// GroupTotals sums the group's activity over [start, end).
func (r *HealthStatRepository) GroupTotals(groupID uint, start, end time.Time) (*GroupWeekTotals, error) {
	var totals GroupWeekTotals
	err := r.db.Raw(`
		SELECT COALESCE(SUM(hs.steps), 0) AS steps,
			COALESCE(SUM(hs.kcal), 0) AS kcal,
			COALESCE(SUM(hs.duration_min), 0) AS duration_min,
			COALESCE(SUM(hs.distance_km), 0) AS distance_km,
			COUNT(DISTINCT hs.user_id) AS active_members
		FROM health_stats hs
		JOIN group_members gm ON gm.user_id = hs.user_id AND gm.group_id = ?
		WHERE hs.date >= ? AND hs.date < ?
	`, groupID, start.Format("2006-01-02"), end.Format("2006-01-02")).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
