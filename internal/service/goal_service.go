package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/cache"
	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/prediction"
	"github.com/Sean-323/LinkCare-sub001/internal/queue"
	"github.com/Sean-323/LinkCare-sub001/internal/repository"
	"github.com/Sean-323/LinkCare-sub001/internal/timeutil"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientData means fewer than three weeks of history exist;
	// the group is skipped this cycle, never partially written.
	ErrInsufficientData = errors.New("insufficient history for goal computation")
	ErrGroupNotFound    = errors.New("group not found")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrInvalidMetric    = errors.New("invalid metric type")
)

// GrowthPredictor scores one metric's expected growth. Implemented by
// prediction.Client.
type GrowthPredictor interface {
	Predict(ctx context.Context, metric models.MetricType, in prediction.Input) (float64, error)
}

// statsWeeks is how much trailing history goal computation reads.
const statsWeeks = 3

type GoalService struct {
	groupRepo      repository.GroupRepositoryInterface
	goalRepo       repository.WeeklyGoalRepositoryInterface
	statRepo       repository.HealthStatRepositoryInterface
	predictor      GrowthPredictor
	goalCache      *cache.GoalCache
	predictTimeout time.Duration
}

func NewGoalService(
	groupRepo repository.GroupRepositoryInterface,
	goalRepo repository.WeeklyGoalRepositoryInterface,
	statRepo repository.HealthStatRepositoryInterface,
	predictor GrowthPredictor,
	goalCache *cache.GoalCache,
) *GoalService {
	return &GoalService{
		groupRepo:      groupRepo,
		goalRepo:       goalRepo,
		statRepo:       statRepo,
		predictor:      predictor,
		goalCache:      goalCache,
		predictTimeout: 3 * time.Second,
	}
}

// HandleGoalJob runs one regeneration job from the queue: recompute the
// goal, refresh the header, and for batch runs finalize the closing
// week's achievement record. Errors bubble to the queue's logging
// boundary; nothing retries here.
func (s *GoalService) HandleGoalJob(job queue.Job) error {
	group, err := s.groupRepo.FindByID(job.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("group %d: %w", job.GroupID, ErrGroupNotFound)
		}
		return fmt.Errorf("load group %d: %w", job.GroupID, err)
	}

	goal, err := s.ComputeGoal(job.GroupID, job.WeekStart)
	if err != nil {
		return fmt.Errorf("compute goal for group %d week %s: %w",
			job.GroupID, job.WeekStart.Format("2006-01-02"), err)
	}

	if err := s.goalRepo.UpsertGoal(goal); err != nil {
		return fmt.Errorf("upsert goal for group %d week %s: %w",
			job.GroupID, job.WeekStart.Format("2006-01-02"), err)
	}

	header := s.buildHeader(group, goal, job.WeekStart)
	if err := s.groupRepo.UpdateHeader(group.ID, header, time.Now()); err != nil {
		return fmt.Errorf("update header for group %d: %w", job.GroupID, err)
	}

	if job.Reason == queue.ReasonBatch {
		if err := s.finalizeRecord(goal, job.WeekStart); err != nil {
			return fmt.Errorf("finalize record for group %d week %s: %w",
				job.GroupID, job.WeekStart.Format("2006-01-02"), err)
		}
	}

	if err := s.goalCache.InvalidateGroup(group.ID); err != nil {
		log.Printf("Cache invalidation failed for group %d: %v", group.ID, err)
	}

	log.Printf("Regenerated goal for group %d week %s (reason=%s)",
		job.GroupID, job.WeekStart.Format("2006-01-02"), job.Reason)
	return nil
}

// ComputeGoal derives the weekly goal for (groupID, weekStart) from the
// three preceding weeks of member activity. Target values come from
// trailing averages alone; predicted growth rates come from the external
// model, degrading per metric when a call fails.
func (s *GoalService) ComputeGoal(groupID uint, weekStart time.Time) (*models.WeeklyGroupGoal, error) {
	statsStart := weekStart.AddDate(0, 0, -7*statsWeeks)

	weeks, err := s.statRepo.WeeksWithData(groupID, statsStart, weekStart)
	if err != nil {
		return nil, err
	}
	if weeks < statsWeeks {
		return nil, fmt.Errorf("%d of %d weeks with data: %w", weeks, statsWeeks, ErrInsufficientData)
	}

	members, err := s.statRepo.GetAggregateStats(groupID, statsStart, weekStart)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no member activity: %w", ErrInsufficientData)
	}

	agg := aggregate(members, time.Now())

	goal := &models.WeeklyGroupGoal{
		GroupID:            groupID,
		WeekStart:          weekStart,
		TargetSteps:        agg.weeklyTarget(models.MetricSteps),
		TargetKcal:         agg.weeklyTarget(models.MetricKcal),
		TargetDurationMin:  agg.weeklyTarget(models.MetricDuration),
		TargetDistanceKm:   agg.weeklyTarget(models.MetricDistance),
		SelectedMetricType: models.MetricSteps,
	}

	// One independent prediction call per metric, issued concurrently. A
	// failed metric stays nil; the others are unaffected.
	rates := s.predictRates(groupID, agg)
	goal.PredictedStepsRate = rates[models.MetricSteps]
	goal.PredictedKcalRate = rates[models.MetricKcal]
	goal.PredictedDurationRate = rates[models.MetricDuration]
	goal.PredictedDistanceRate = rates[models.MetricDistance]

	// Stickiness: an existing row's user-chosen metric survives.
	if existing, err := s.goalRepo.FindGoal(groupID, weekStart); err == nil {
		goal.SelectedMetricType = existing.SelectedMetricType
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) predictRates(groupID uint, agg groupAggregates) map[models.MetricType]*float64 {
	rates := make(map[models.MetricType]*float64, len(models.MetricTypes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, metric := range models.MetricTypes {
		wg.Add(1)
		go func(metric models.MetricType) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.predictTimeout)
			defer cancel()

			rate, err := s.predictor.Predict(ctx, metric, agg.predictionInput(metric))
			if err != nil {
				log.Printf("Prediction unavailable for group %d metric %s: %v", groupID, metric, err)
				return
			}
			mu.Lock()
			rates[metric] = &rate
			mu.Unlock()
		}(metric)
	}
	wg.Wait()
	return rates
}

// finalizeRecord snapshots whether the group cleared its selected-metric
// target over the closing week. Insert-only: redelivery is a no-op.
func (s *GoalService) finalizeRecord(goal *models.WeeklyGroupGoal, weekStart time.Time) error {
	totals, err := s.statRepo.GroupTotals(goal.GroupID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return err
	}

	achieved := 0.0
	if totals.ActiveMembers > 0 {
		achieved = totals.Total(goal.SelectedMetricType) / float64(totals.ActiveMembers)
	}
	target := goal.Target(goal.SelectedMetricType)

	return s.goalRepo.CreateRecordIfAbsent(&models.GroupGoalRecord{
		GroupID:       goal.GroupID,
		WeekStart:     weekStart,
		MetricType:    goal.SelectedMetricType,
		TargetValue:   target,
		AchievedValue: achieved,
		Achieved:      target > 0 && achieved >= target,
	})
}

// buildHeader writes the one-line narrative shown on the group screen.
func (s *GoalService) buildHeader(group *models.Group, goal *models.WeeklyGroupGoal, weekStart time.Time) string {
	metric := goal.SelectedMetricType
	target := goal.Target(metric)
	name := strings.ToLower(string(metric))

	totals, err := s.statRepo.GroupTotals(group.ID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil || totals.ActiveMembers == 0 || target <= 0 {
		return fmt.Sprintf("%s kicks off a new week: the %s goal is %s per member.",
			group.Name, name, formatTarget(metric, target))
	}

	achieved := totals.Total(metric) / float64(totals.ActiveMembers)
	pct := achieved / target * 100

	switch {
	case pct >= 100:
		return fmt.Sprintf("%s crushed it: %.0f%% of the weekly %s goal. New bar: %s per member.",
			group.Name, pct, name, formatTarget(metric, target))
	case pct >= 70:
		return fmt.Sprintf("%s is at %.0f%% of the weekly %s goal. So close!", group.Name, pct, name)
	case pct >= 30:
		return fmt.Sprintf("%s reached %.0f%% of the weekly %s goal. Keep it moving!", group.Name, pct, name)
	default:
		return fmt.Sprintf("%s is warming up: %.0f%% of the weekly %s goal so far.", group.Name, pct, name)
	}
}

func formatTarget(metric models.MetricType, target float64) string {
	switch metric {
	case models.MetricSteps:
		return fmt.Sprintf("%.0f steps", target)
	case models.MetricKcal:
		return fmt.Sprintf("%.0f kcal", target)
	case models.MetricDuration:
		return fmt.Sprintf("%.0f minutes", target)
	case models.MetricDistance:
		return fmt.Sprintf("%.1f km", target)
	}
	return fmt.Sprintf("%.0f", target)
}

// GetWeeklyGoal returns the goal for the week containing now.
func (s *GoalService) GetWeeklyGoal(groupID uint, now time.Time) (*models.WeeklyGroupGoal, error) {
	weekStart := timeutil.CurrentWeek(now).Start

	if goal, ok := s.goalCache.GetGoal(groupID, weekStart); ok {
		return goal, nil
	}

	goal, err := s.goalRepo.FindGoal(groupID, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}

	if err := s.goalCache.SetGoal(goal); err != nil {
		log.Printf("Goal cache write failed for group %d: %v", groupID, err)
	}
	return goal, nil
}

// ChangeSelectedMetric records the user's metric choice for the current
// week. The choice is sticky: later regenerations preserve it.
func (s *GoalService) ChangeSelectedMetric(groupID uint, metric models.MetricType, now time.Time) error {
	if !metric.Valid() {
		return ErrInvalidMetric
	}
	weekStart := timeutil.CurrentWeek(now).Start

	if err := s.goalRepo.UpdateSelectedMetric(groupID, weekStart, metric); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return err
	}

	if err := s.goalCache.InvalidateGroup(groupID); err != nil {
		log.Printf("Cache invalidation failed for group %d: %v", groupID, err)
	}
	return nil
}

// GetHeader returns the group's current narrative header.
func (s *GoalService) GetHeader(groupID uint) (string, error) {
	if header, ok := s.goalCache.GetHeader(groupID); ok {
		return header, nil
	}

	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return "", ErrGroupNotFound
	}

	if err := s.goalCache.SetHeader(groupID, group.Header); err != nil {
		log.Printf("Header cache write failed for group %d: %v", groupID, err)
	}
	return group.Header, nil
}

// ListRecords returns recent achievement snapshots, newest first.
func (s *GoalService) ListRecords(groupID uint, limit int) ([]models.GroupGoalRecord, error) {
	if limit <= 0 || limit > 52 {
		limit = 12
	}
	return s.goalRepo.ListRecords(groupID, limit)
}

// groupAggregates condenses per-member stats into the figures targets
// and prediction requests are built from.
type groupAggregates struct {
	memberCount  int
	avgAge       float64
	avgBMI       float64
	groupMean    map[models.MetricType]float64 // mean of member daily means
	groupStd     map[models.MetricType]float64 // spread across member means
	memberStd    map[models.MetricType]float64 // mean of member daily std-devs
	durationMean float64
}

func aggregate(members []repository.MemberStats, now time.Time) groupAggregates {
	agg := groupAggregates{
		memberCount: len(members),
		groupMean:   make(map[models.MetricType]float64),
		groupStd:    make(map[models.MetricType]float64),
		memberStd:   make(map[models.MetricType]float64),
	}

	var ageSum, bmiSum float64
	for _, m := range members {
		u := models.User{BirthYear: m.BirthYear, HeightCm: m.HeightCm, WeightKg: m.WeightKg}
		ageSum += float64(u.Age(now))
		bmiSum += u.BMI()
	}
	agg.avgAge = ageSum / float64(len(members))
	agg.avgBMI = bmiSum / float64(len(members))

	for _, metric := range models.MetricTypes {
		means := make([]float64, 0, len(members))
		var stdSum float64
		for _, m := range members {
			means = append(means, m.Mean(metric))
			stdSum += m.Std(metric)
		}
		agg.groupMean[metric] = mean(means)
		agg.groupStd[metric] = stdDev(means)
		agg.memberStd[metric] = stdSum / float64(len(members))
	}
	agg.durationMean = agg.groupMean[models.MetricDuration]
	return agg
}

// weeklyTarget is the minimum bar for the coming week: a week at the
// group's trailing daily pace.
func (a groupAggregates) weeklyTarget(metric models.MetricType) float64 {
	t := a.groupMean[metric] * 7
	if t < 0 {
		return 0
	}
	return t
}

func (a groupAggregates) predictionInput(metric models.MetricType) prediction.Input {
	return prediction.Input{
		MemberCount:         a.memberCount,
		AvgAge:              a.avgAge,
		AvgBMI:              a.avgBMI,
		GroupMean3w:         a.groupMean[metric],
		GroupStdDev3w:       a.groupStd[metric],
		GroupDurationMean3w: a.durationMean,
		MemberStdDev:        a.memberStd[metric],
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)))
}
