package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/events"
	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/prediction"
	"github.com/Sean-323/LinkCare-sub001/internal/repository"
	"gorm.io/gorm"
)

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

// MockGroupRepository is a mock implementation for tests.
// It implements repository.GroupRepositoryInterface.
type MockGroupRepository struct {
	groups      map[uint]*models.Group
	memberships map[uint]map[uint]models.GroupRole
	nextID      uint
	listErr     error
	findErr     error
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:      make(map[uint]*models.Group),
		memberships: make(map[uint]map[uint]models.GroupRole),
		nextID:      1,
	}
}

func (m *MockGroupRepository) Create(group *models.Group) error {
	if group.ID == 0 {
		group.ID = m.nextID
		m.nextID++
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}
	m.groups[group.ID] = group
	return nil
}

func (m *MockGroupRepository) FindByID(id uint) (*models.Group, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) ListIDs() ([]uint, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]uint, 0, len(m.groups))
	for id := range m.groups {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockGroupRepository) AddMember(groupID, userID uint, role models.GroupRole) error {
	if _, ok := m.memberships[groupID]; !ok {
		m.memberships[groupID] = make(map[uint]models.GroupRole)
	}
	m.memberships[groupID][userID] = role
	return nil
}

func (m *MockGroupRepository) RemoveMember(groupID, userID uint) error {
	if gm, ok := m.memberships[groupID]; ok {
		delete(gm, userID)
	}
	return nil
}

func (m *MockGroupRepository) GetMembers(groupID uint) ([]models.User, error) {
	var members []models.User
	for userID := range m.memberships[groupID] {
		members = append(members, models.User{ID: userID})
	}
	return members, nil
}

func (m *MockGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	if gm, ok := m.memberships[groupID]; ok {
		_, isMember := gm[userID]
		return isMember, nil
	}
	return false, nil
}

func (m *MockGroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	for groupID, gm := range m.memberships {
		if _, ok := gm[userID]; ok {
			groups = append(groups, *m.groups[groupID])
		}
	}
	return groups, nil
}

func (m *MockGroupRepository) UpdateHeader(groupID uint, header string, generatedAt time.Time) error {
	g, ok := m.groups[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.Header = header
	g.HeaderGeneratedAt = &generatedAt
	return nil
}

// MockWeeklyGoalRepository implements repository.WeeklyGoalRepositoryInterface
// with upsert semantics matching the Postgres ON CONFLICT statements.
type MockWeeklyGoalRepository struct {
	goals          map[string]*models.WeeklyGroupGoal
	records        map[string]*models.GroupGoalRecord
	upsertCalls    int
	recordAttempts int
}

func NewMockWeeklyGoalRepository() *MockWeeklyGoalRepository {
	return &MockWeeklyGoalRepository{
		goals:   make(map[string]*models.WeeklyGroupGoal),
		records: make(map[string]*models.GroupGoalRecord),
	}
}

func goalWeekKey(groupID uint, weekStart time.Time) string {
	return fmt.Sprintf("%d:%s", groupID, weekStart.Format("2006-01-02"))
}

func (m *MockWeeklyGoalRepository) UpsertGoal(goal *models.WeeklyGroupGoal) error {
	m.upsertCalls++
	key := goalWeekKey(goal.GroupID, goal.WeekStart)
	if existing, ok := m.goals[key]; ok {
		// Update in place, preserving the selected metric.
		existing.TargetSteps = goal.TargetSteps
		existing.TargetKcal = goal.TargetKcal
		existing.TargetDurationMin = goal.TargetDurationMin
		existing.TargetDistanceKm = goal.TargetDistanceKm
		existing.PredictedStepsRate = goal.PredictedStepsRate
		existing.PredictedKcalRate = goal.PredictedKcalRate
		existing.PredictedDurationRate = goal.PredictedDurationRate
		existing.PredictedDistanceRate = goal.PredictedDistanceRate
		return nil
	}
	copied := *goal
	m.goals[key] = &copied
	return nil
}

func (m *MockWeeklyGoalRepository) FindGoal(groupID uint, weekStart time.Time) (*models.WeeklyGroupGoal, error) {
	if g, ok := m.goals[goalWeekKey(groupID, weekStart)]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockWeeklyGoalRepository) UpdateSelectedMetric(groupID uint, weekStart time.Time, metric models.MetricType) error {
	g, ok := m.goals[goalWeekKey(groupID, weekStart)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.SelectedMetricType = metric
	return nil
}

func (m *MockWeeklyGoalRepository) CreateRecordIfAbsent(record *models.GroupGoalRecord) error {
	m.recordAttempts++
	key := goalWeekKey(record.GroupID, record.WeekStart)
	if _, ok := m.records[key]; ok {
		return nil // silent no-op, like ON CONFLICT DO NOTHING
	}
	copied := *record
	m.records[key] = &copied
	return nil
}

func (m *MockWeeklyGoalRepository) FindRecord(groupID uint, weekStart time.Time) (*models.GroupGoalRecord, error) {
	if r, ok := m.records[goalWeekKey(groupID, weekStart)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockWeeklyGoalRepository) ListRecords(groupID uint, limit int) ([]models.GroupGoalRecord, error) {
	var out []models.GroupGoalRecord
	for _, r := range m.records {
		if r.GroupID == groupID {
			out = append(out, *r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// MockHealthStatRepository implements repository.HealthStatRepositoryInterface
// with canned aggregates.
type MockHealthStatRepository struct {
	stats   []*models.HealthStat
	weeks   int
	members []repository.MemberStats
	totals  *repository.GroupWeekTotals
	err     error
}

func NewMockHealthStatRepository() *MockHealthStatRepository {
	return &MockHealthStatRepository{totals: &repository.GroupWeekTotals{}}
}

func (m *MockHealthStatRepository) UpsertStat(stat *models.HealthStat) error {
	if m.err != nil {
		return m.err
	}
	m.stats = append(m.stats, stat)
	return nil
}

func (m *MockHealthStatRepository) GetAggregateStats(groupID uint, start, end time.Time) ([]repository.MemberStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members, nil
}

func (m *MockHealthStatRepository) WeeksWithData(groupID uint, start, end time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.weeks, nil
}

func (m *MockHealthStatRepository) GroupTotals(groupID uint, start, end time.Time) (*repository.GroupWeekTotals, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.totals, nil
}

// fakePredictor returns canned rates and can fail selected metrics.
type fakePredictor struct {
	mu    sync.Mutex
	rates map[models.MetricType]float64
	fail  map[models.MetricType]bool
	calls []models.MetricType
}

func newFakePredictor() *fakePredictor {
	return &fakePredictor{
		rates: map[models.MetricType]float64{
			models.MetricSteps:    0.05,
			models.MetricKcal:     0.04,
			models.MetricDuration: 0.03,
			models.MetricDistance: 0.02,
		},
		fail: make(map[models.MetricType]bool),
	}
}

func (f *fakePredictor) Predict(ctx context.Context, metric models.MetricType, in prediction.Input) (float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, metric)
	f.mu.Unlock()
	if f.fail[metric] {
		return 0, fmt.Errorf("predict %s: %w", metric, prediction.ErrUnavailable)
	}
	return f.rates[metric], nil
}

func (f *fakePredictor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(e events.Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *recordingBus) published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}

var errMockDown = errors.New("repository unavailable")
